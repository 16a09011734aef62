// Package filemgr stores uploaded recipe pictures and their thumbnails under
// the static directory.
package filemgr

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"slices"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	_ "golang.org/x/image/webp"

	"recipehub/utils"
)

// Saved holds the public URLs of a stored picture.
type Saved struct {
	ImageURL     string `json:"imageUrl"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

type Manager struct {
	root       string // directory on disk, e.g. static/recipes
	urlPrefix  string // public prefix, e.g. /static/recipes
	maxBytes   int64
	thumbWidth int
}

func New(root, urlPrefix string) *Manager {
	return &Manager{root: root, urlPrefix: urlPrefix, maxBytes: DefaultMaxBytes, thumbWidth: DefaultThumbWidth}
}

func (m *Manager) Root() string { return m.root }

func (m *Manager) dir(pt PictureType) string {
	return filepath.Join(m.root, PictureSubfolders[pt])
}

func (m *Manager) url(pt PictureType, name string) string {
	return path.Join(m.urlPrefix, PictureSubfolders[pt], name)
}

// SaveImageWithThumb decodes the upload, re-encodes it as JPEG (dropping
// metadata) and writes a thumbnail next to it. Both share one random name.
func (m *Manager) SaveImageWithThumb(r io.Reader) (*Saved, error) {
	buf, err := io.ReadAll(io.LimitReader(r, m.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(buf)) > m.maxBytes {
		return nil, ErrFileTooLarge
	}

	mimeType := http.DetectContentType(buf)
	if !slices.Contains(AllowedMIMEs, mimeType) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidMIME, mimeType)
	}

	img, err := imaging.Decode(bytes.NewReader(buf), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadImage, err)
	}
	if err := validateImageDimensions(img, maxDimension, maxDimension); err != nil {
		return nil, err
	}

	name := uuid.New().String() + ".jpg"
	for _, pt := range []PictureType{PicPhoto, PicThumb} {
		if err := utils.EnsureDir(m.dir(pt)); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", m.dir(pt), err)
		}
	}

	origPath := filepath.Join(m.dir(PicPhoto), name)
	if err := imaging.Save(img, origPath, imaging.JPEGQuality(90)); err != nil {
		return nil, fmt.Errorf("save image: %w", err)
	}

	thumbPath := filepath.Join(m.dir(PicThumb), name)
	thumb := imaging.Resize(img, min(m.thumbWidth, img.Bounds().Dx()), 0, imaging.Lanczos)
	if err := imaging.Save(thumb, thumbPath, imaging.JPEGQuality(85)); err != nil {
		_ = os.Remove(origPath)
		return nil, fmt.Errorf("save thumbnail: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"file":  origPath,
		"bytes": len(buf),
		"mime":  mimeType,
	}).Debug("image stored")

	return &Saved{ImageURL: m.url(PicPhoto, name), ThumbnailURL: m.url(PicThumb, name)}, nil
}

// Remove deletes the files behind a previously returned Saved. Unknown or
// foreign URLs are ignored.
func (m *Manager) Remove(s Saved) {
	for pt, u := range map[PictureType]string{PicPhoto: s.ImageURL, PicThumb: s.ThumbnailURL} {
		if u == "" || path.Dir(u) != path.Join(m.urlPrefix, PictureSubfolders[pt]) {
			continue
		}
		p := filepath.Join(m.dir(pt), path.Base(u))
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			logrus.WithError(err).WithField("file", p).Warn("remove image")
		}
	}
}

func validateImageDimensions(img image.Image, maxWidth, maxHeight int) error {
	b := img.Bounds()
	if b.Dx() > maxWidth || b.Dy() > maxHeight {
		return fmt.Errorf("%w: dimensions %dx%d exceed %dx%d", ErrBadImage, b.Dx(), b.Dy(), maxWidth, maxHeight)
	}
	return nil
}

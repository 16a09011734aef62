package filemgr

import "errors"

type PictureType string

const (
	PicPhoto PictureType = "photo"
	PicThumb PictureType = "thumb"
)

const (
	DefaultMaxBytes   = 10 << 20
	DefaultThumbWidth = 320
	maxDimension      = 6000
)

var (
	AllowedMIMEs = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

	PictureSubfolders = map[PictureType]string{
		PicPhoto: "photo",
		PicThumb: "thumb",
	}

	ErrInvalidMIME  = errors.New("invalid MIME type")
	ErrFileTooLarge = errors.New("file size exceeds limit")
	ErrBadImage     = errors.New("file is not a readable image")
)

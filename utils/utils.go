package utils

import (
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"recipehub/apperr"
)

// --- Identifiers ---

var objectIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// IsObjectIDHex reports whether s has the shape of a document id.
func IsObjectIDHex(s string) bool {
	return objectIDPattern.MatchString(s)
}

// ParseObjectID parses a path id, failing with BadRequest(msg) when it is
// not 24 hex characters.
func ParseObjectID(s, msg string) (primitive.ObjectID, error) {
	if !IsObjectIDHex(s) {
		return primitive.NilObjectID, apperr.BadRequest(msg)
	}
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, apperr.BadRequest(msg)
	}
	return id, nil
}

// --- Image Validation ---

var SupportedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
	"image/bmp":  true,
	"image/tiff": true,
}

func ValidateImageFileType(header *multipart.FileHeader) error {
	mimeType := header.Header.Get("Content-Type")
	if !SupportedImageTypes[mimeType] {
		return apperr.BadRequest("Invalid file type. Supported formats: JPEG, PNG, WebP, GIF, BMP, TIFF.")
	}
	return nil
}

// --- Directory Helper ---

func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}

var unsafeFilename = regexp.MustCompile(`[^\w.\-]`)

func SanitizeFilename(name string) string {
	clean := unsafeFilename.ReplaceAllString(filepath.Base(name), "_")
	clean = strings.Trim(clean, ".")
	if clean == "" {
		return "file"
	}
	return clean
}

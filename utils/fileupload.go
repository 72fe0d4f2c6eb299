package utils

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
)

// MaxFileSize is 5MB in bytes
const MaxFileSize = 5 * 1024 * 1024

// imageContentTypes maps the accepted menu image extensions to their MIME types
var imageContentTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
}

// FileUploadError represents a file upload validation error
type FileUploadError struct {
	Code    string
	Message string
}

func (e *FileUploadError) Error() string {
	return e.Message
}

// ValidateImageFile validates the uploaded file format and size
func ValidateImageFile(fileHeader *multipart.FileHeader) error {
	if fileHeader.Size > MaxFileSize {
		return &FileUploadError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("File size exceeds maximum allowed size of %d MB", MaxFileSize/(1024*1024)),
		}
	}

	if fileHeader.Size == 0 {
		return &FileUploadError{
			Code:    "EMPTY_FILE",
			Message: "Uploaded file is empty",
		}
	}

	if _, ok := imageContentTypes[imageExt(fileHeader.Filename)]; !ok {
		return &FileUploadError{
			Code:    "INVALID_FILE_FORMAT",
			Message: "Only .png, .jpg, .jpeg and .webp files are allowed",
		}
	}

	return nil
}

// CheckImageContent reports whether the leading bytes of an upload sniff as
// the image type its extension declares
func CheckImageContent(filename string, head []byte) error {
	if http.DetectContentType(head) != ImageContentType(filename) {
		return &FileUploadError{
			Code:    "INVALID_FILE_CONTENT",
			Message: fmt.Sprintf("File content is not a valid %s image", strings.TrimPrefix(imageExt(filename), ".")),
		}
	}
	return nil
}

// ImageContentType returns the MIME type for an accepted image filename
func ImageContentType(filename string) string {
	if contentType, ok := imageContentTypes[imageExt(filename)]; ok {
		return contentType
	}
	return "application/octet-stream"
}

// SanitizeFilename keeps the base name and replaces anything outside
// [A-Za-z0-9._-] so it is safe inside an object key
func SanitizeFilename(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

func imageExt(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

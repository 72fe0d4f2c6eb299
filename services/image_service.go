package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/djsmacker01/flavour-api/utils"
)

// MenuImagePrefix is the key prefix for menu item photos
const MenuImagePrefix = "menu"

// sniffLength is how much of an upload is inspected to confirm its type
const sniffLength = 512

// ImageService stores the photos shown on menu items
type ImageService interface {
	// UploadMenuImage stores a photo for a menu item and returns its storage key
	UploadMenuImage(ctx context.Context, menuItemID uint, fileHeader *multipart.FileHeader) (string, error)

	// MenuImageURL returns a short-lived URL for a stored photo
	MenuImageURL(ctx context.Context, imageKey string) (string, error)

	// DeleteMenuImage removes a stored photo
	DeleteMenuImage(ctx context.Context, imageKey string) error
}

// S3ImageService keeps menu photos in the S3 bucket under MenuImagePrefix
type S3ImageService struct {
	s3Service S3Interface
	now       func() time.Time
}

var imageServiceInstance ImageService

// InitImageService initializes the image service with S3 backend
func InitImageService(s3Service S3Interface) ImageService {
	imageServiceInstance = NewS3ImageService(s3Service)
	return imageServiceInstance
}

// NewS3ImageService creates an image service over the given object store
func NewS3ImageService(s3Service S3Interface) *S3ImageService {
	return &S3ImageService{s3Service: s3Service, now: time.Now}
}

// GetImageService returns the initialized image service instance
func GetImageService() ImageService {
	return imageServiceInstance
}

// SetImageService sets the image service instance (primarily for testing)
func SetImageService(service ImageService) {
	imageServiceInstance = service
}

// UploadMenuImage checks the file's size, extension and leading bytes, then
// streams it to menu/{itemID}/{unix}_{name} with the declared content type
func (s *S3ImageService) UploadMenuImage(ctx context.Context, menuItemID uint, fileHeader *multipart.FileHeader) (string, error) {
	file, contentType, err := openMenuImage(fileHeader)
	if err != nil {
		return "", err
	}
	defer file.Close()

	key := menuImageKey(menuItemID, fileHeader.Filename, s.now())
	if err := s.s3Service.PutObject(ctx, key, contentType, file, fileHeader.Size); err != nil {
		return "", fmt.Errorf("failed to upload menu image: %w", err)
	}

	return key, nil
}

func (s *S3ImageService) MenuImageURL(ctx context.Context, imageKey string) (string, error) {
	if imageKey == "" {
		return "", nil
	}
	if err := checkMenuImageKey(imageKey); err != nil {
		return "", err
	}

	url, err := s.s3Service.GetPresignedURL(ctx, imageKey)
	if err != nil {
		return "", fmt.Errorf("failed to generate menu image URL: %w", err)
	}
	return url, nil
}

func (s *S3ImageService) DeleteMenuImage(ctx context.Context, imageKey string) error {
	if imageKey == "" {
		return nil
	}
	if err := checkMenuImageKey(imageKey); err != nil {
		return err
	}

	if err := s.s3Service.DeleteFile(ctx, imageKey); err != nil {
		return fmt.Errorf("failed to delete menu image: %w", err)
	}
	return nil
}

// openMenuImage validates an upload and returns it rewound to the start,
// along with the content type its extension declares
func openMenuImage(fileHeader *multipart.FileHeader) (multipart.File, string, error) {
	if err := utils.ValidateImageFile(fileHeader); err != nil {
		return nil, "", err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}

	head := make([]byte, sniffLength)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		file.Close()
		return nil, "", fmt.Errorf("failed to read file: %w", err)
	}
	if err := utils.CheckImageContent(fileHeader.Filename, head[:n]); err != nil {
		file.Close()
		return nil, "", err
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		file.Close()
		return nil, "", fmt.Errorf("failed to rewind file: %w", err)
	}
	return file, utils.ImageContentType(fileHeader.Filename), nil
}

// menuImageKey groups photos by menu item so replacements sit side by side
func menuImageKey(menuItemID uint, filename string, at time.Time) string {
	return fmt.Sprintf("%s/%d/%d_%s", MenuImagePrefix, menuItemID, at.Unix(), utils.SanitizeFilename(filename))
}

func checkMenuImageKey(imageKey string) error {
	if !strings.HasPrefix(imageKey, MenuImagePrefix+"/") || strings.Contains(imageKey, "..") {
		return fmt.Errorf("not a menu image key: %q", imageKey)
	}
	return nil
}

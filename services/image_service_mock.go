package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"sync"

	"github.com/djsmacker01/flavour-api/utils"
)

// MockImageService keeps uploaded menu images in memory. Uploads go through
// the same checks as S3ImageService; keys are menu/{itemID}/mock_{name}.
type MockImageService struct {
	images map[string][]byte
	mu     sync.RWMutex
}

// NewMockImageService creates a new mock image service
func NewMockImageService() *MockImageService {
	return &MockImageService{
		images: make(map[string][]byte),
	}
}

// SetAsMockForTesting sets this mock as the global image service instance for testing
func (m *MockImageService) SetAsMockForTesting() {
	SetImageService(m)
}

func (m *MockImageService) UploadMenuImage(ctx context.Context, menuItemID uint, fileHeader *multipart.FileHeader) (string, error) {
	file, _, err := openMenuImage(fileHeader)
	if err != nil {
		return "", err
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	imageKey := fmt.Sprintf("%s/%d/mock_%s", MenuImagePrefix, menuItemID, utils.SanitizeFilename(fileHeader.Filename))

	m.mu.Lock()
	m.images[imageKey] = content
	m.mu.Unlock()

	return imageKey, nil
}

func (m *MockImageService) MenuImageURL(ctx context.Context, imageKey string) (string, error) {
	if imageKey == "" {
		return "", nil
	}

	if !m.ImageExists(imageKey) {
		return "", fmt.Errorf("image not found in mock storage: %s", imageKey)
	}

	return fmt.Sprintf("https://test-bucket.s3.eu-west-2.amazonaws.com/%s?mock=true", imageKey), nil
}

func (m *MockImageService) DeleteMenuImage(ctx context.Context, imageKey string) error {
	m.mu.Lock()
	delete(m.images, imageKey)
	m.mu.Unlock()
	return nil
}

// ImageExists checks if an image exists in mock storage
func (m *MockImageService) ImageExists(imageKey string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.images[imageKey]
	return exists
}

// ImageCount returns the number of stored images
func (m *MockImageService) ImageCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.images)
}

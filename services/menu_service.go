package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/djsmacker01/flavour-api/logger"
	"github.com/djsmacker01/flavour-api/models"
	"github.com/djsmacker01/flavour-api/validation"
	"gorm.io/gorm"
)

// MenuFilter narrows a menu listing
type MenuFilter struct {
	Category           string
	Query              string
	IncludeUnavailable bool // staff listings show items customers cannot order
	Page               Page
}

// MenuService manages the catalog of menu items
type MenuService struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewMenuService creates a menu service
func NewMenuService(db *gorm.DB) *MenuService {
	return &MenuService{
		db:  db,
		log: logger.Default().With("component", "menu"),
	}
}

// List returns menu items ordered by category then name
func (s *MenuService) List(ctx context.Context, filter MenuFilter) ([]models.MenuItem, Pagination, error) {
	query := s.db.WithContext(ctx).Model(&models.MenuItem{})
	if !filter.IncludeUnavailable {
		query = query.Where("is_available = ?", true)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if q := strings.ToLower(strings.TrimSpace(filter.Query)); q != "" {
		like := "%" + q + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, Pagination{}, fmt.Errorf("failed to count menu items: %w", err)
	}

	var items []models.MenuItem
	if err := filter.Page.Paginate(query).Order("category ASC, name ASC, id ASC").Find(&items).Error; err != nil {
		return nil, Pagination{}, fmt.Errorf("failed to list menu items: %w", err)
	}

	return items, filter.Page.Result(total), nil
}

// Get returns one menu item. Unavailable items are hidden unless
// includeUnavailable is set.
func (s *MenuService) Get(ctx context.Context, id uint, includeUnavailable bool) (*models.MenuItem, error) {
	query := s.db.WithContext(ctx)
	if !includeUnavailable {
		query = query.Where("is_available = ?", true)
	}

	var item models.MenuItem
	err := query.First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMenuItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load menu item: %w", err)
	}
	return &item, nil
}

// Create adds a menu item
func (s *MenuService) Create(ctx context.Context, in validation.MenuItemInput, available bool) (*models.MenuItem, error) {
	if err := validation.ValidateMenuItem(&in); err != nil {
		return nil, err
	}

	item := models.MenuItem{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Category:    in.Category,
		IsAvailable: available,
	}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, fmt.Errorf("failed to create menu item: %w", err)
	}

	s.log.Info("menu_item_created", "Menu item created", "menu_item_id", item.ID, "name", item.Name)
	return &item, nil
}

// Update replaces the editable fields of a menu item. Prices already
// snapshotted on order lines are unaffected.
func (s *MenuService) Update(ctx context.Context, id uint, in validation.MenuItemInput, available bool) (*models.MenuItem, error) {
	item, err := s.Get(ctx, id, true)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateMenuItem(&in); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Model(item).Updates(map[string]interface{}{
		"name":         in.Name,
		"description":  in.Description,
		"price":        in.Price,
		"category":     in.Category,
		"is_available": available,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to update menu item: %w", err)
	}

	return s.Get(ctx, id, true)
}

// Delete soft-deletes a menu item so existing order lines keep their reference
func (s *MenuService) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.MenuItem{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete menu item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrMenuItemNotFound
	}

	s.log.Info("menu_item_deleted", "Menu item deleted", "menu_item_id", id)
	return nil
}

// SetImage records a new image key and returns the one it replaced
func (s *MenuService) SetImage(ctx context.Context, id uint, imageKey string) (string, error) {
	item, err := s.Get(ctx, id, true)
	if err != nil {
		return "", err
	}

	var previous string
	if item.ImageS3Key != nil {
		previous = *item.ImageS3Key
	}

	if err := s.db.WithContext(ctx).Model(item).Update("image_s3_key", imageKey).Error; err != nil {
		return "", fmt.Errorf("failed to save menu item image: %w", err)
	}
	return previous, nil
}

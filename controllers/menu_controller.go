package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/djsmacker01/flavour-api/config"
	"github.com/djsmacker01/flavour-api/logger"
	"github.com/djsmacker01/flavour-api/models"
	"github.com/djsmacker01/flavour-api/services"
	"github.com/djsmacker01/flavour-api/validation"
	"github.com/gin-gonic/gin"
)

// MenuItemRequest is the body for creating or updating a menu item.
// Price positivity and name trimming are checked by the menu service.
type MenuItemRequest struct {
	Name        string       `json:"name" binding:"required,max=200"`
	Description string       `json:"description"`
	Price       models.Money `json:"price"`
	Category    string       `json:"category" binding:"omitempty,menu_category"`
	IsAvailable *bool        `json:"is_available"`
}

func (r MenuItemRequest) input() validation.MenuItemInput {
	return validation.MenuItemInput{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Category:    r.Category,
	}
}

func (r MenuItemRequest) available() bool {
	return r.IsAvailable == nil || *r.IsAvailable
}

func menuService() *services.MenuService {
	return services.NewMenuService(config.GetDB())
}

// withImageURL fills in the presigned image URL when an image is stored.
// A storage failure leaves the URL empty rather than failing the request.
func withImageURL(ctx context.Context, item *models.MenuItem) {
	imageService := services.GetImageService()
	if imageService == nil || item.ImageS3Key == nil || *item.ImageS3Key == "" {
		return
	}

	url, err := imageService.MenuImageURL(ctx, *item.ImageS3Key)
	if err != nil {
		logger.Default().Warn("image_url_failed", "Failed to presign menu image", "menu_item_id", item.ID, "error", err.Error())
		return
	}
	item.ImageURL = &url
}

// ListMenuItems handles GET /api/v1/menu?category=&q=&page=&limit=
func ListMenuItems(c *gin.Context) {
	category := strings.ToLower(strings.TrimSpace(c.Query("category")))
	if category != "" && !models.IsValidCategory(category) {
		respondValidation(c, validation.Errors{"category": "Unknown menu category."})
		return
	}

	items, pagination, err := menuService().List(c.Request.Context(), services.MenuFilter{
		Category: category,
		Query:    c.Query("q"),
		Page:     pageFromQuery(c),
	})
	if err != nil {
		respondServiceError(c, "list_menu", err)
		return
	}

	for i := range items {
		withImageURL(c.Request.Context(), &items[i])
	}
	respondPage(c, items, pagination)
}

// GetMenuItem handles GET /api/v1/menu/:id
func GetMenuItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	item, err := menuService().Get(c.Request.Context(), id, false)
	if err != nil {
		respondServiceError(c, "get_menu_item", err)
		return
	}

	withImageURL(c.Request.Context(), item)
	respondData(c, http.StatusOK, item)
}

// CreateMenuItem handles POST /api/v1/menu (staff only)
func CreateMenuItem(c *gin.Context) {
	var req MenuItemRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := menuService().Create(c.Request.Context(), req.input(), req.available())
	if err != nil {
		respondServiceError(c, "create_menu_item", err)
		return
	}

	respondData(c, http.StatusCreated, item)
}

// UpdateMenuItem handles PUT /api/v1/menu/:id (staff only)
func UpdateMenuItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req MenuItemRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := menuService().Update(c.Request.Context(), id, req.input(), req.available())
	if err != nil {
		respondServiceError(c, "update_menu_item", err)
		return
	}

	withImageURL(c.Request.Context(), item)
	respondData(c, http.StatusOK, item)
}

// DeleteMenuItem handles DELETE /api/v1/menu/:id (staff only)
func DeleteMenuItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := menuService().Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, "delete_menu_item", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Menu item deleted",
	})
}

// UploadMenuItemImage handles POST /api/v1/menu/:id/image (staff only).
// The multipart field is "image"; a replaced image is removed from storage.
func UploadMenuItemImage(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	imageService := services.GetImageService()
	if imageService == nil {
		respondError(c, http.StatusServiceUnavailable, "STORAGE_NOT_CONFIGURED", "Image storage is not configured")
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		respondError(c, http.StatusBadRequest, "MISSING_FILE", "An image file is required in the \"image\" field")
		return
	}

	ctx := c.Request.Context()
	menu := menuService()
	if _, err := menu.Get(ctx, id, true); err != nil {
		respondServiceError(c, "upload_menu_image", err)
		return
	}

	imageKey, err := imageService.UploadMenuImage(ctx, id, fileHeader)
	if err != nil {
		respondServiceError(c, "upload_menu_image", err)
		return
	}

	previous, err := menu.SetImage(ctx, id, imageKey)
	if err != nil {
		_ = imageService.DeleteMenuImage(ctx, imageKey)
		respondServiceError(c, "upload_menu_image", err)
		return
	}
	if previous != "" && previous != imageKey {
		if err := imageService.DeleteMenuImage(ctx, previous); err != nil {
			logger.Default().Warn("image_cleanup_failed", "Failed to delete replaced menu image", "key", previous, "error", err.Error())
		}
	}

	item, err := menu.Get(ctx, id, true)
	if err != nil {
		respondServiceError(c, "upload_menu_image", err)
		return
	}

	withImageURL(ctx, item)
	respondData(c, http.StatusOK, item)
}

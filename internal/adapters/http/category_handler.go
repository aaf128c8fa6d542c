package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/toodoo/core/internal/application/services"
	"github.com/toodoo/core/internal/infrastructure/logger"
	"github.com/toodoo/core/internal/ports"
)

// CategoryHandler handles category-related requests
type CategoryHandler struct {
	categoryService *services.CategoryService
	logger          *logger.Logger
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categoryService *services.CategoryService, logger *logger.Logger) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		logger:          logger,
	}
}

// ListCategories handles listing the caller's own plus global categories
func (h *CategoryHandler) ListCategories(c echo.Context) error {
	actor := getUserIDFromContext(c)

	categories, err := h.categoryService.ListCategories(c.Request().Context(), actor)
	if err != nil {
		h.logger.Error("List categories failed", "error", err, "user_id", actor)
		return mapDomainError(err, "Failed to list categories")
	}

	return c.JSON(http.StatusOK, categories)
}

// CreateCategory handles category creation
func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	actor := getUserIDFromContext(c)

	var req ports.CreateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	category, err := h.categoryService.CreateCategory(c.Request().Context(), actor, req)
	if err != nil {
		h.logger.Error("Create category failed", "error", err, "user_id", actor)
		return mapDomainError(err, "Failed to create category")
	}

	return c.JSON(http.StatusCreated, category)
}

// UpdateCategory handles updating a category
func (h *CategoryHandler) UpdateCategory(c echo.Context) error {
	actor := getUserIDFromContext(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid category ID")
	}

	var req ports.UpdateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	category, err := h.categoryService.UpdateCategory(c.Request().Context(), actor, id, req)
	if err != nil {
		h.logger.Error("Update category failed", "error", err, "category_id", id, "user_id", actor)
		return mapDomainError(err, "Failed to update category")
	}

	return c.JSON(http.StatusOK, category)
}

// DeleteCategory handles deleting a category
func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	actor := getUserIDFromContext(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid category ID")
	}

	if err := h.categoryService.DeleteCategory(c.Request().Context(), actor, id); err != nil {
		h.logger.Error("Delete category failed", "error", err, "category_id", id, "user_id", actor)
		return mapDomainError(err, "Failed to delete category")
	}

	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Category deleted successfully"})
}

// PinCategory handles pinning a category to the caller's sidebar
func (h *CategoryHandler) PinCategory(c echo.Context) error {
	actor := getUserIDFromContext(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid category ID")
	}

	if err := h.categoryService.PinCategory(c.Request().Context(), actor, id); err != nil {
		h.logger.Error("Pin category failed", "error", err, "category_id", id, "user_id", actor)
		return mapDomainError(err, "Failed to pin category")
	}

	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Category pinned"})
}

// UnpinCategory handles unpinning a category
func (h *CategoryHandler) UnpinCategory(c echo.Context) error {
	actor := getUserIDFromContext(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid category ID")
	}

	if err := h.categoryService.UnpinCategory(c.Request().Context(), actor, id); err != nil {
		h.logger.Error("Unpin category failed", "error", err, "category_id", id, "user_id", actor)
		return mapDomainError(err, "Failed to unpin category")
	}

	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Category unpinned"})
}

// MakeGlobal handles sharing a category with every user
func (h *CategoryHandler) MakeGlobal(c echo.Context) error {
	return h.setGlobal(c, true)
}

// RevokeGlobal handles making a shared category private again
func (h *CategoryHandler) RevokeGlobal(c echo.Context) error {
	return h.setGlobal(c, false)
}

func (h *CategoryHandler) setGlobal(c echo.Context, global bool) error {
	actor := getUserIDFromContext(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid category ID")
	}

	if err := h.categoryService.SetGlobal(c.Request().Context(), actor, id, global); err != nil {
		h.logger.Error("Set category global failed", "error", err, "category_id", id, "user_id", actor)
		return mapDomainError(err, "Failed to update category")
	}

	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Category updated"})
}

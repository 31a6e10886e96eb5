package handlers

import (
	"net/http"

	"github.com/jordanlanch/adcreativelab/pkg/api/errors"
	"github.com/jordanlanch/adcreativelab/pkg/avatars"
	"github.com/labstack/echo/v4"
)

// AvatarHandler handles customer avatar endpoints
type AvatarHandler struct {
	avatarService *avatars.Service
}

// NewAvatarHandler creates a new avatar handler
func NewAvatarHandler(avatarService *avatars.Service) *AvatarHandler {
	return &AvatarHandler{avatarService: avatarService}
}

// List godoc
// @Summary List avatars
// @Tags Avatars
// @Produce json
// @Success 200 {object} map[string]interface{} "Avatars with count"
// @Router /avatars [get]
func (h *AvatarHandler) List(c echo.Context) error {
	ctx, cancel := withTimeout(c, requestTimeout)
	defer cancel()

	list, err := h.avatarService.List(ctx)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"avatars": list,
		"count":   len(list),
	})
}

// Get godoc
// @Summary Get avatar
// @Description Returns an avatar with its sub-avatars and research, newest research first
// @Tags Avatars
// @Produce json
// @Param id path string true "Avatar ID"
// @Success 200 {object} models.Avatar "Avatar"
// @Failure 404 {object} models.ErrorResponse "Avatar not found"
// @Router /avatars/{id} [get]
func (h *AvatarHandler) Get(c echo.Context) error {
	ctx, cancel := withTimeout(c, requestTimeout)
	defer cancel()

	avatar, err := h.avatarService.Get(ctx, c.Param("id"))
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, avatar)
}

// Create godoc
// @Summary Create avatar
// @Tags Avatars
// @Accept json
// @Produce json
// @Param request body avatars.CreateAvatarRequest true "Avatar"
// @Success 201 {object} models.Avatar "Created avatar"
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Router /avatars [post]
func (h *AvatarHandler) Create(c echo.Context) error {
	var req avatars.CreateAvatarRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, err)
	}

	ctx, cancel := withTimeout(c, requestTimeout)
	defer cancel()

	avatar, err := h.avatarService.Create(ctx, req)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusCreated, avatar)
}

// Update godoc
// @Summary Update avatar
// @Tags Avatars
// @Accept json
// @Produce json
// @Param id path string true "Avatar ID"
// @Param request body avatars.UpdateAvatarRequest true "Fields to change"
// @Success 200 {object} models.Avatar "Updated avatar"
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Failure 404 {object} models.ErrorResponse "Avatar not found"
// @Router /avatars/{id} [patch]
func (h *AvatarHandler) Update(c echo.Context) error {
	var req avatars.UpdateAvatarRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, err)
	}

	ctx, cancel := withTimeout(c, requestTimeout)
	defer cancel()

	avatar, err := h.avatarService.Update(ctx, c.Param("id"), req)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, avatar)
}

// Delete godoc
// @Summary Delete avatar
// @Description Deletes an avatar with its sub-avatars and research. Ads targeting it are kept and lose the link.
// @Tags Avatars
// @Param id path string true "Avatar ID"
// @Success 204 "Deleted"
// @Failure 404 {object} models.ErrorResponse "Avatar not found"
// @Router /avatars/{id} [delete]
func (h *AvatarHandler) Delete(c echo.Context) error {
	ctx, cancel := withTimeout(c, requestTimeout)
	defer cancel()

	if err := h.avatarService.Delete(ctx, c.Param("id")); err != nil {
		return errors.Respond(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// AddSubAvatar godoc
// @Summary Add sub-avatar
// @Tags Avatars
// @Accept json
// @Produce json
// @Param id path string true "Avatar ID"
// @Param request body avatars.CreateSubAvatarRequest true "Sub-avatar"
// @Success 201 {object} models.SubAvatar "Created sub-avatar"
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Failure 404 {object} models.ErrorResponse "Avatar not found"
// @Router /avatars/{id}/sub-avatars [post]
func (h *AvatarHandler) AddSubAvatar(c echo.Context) error {
	var req avatars.CreateSubAvatarRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, err)
	}

	ctx, cancel := withTimeout(c, requestTimeout)
	defer cancel()

	sub, err := h.avatarService.AddSubAvatar(ctx, c.Param("id"), req)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusCreated, sub)
}

// AddResearch godoc
// @Summary Add research
// @Description Adds a batch of research items. Either every item is stored or none is.
// @Tags Avatars
// @Accept json
// @Produce json
// @Param id path string true "Avatar ID"
// @Param request body avatars.AddResearchRequest true "Research items"
// @Success 201 {object} map[string]interface{} "Created items with count"
// @Failure 400 {object} models.ErrorResponse "Invalid item"
// @Failure 404 {object} models.ErrorResponse "Avatar not found"
// @Router /avatars/{id}/research [post]
func (h *AvatarHandler) AddResearch(c echo.Context) error {
	var req avatars.AddResearchRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, err)
	}

	ctx, cancel := withTimeout(c, requestTimeout)
	defer cancel()

	items, err := h.avatarService.AddResearch(ctx, c.Param("id"), req)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"items": items,
		"count": len(items),
	})
}

// DeleteResearchItem godoc
// @Summary Delete research item
// @Tags Avatars
// @Param id path string true "Avatar ID"
// @Param itemId path string true "Research item ID"
// @Success 204 "Deleted"
// @Failure 404 {object} models.ErrorResponse "Research item not found"
// @Router /avatars/{id}/research/{itemId} [delete]
func (h *AvatarHandler) DeleteResearchItem(c echo.Context) error {
	ctx, cancel := withTimeout(c, requestTimeout)
	defer cancel()

	if err := h.avatarService.DeleteResearchItem(ctx, c.Param("id"), c.Param("itemId")); err != nil {
		return errors.Respond(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

package saved

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

const userIDHeader = "X-User-ID"

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.POST("/v1/saved", h.SaveHandler)
	router.GET("/v1/saved", h.ListHandler)
	router.GET("/v1/saved/:excursionId", h.IsSavedHandler)
	router.DELETE("/v1/saved/:excursionId", h.UnsaveHandler)
}

func userID(c *gin.Context) (string, bool) {
	id := c.GetHeader(userIDHeader)
	if id == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return "", false
	}
	return id, true
}

func (h *Handler) SaveHandler(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	var req SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}

	se, err := h.service.Save(c.Request.Context(), uid, req)
	if err != nil {
		if errors.Is(err, ErrExcursionRequired) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save excursion"})
		return
	}

	c.JSON(http.StatusCreated, se)
}

func (h *Handler) ListHandler(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	items, err := h.service.List(c.Request.Context(), uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list saved excursions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"saved": items})
}

func (h *Handler) IsSavedHandler(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	exists, err := h.service.IsSaved(c.Request.Context(), uid, c.Param("excursionId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check saved excursion"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"saved": exists})
}

func (h *Handler) UnsaveHandler(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	err := h.service.Unsave(c.Request.Context(), uid, c.Param("excursionId"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Saved excursion not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unsave excursion"})
		return
	}

	c.Status(http.StatusNoContent)
}

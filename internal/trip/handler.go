package trip

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// userIDHeader carries the authenticated user id. Authentication itself is
// handled upstream of this service.
const userIDHeader = "X-User-ID"

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.POST("/v1/trips", h.CreateTripHandler)
	router.GET("/v1/trips", h.ListTripsHandler)
	router.DELETE("/v1/trips/:tripId", h.DeleteTripHandler)
	router.POST("/v1/trips/:tripId/excursions", h.AddExcursionHandler)
	router.GET("/v1/trips/:tripId/excursions", h.ListExcursionsHandler)
	router.DELETE("/v1/trips/:tripId/excursions/:excursionId", h.RemoveExcursionHandler)
}

func userID(c *gin.Context) (string, bool) {
	id := c.GetHeader(userIDHeader)
	if id == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return "", false
	}
	return id, true
}

func (h *Handler) CreateTripHandler(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	var req CreateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}

	t, err := h.service.Create(c.Request.Context(), uid, req)
	if err != nil {
		if errors.Is(err, ErrNameRequired) || errors.Is(err, ErrDestinationRequired) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create trip"})
		return
	}

	c.JSON(http.StatusCreated, t)
}

func (h *Handler) ListTripsHandler(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	trips, err := h.service.List(c.Request.Context(), uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list trips"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"trips": trips})
}

func (h *Handler) DeleteTripHandler(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	err := h.service.Delete(c.Request.Context(), c.Param("tripId"), uid)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Trip not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete trip"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) AddExcursionHandler(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	var req AddExcursionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}

	te, err := h.service.AddExcursion(c.Request.Context(), c.Param("tripId"), uid, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrExcursionRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Trip not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add excursion"})
		}
		return
	}

	c.JSON(http.StatusCreated, te)
}

func (h *Handler) ListExcursionsHandler(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	excursions, err := h.service.ListExcursions(c.Request.Context(), c.Param("tripId"), uid)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Trip not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list excursions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"excursions": excursions})
}

func (h *Handler) RemoveExcursionHandler(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	err := h.service.RemoveExcursion(c.Request.Context(), c.Param("tripId"), uid, c.Param("excursionId"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove excursion"})
		return
	}

	c.Status(http.StatusNoContent)
}

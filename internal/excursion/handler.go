package excursion

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{
		service: s,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/search", h.SearchHandler)
	router.POST("/v1/excursions/filter", h.FilterHandler)
}

// SearchResult is the wire shape the UI consumes.
type SearchResult struct {
	Excursions []Excursion `json:"excursions"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	Error      string      `json:"error,omitempty"`
	Metadata   *Metadata   `json:"metadata,omitempty"`
}

func (h *Handler) SearchHandler(c *gin.Context) {
	destination := c.Query("destination")
	if destination == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Destination is required",
			"code":  ErrorCodeValidation,
		})
		return
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	req := SearchRequest{
		Destination: destination,
		StartDate:   c.Query("from"),
		EndDate:     c.Query("to"),
		Page:        page,
	}

	response, err := h.service.Search(c.Request.Context(), req)
	if err != nil {
		h.sendSearchError(c, err, page)
		return
	}

	c.JSON(http.StatusOK, SearchResult{
		Excursions: response.Excursions,
		Total:      len(response.Excursions),
		Page:       page,
		Metadata:   &response.Metadata,
	})
}

func (h *Handler) FilterHandler(c *gin.Context) {
	var req FilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid JSON body",
			"code":  ErrorCodeValidation,
		})
		return
	}
	if req.Destination == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Destination is required",
			"code":  ErrorCodeValidation,
		})
		return
	}

	response, err := h.service.Filter(c.Request.Context(), req)
	if err != nil {
		h.sendSearchError(c, err, req.Page)
		return
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	c.JSON(http.StatusOK, SearchResult{
		Excursions: response.Excursions,
		Total:      len(response.Excursions),
		Page:       page,
		Metadata:   &response.Metadata,
	})
}

// sendSearchError degrades provider-side failures to an empty 200 result so a
// flaky upstream never breaks the client UI. Only genuinely unexpected errors
// become a 500.
func (h *Handler) sendSearchError(c *gin.Context, err error, page int) {
	if page < 1 {
		page = 1
	}

	var appErr *AppError
	if errors.As(err, &appErr) && IsDegradable(err) {
		c.JSON(http.StatusOK, SearchResult{
			Excursions: []Excursion{},
			Total:      0,
			Page:       page,
			Error:      appErr.Message,
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   "Internal Server Error",
		"code":    ErrorCodeInternalFailure,
		"details": err.Error(),
	})
}

package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"PedagoPass/internal/service"
)

type DestinationHandler struct {
	responder
	destinations *service.DestinationService
	suggestions  *service.SuggestionService
}

func NewDestinationHandler(d *service.DestinationService, s *service.SuggestionService, log *slog.Logger, production bool) *DestinationHandler {
	return &DestinationHandler{responder: responder{log: log, production: production}, destinations: d, suggestions: s}
}

type SuggestionReq struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (h *DestinationHandler) List(c *gin.Context) {
	page, err := h.destinations.ListDestinations(c.Request.Context(), service.ListDestinationsInput{
		Query:    c.Query("q"),
		Country:  c.Query("country"),
		Featured: c.Query("featured") == "true",
		Page:     queryInt(c, "page"),
		Size:     queryInt(c, "size"),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *DestinationHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	d, err := h.destinations.GetDestination(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"destination": d})
}

func (h *DestinationHandler) Create(c *gin.Context) {
	var req service.CreateDestinationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidParams(c)
		return
	}
	d, err := h.destinations.CreateDestination(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"destination": d})
}

// Suggest 用户提交目的地建议
func (h *DestinationHandler) Suggest(c *gin.Context) {
	var req SuggestionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidParams(c)
		return
	}
	s, err := h.suggestions.CreateSuggestion(c.Request.Context(), currentUser(c), req.Title, req.Description)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"suggestion": s})
}

func (h *DestinationHandler) Suggestions(c *gin.Context) {
	list, err := h.suggestions.ListSuggestions(c.Request.Context(), c.Query("status"), queryInt(c, "page"), queryInt(c, "size"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": list})
}

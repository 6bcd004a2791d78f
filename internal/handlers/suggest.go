package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/adolfohrq/designali-hub-google/internal/middleware"
	"github.com/adolfohrq/designali-hub-google/internal/services"
	"github.com/adolfohrq/designali-hub-google/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type SuggestHandler struct {
	suggestService SuggestServiceInterface
}

func NewSuggestHandler(suggestService SuggestServiceInterface) *SuggestHandler {
	return &SuggestHandler{suggestService: suggestService}
}

func (h *SuggestHandler) SuggestTools(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.SuggestToolsRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Topic == "" {
		c.BadRequest("topic is required")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
	defer cancel()

	tools, err := h.suggestService.SuggestTools(ctx, req.Topic, req.Count)
	if err != nil {
		if errors.Is(err, services.ErrSuggestionsDisabled) {
			c.BadRequest("suggestions are not configured")
			return
		}
		c.InternalServerError("failed to fetch suggestions")
		return
	}

	response := make([]dto.SuggestedToolResponse, len(tools))
	for i, t := range tools {
		response[i] = dto.SuggestedToolResponse{
			Name:        t.Name,
			URL:         t.URL,
			Category:    t.Category,
			Description: t.Description,
		}
	}

	_ = c.JSON(200, response)
}

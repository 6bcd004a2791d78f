package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/adolfohrq/designali-hub-google/internal/middleware"
	"github.com/adolfohrq/designali-hub-google/internal/models"
	"github.com/adolfohrq/designali-hub-google/internal/services"
	"github.com/adolfohrq/designali-hub-google/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type ItemHandler struct {
	itemService         ItemServiceInterface
	notificationService NotificationServiceInterface
	hub                 HubInterface
}

func NewItemHandler(
	itemService ItemServiceInterface,
	notificationService NotificationServiceInterface,
	hub HubInterface,
) *ItemHandler {
	return &ItemHandler{
		itemService:         itemService,
		notificationService: notificationService,
		hub:                 hub,
	}
}

func itemResponse(it *models.Item) dto.Item {
	return dto.Item{
		ID:         it.ID,
		UserID:     it.UserID,
		Data:       it.Data,
		IsFavorite: it.IsFavorite,
		Version:    it.Version,
		CreatedAt:  it.CreatedAt,
		UpdatedAt:  it.UpdatedAt,
	}
}

func (h *ItemHandler) List(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	collection := c.Param("collection")

	items, err := h.itemService.ListByOwner(context.Background(), collection, userID)
	if err != nil {
		if errors.Is(err, services.ErrUnknownCollection) {
			c.NotFound("unknown collection: " + collection)
			return
		}
		c.InternalServerError("failed to list items")
		return
	}

	response := make([]dto.Item, len(items))
	for i := range items {
		response[i] = itemResponse(&items[i])
	}

	_ = c.JSON(200, response)
}

func (h *ItemHandler) Get(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	collection := c.Param("collection")

	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		c.BadRequest("invalid item id")
		return
	}

	item, err := h.itemService.GetByID(context.Background(), collection, itemID, userID)
	if err != nil {
		if errors.Is(err, services.ErrUnknownCollection) {
			c.NotFound("unknown collection: " + collection)
			return
		}
		c.NotFound("item not found")
		return
	}

	_ = c.JSON(200, itemResponse(item))
}

func (h *ItemHandler) Create(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	collection := c.Param("collection")

	var req dto.CreateItemRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	ctx := context.Background()

	item, err := h.itemService.Create(ctx, collection, userID, req.Data, req.IsFavorite)
	if err != nil {
		if errors.Is(err, services.ErrUnknownCollection) {
			c.NotFound("unknown collection: " + collection)
			return
		}
		c.InternalServerError("failed to create item")
		return
	}

	h.hub.BroadcastInsert(collection, itemResponse(item))

	_, _ = h.notificationService.Create(ctx, userID,
		"Item added",
		fmt.Sprintf("A new entry was added to %s", collection),
		models.NotificationSuccess, nil)

	_ = c.JSON(201, itemResponse(item))
}

func (h *ItemHandler) Update(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	collection := c.Param("collection")

	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		c.BadRequest("invalid item id")
		return
	}

	var req dto.UpdateItemRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	item, err := h.itemService.Update(context.Background(), collection, itemID, userID, req.Data, req.IsFavorite)
	if err != nil {
		if errors.Is(err, services.ErrUnknownCollection) {
			c.NotFound("unknown collection: " + collection)
			return
		}
		if errors.Is(err, services.ErrNoFieldsToUpdate) {
			c.BadRequest("no fields to update")
			return
		}
		c.NotFound("item not found")
		return
	}

	h.hub.BroadcastUpdate(collection, itemResponse(item))

	_ = c.JSON(200, itemResponse(item))
}

func (h *ItemHandler) Delete(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	collection := c.Param("collection")

	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		c.BadRequest("invalid item id")
		return
	}

	if err := h.itemService.Delete(context.Background(), collection, itemID, userID); err != nil {
		if errors.Is(err, services.ErrUnknownCollection) {
			c.NotFound("unknown collection: " + collection)
			return
		}
		c.NotFound("item not found")
		return
	}

	h.hub.BroadcastDelete(collection, userID, itemID)

	_ = c.JSON(200, map[string]string{"message": "item deleted"})
}

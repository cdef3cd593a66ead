package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/ski-rental-api/internal/equipment"
	"github.com/gdg-garage/ski-rental-api/internal/models"
	"github.com/rs/zerolog/log"
)

type EquipmentHandler struct {
	store *equipment.Store
}

func NewEquipmentHandler(store *equipment.Store) *EquipmentHandler {
	return &EquipmentHandler{store: store}
}

type ListEquipmentRequest struct {
	Category string `query:"category" enum:"ski,snowboard,boots,helmet,clothing" doc:"Only items of this category"`
	Size     string `query:"size" maxLength:"32" doc:"Only items of this size"`
}

type ListEquipmentResponse struct {
	Body []models.Equipment
}

func (h *EquipmentHandler) HandleList(ctx context.Context, input *ListEquipmentRequest) (*ListEquipmentResponse, error) {
	items, err := h.store.List(ctx, equipment.Filter{Category: input.Category, Size: input.Size})
	if err != nil {
		log.Error().Err(err).Msg("Failed to list equipment")
		return nil, huma.Error500InternalServerError("資料庫錯誤")
	}
	return &ListEquipmentResponse{Body: items}, nil
}

type EquipmentIDInput struct {
	ID uint `path:"id" minimum:"1"`
}

type EquipmentResponse struct {
	Body models.Equipment
}

func (h *EquipmentHandler) HandleGet(ctx context.Context, input *EquipmentIDInput) (*EquipmentResponse, error) {
	item, err := h.store.Get(ctx, input.ID)
	if err != nil {
		if errors.Is(err, equipment.ErrNotFound) {
			return nil, huma.Error404NotFound("雪具不存在")
		}
		log.Error().Err(err).Uint("id", input.ID).Msg("Failed to load equipment")
		return nil, huma.Error500InternalServerError("資料庫錯誤")
	}
	return &EquipmentResponse{Body: *item}, nil
}

type StringListResponse struct {
	Body []string
}

func (h *EquipmentHandler) HandleCategories(ctx context.Context, input *struct{}) (*StringListResponse, error) {
	categories, err := h.store.Categories(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list equipment categories")
		return nil, huma.Error500InternalServerError("資料庫錯誤")
	}
	return &StringListResponse{Body: categories}, nil
}

func (h *EquipmentHandler) HandleSizes(ctx context.Context, input *struct{}) (*StringListResponse, error) {
	sizes, err := h.store.Sizes(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list equipment sizes")
		return nil, huma.Error500InternalServerError("資料庫錯誤")
	}
	return &StringListResponse{Body: sizes}, nil
}

package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/ski-rental-api/internal/auth"
	"github.com/gdg-garage/ski-rental-api/internal/discount"
	"github.com/gdg-garage/ski-rental-api/internal/models"
	"github.com/gdg-garage/ski-rental-api/internal/pricing"
	"github.com/gdg-garage/ski-rental-api/internal/reservation"
	"github.com/rs/zerolog/log"
)

// AdminHandler serves the staff-only back office.
type AdminHandler struct {
	auth         *auth.AuthHandler
	codes        *discount.GormStore
	reservations *reservation.Service
}

func NewAdminHandler(authHandler *auth.AuthHandler, codes *discount.GormStore, reservations *reservation.Service) *AdminHandler {
	return &AdminHandler{auth: authHandler, codes: codes, reservations: reservations}
}

type DiscountCodeListResponse struct {
	Body []models.DiscountCode
}

func (h *AdminHandler) HandleListCodes(ctx context.Context, input *struct{}) (*DiscountCodeListResponse, error) {
	if _, err := h.auth.RequireStaff(ctx); err != nil {
		return nil, err
	}
	codes, err := h.codes.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list discount codes")
		return nil, huma.Error500InternalServerError("Failed to list discount codes")
	}
	return &DiscountCodeListResponse{Body: codes}, nil
}

type CreateDiscountCodeRequest struct {
	Body struct {
		Code          string  `json:"code" minLength:"1" maxLength:"64"`
		Name          string  `json:"name" minLength:"1" maxLength:"100"`
		DiscountType  string  `json:"discount_type" enum:"percentage,fixed"`
		DiscountValue float64 `json:"discount_value" exclusiveMinimum:"0"`
		ValidFrom     string  `json:"valid_from,omitempty" doc:"First valid day, YYYY-MM-DD"`
		ValidUntil    string  `json:"valid_until,omitempty" doc:"Last valid day, YYYY-MM-DD"`
		UsageLimit    *int    `json:"usage_limit,omitempty" minimum:"1" doc:"Omit for unlimited use"`
		Active        *bool   `json:"active,omitempty" doc:"Defaults to true"`
	}
}

type DiscountCodeResponse struct {
	Body models.DiscountCode
}

func (h *AdminHandler) HandleCreateCode(ctx context.Context, input *CreateDiscountCodeRequest) (*DiscountCodeResponse, error) {
	staff, err := h.auth.RequireStaff(ctx)
	if err != nil {
		return nil, err
	}

	body := input.Body
	if discount.Kind(body.DiscountType) == discount.Percentage && body.DiscountValue > 100 {
		return nil, huma.Error400BadRequest("Invalid discount code", &huma.ErrorDetail{
			Location: "body.discount_value",
			Message:  "percentage must be at most 100",
			Value:    body.DiscountValue,
		})
	}
	from, err := parseDay(body.ValidFrom, "body.valid_from")
	if err != nil {
		return nil, err
	}
	until, err := parseDay(body.ValidUntil, "body.valid_until")
	if err != nil {
		return nil, err
	}
	if from != nil && until != nil && until.Before(*from) {
		return nil, huma.Error400BadRequest("Invalid discount code", &huma.ErrorDetail{
			Location: "body.valid_until",
			Message:  "must not be before valid_from",
		})
	}

	code := models.DiscountCode{
		Code:          strings.TrimSpace(body.Code),
		Name:          body.Name,
		DiscountType:  body.DiscountType,
		DiscountValue: body.DiscountValue,
		ValidFrom:     from,
		ValidUntil:    until,
		UsageLimit:    body.UsageLimit,
		Active:        body.Active == nil || *body.Active,
	}
	if err := h.codes.Create(ctx, &code); err != nil {
		if errors.Is(err, discount.ErrDuplicate) {
			return nil, huma.Error409Conflict("Discount code already exists")
		}
		log.Error().Err(err).Msg("Failed to create discount code")
		return nil, huma.Error500InternalServerError("Failed to create discount code")
	}

	log.Info().Str("code", code.Code).Str("staff", staff.Username).Msg("Discount code created")
	return &DiscountCodeResponse{Body: code}, nil
}

type UpdateDiscountCodeRequest struct {
	Code string `path:"code" maxLength:"64"`
	Body struct {
		Name            *string `json:"name,omitempty" maxLength:"100"`
		Active          *bool   `json:"active,omitempty"`
		ValidFrom       *string `json:"valid_from,omitempty" doc:"YYYY-MM-DD; empty clears the bound"`
		ValidUntil      *string `json:"valid_until,omitempty" doc:"YYYY-MM-DD; empty clears the bound"`
		UsageLimit      *int    `json:"usage_limit,omitempty" minimum:"1"`
		ClearUsageLimit bool    `json:"clear_usage_limit,omitempty" doc:"Make the code unlimited again"`
	}
}

func (h *AdminHandler) HandleUpdateCode(ctx context.Context, input *UpdateDiscountCodeRequest) (*DiscountCodeResponse, error) {
	staff, err := h.auth.RequireStaff(ctx)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Body.Name != nil {
		updates["name"] = *input.Body.Name
	}
	if input.Body.Active != nil {
		updates["active"] = *input.Body.Active
	}
	switch {
	case input.Body.ClearUsageLimit && input.Body.UsageLimit != nil:
		return nil, huma.Error400BadRequest("Invalid update", &huma.ErrorDetail{
			Location: "body.clear_usage_limit",
			Message:  "cannot be combined with usage_limit",
		})
	case input.Body.ClearUsageLimit:
		updates["usage_limit"] = nil
	case input.Body.UsageLimit != nil:
		updates["usage_limit"] = *input.Body.UsageLimit
	}
	if input.Body.ValidFrom != nil {
		day, err := parseDay(*input.Body.ValidFrom, "body.valid_from")
		if err != nil {
			return nil, err
		}
		updates["valid_from"] = day
	}
	if input.Body.ValidUntil != nil {
		day, err := parseDay(*input.Body.ValidUntil, "body.valid_until")
		if err != nil {
			return nil, err
		}
		updates["valid_until"] = day
	}
	if len(updates) == 0 {
		return nil, huma.Error400BadRequest("Nothing to update")
	}

	code, err := h.codes.Update(ctx, input.Code, updates)
	if err != nil {
		if errors.Is(err, discount.ErrNotFound) {
			return nil, huma.Error404NotFound("Discount code not found")
		}
		log.Error().Err(err).Str("code", input.Code).Msg("Failed to update discount code")
		return nil, huma.Error500InternalServerError("Failed to update discount code")
	}

	log.Info().Str("code", code.Code).Str("staff", staff.Username).Msg("Discount code updated")
	return &DiscountCodeResponse{Body: *code}, nil
}

type ListReservationsRequest struct {
	Limit  int `query:"limit" default:"50" minimum:"1" maximum:"100"`
	Offset int `query:"offset" default:"0" minimum:"0"`
}

type ListReservationsResponse struct {
	Body struct {
		Total        int64                `json:"total"`
		Reservations []models.Reservation `json:"reservations"`
	}
}

func (h *AdminHandler) HandleListReservations(ctx context.Context, input *ListReservationsRequest) (*ListReservationsResponse, error) {
	if _, err := h.auth.RequireStaff(ctx); err != nil {
		return nil, err
	}
	rows, total, err := h.reservations.List(ctx, input.Limit, input.Offset)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list reservations")
		return nil, huma.Error500InternalServerError("Failed to list reservations")
	}
	resp := &ListReservationsResponse{}
	resp.Body.Total = total
	resp.Body.Reservations = rows
	return resp, nil
}

// parseDay reads an optional YYYY-MM-DD date. Empty means unbounded.
func parseDay(value, location string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	day, err := time.Parse(pricing.DateLayout, value)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid date", &huma.ErrorDetail{
			Location: location,
			Message:  "must match " + pricing.DateLayout,
			Value:    value,
		})
	}
	return &day, nil
}

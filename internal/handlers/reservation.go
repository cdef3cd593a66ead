package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/ski-rental-api/internal/auth"
	"github.com/gdg-garage/ski-rental-api/internal/discount"
	"github.com/gdg-garage/ski-rental-api/internal/models"
	"github.com/gdg-garage/ski-rental-api/internal/pricing"
	"github.com/gdg-garage/ski-rental-api/internal/reservation"
	"github.com/rs/zerolog/log"
)

type ReservationHandler struct {
	service *reservation.Service
	auth    *auth.AuthHandler
}

func NewReservationHandler(service *reservation.Service, authHandler *auth.AuthHandler) *ReservationHandler {
	return &ReservationHandler{service: service, auth: authHandler}
}

type CreateReservationRequest struct {
	Body reservation.Request
}

type CreateReservationResponse struct {
	Body struct {
		Success           bool                  `json:"success"`
		ReservationNumber string                `json:"reservation_number"`
		Status            string                `json:"status"`
		RentalDays        int                   `json:"rental_days"`
		Quote             pricing.Quote         `json:"quote"`
		Discount          *discount.Application `json:"discount,omitempty"`
		OriginalAmount    int64                 `json:"original_amount"`
		DiscountAmount    int64                 `json:"discount_amount"`
		TotalAmount       int64                 `json:"total_amount"`
		Notice            string                `json:"notice,omitempty" doc:"Why a supplied discount code was not applied"`
	}
}

func (h *ReservationHandler) HandleCreate(ctx context.Context, input *CreateReservationRequest) (*CreateReservationResponse, error) {
	result, err := h.service.Create(ctx, input.Body)
	if err != nil {
		return nil, reservationError(err)
	}

	resp := &CreateReservationResponse{}
	resp.Body.Success = true
	resp.Body.ReservationNumber = result.Reservation.Number
	resp.Body.Status = result.Reservation.Status
	resp.Body.RentalDays = result.Reservation.RentalDays
	resp.Body.Quote = result.Quote
	resp.Body.Discount = result.Discount
	resp.Body.OriginalAmount = result.Reservation.OriginalAmount
	resp.Body.DiscountAmount = result.Reservation.DiscountAmount
	resp.Body.TotalAmount = result.Reservation.TotalAmount
	resp.Body.Notice = result.Notice
	return resp, nil
}

type ReservationNumberInput struct {
	Number string `path:"number" maxLength:"32" doc:"Reservation number, e.g. RSV20260110001"`
}

type ReservationOutput struct {
	Body models.Reservation
}

func (h *ReservationHandler) HandleGet(ctx context.Context, input *ReservationNumberInput) (*ReservationOutput, error) {
	res, err := h.service.Get(ctx, input.Number)
	if err != nil {
		return nil, reservationError(err)
	}
	return &ReservationOutput{Body: *res}, nil
}

func (h *ReservationHandler) HandleCancel(ctx context.Context, input *ReservationNumberInput) (*ReservationOutput, error) {
	staff, err := h.auth.RequireStaff(ctx)
	if err != nil {
		return nil, err
	}

	res, err := h.service.Cancel(ctx, input.Number)
	if err != nil {
		return nil, reservationError(err)
	}
	log.Info().Str("reservation", res.Number).Str("staff", staff.Username).Msg("Reservation cancelled")
	return &ReservationOutput{Body: *res}, nil
}

// reservationError maps workflow errors onto HTTP problems.
func reservationError(err error) error {
	var verr *reservation.ValidationError
	switch {
	case errors.As(err, &verr):
		details := make([]error, 0, len(verr.Fields))
		for _, f := range verr.Fields {
			details = append(details, &huma.ErrorDetail{
				Location: "body." + f.Field,
				Message:  f.Message,
			})
		}
		return huma.Error400BadRequest("Invalid reservation", details...)
	case errors.Is(err, reservation.ErrDiscountMismatch):
		return huma.Error400BadRequest("折扣金額計算錯誤", &huma.ErrorDetail{
			Location: "body.discount_amount",
			Message:  err.Error(),
		})
	case errors.Is(err, reservation.ErrDiscountExhausted):
		return huma.NewError(http.StatusConflict, msgInvalidCode)
	case errors.Is(err, reservation.ErrEquipmentNotFound):
		return huma.Error404NotFound("雪具不存在", &huma.ErrorDetail{
			Location: "body.equipment_id",
			Message:  err.Error(),
		})
	case errors.Is(err, reservation.ErrNotFound):
		return huma.Error404NotFound("Reservation not found")
	case errors.Is(err, reservation.ErrNotCancellable):
		return huma.Error409Conflict(err.Error())
	default:
		log.Error().Err(err).Msg("Reservation request failed")
		return huma.Error500InternalServerError("Failed to process reservation")
	}
}

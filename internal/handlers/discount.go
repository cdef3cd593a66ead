package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/ski-rental-api/internal/discount"
	"github.com/gdg-garage/ski-rental-api/internal/metrics"
	"github.com/rs/zerolog/log"
)

const (
	msgEnterCode   = "請輸入折扣碼"
	msgInvalidCode = "折扣碼無效或已過期"
)

type DiscountHandler struct {
	resolver *discount.Resolver
	loc      *time.Location
	now      func() time.Time
}

func NewDiscountHandler(resolver *discount.Resolver, loc *time.Location) *DiscountHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &DiscountHandler{resolver: resolver, loc: loc, now: time.Now}
}

func (h *DiscountHandler) today() time.Time {
	return h.now().In(h.loc)
}

type DiscountValidateRequest struct {
	Body struct {
		Code string `json:"code" maxLength:"64" doc:"Discount code, case-sensitive"`
	}
}

type DiscountValidateResponse struct {
	Body struct {
		Valid         bool    `json:"valid"`
		Reason        string  `json:"reason,omitempty" doc:"Why the code does not apply"`
		Message       string  `json:"message"`
		Name          string  `json:"name,omitempty"`
		DiscountType  string  `json:"discount_type,omitempty" enum:"percentage,fixed"`
		DiscountValue float64 `json:"discount_value,omitempty"`
	}
}

// ValidMessage is the customer-facing line for an applicable code.
func ValidMessage(c discount.Code) string {
	value := strconv.FormatFloat(c.Value, 'f', -1, 64)
	if c.Kind == discount.Percentage {
		return fmt.Sprintf("折扣碼有效！享有 %s%% 折扣", value)
	}
	return fmt.Sprintf("折扣碼有效！減免 ¥%s", value)
}

func (h *DiscountHandler) HandleValidate(ctx context.Context, input *DiscountValidateRequest) (*DiscountValidateResponse, error) {
	resp := &DiscountValidateResponse{}
	code := strings.TrimSpace(input.Body.Code)
	if code == "" {
		resp.Body.Reason = discount.Reason(discount.ErrNotFound)
		resp.Body.Message = msgEnterCode
		return resp, nil
	}

	c, err := h.resolver.Validate(ctx, code, h.today())
	metrics.RecordDiscountValidation(discount.Reason(err))
	if err != nil {
		if !discount.IsInvalid(err) {
			log.Error().Err(err).Str("code", code).Msg("Discount validation failed")
			return nil, huma.Error500InternalServerError("Failed to validate discount code")
		}
		resp.Body.Reason = discount.Reason(err)
		resp.Body.Message = msgInvalidCode
		return resp, nil
	}

	resp.Body.Valid = true
	resp.Body.Message = ValidMessage(*c)
	resp.Body.Name = c.Name
	resp.Body.DiscountType = string(c.Kind)
	resp.Body.DiscountValue = c.Value
	return resp, nil
}

type DiscountCalculateRequest struct {
	Body struct {
		Code           string `json:"code" maxLength:"64"`
		OriginalAmount int64  `json:"original_amount" minimum:"0" doc:"Undiscounted total in yen"`
	}
}

type DiscountCalculateResponse struct {
	Body struct {
		OriginalAmount int64                 `json:"original_amount"`
		DiscountAmount int64                 `json:"discount_amount"`
		FinalAmount    int64                 `json:"final_amount"`
		DiscountInfo   *discount.Application `json:"discount_info,omitempty"`
	}
}

// HandleCalculate prices a discount against a base amount. A code that does
// not apply yields a zero discount rather than an error.
func (h *DiscountHandler) HandleCalculate(ctx context.Context, input *DiscountCalculateRequest) (*DiscountCalculateResponse, error) {
	base := input.Body.OriginalAmount
	resp := &DiscountCalculateResponse{}
	resp.Body.OriginalAmount = base
	resp.Body.FinalAmount = base

	code := strings.TrimSpace(input.Body.Code)
	if code == "" || base <= 0 {
		return resp, nil
	}

	app, err := h.resolver.Resolve(ctx, code, h.today(), base, nil)
	metrics.RecordDiscountValidation(discount.Reason(err))
	if err != nil {
		if !discount.IsInvalid(err) {
			log.Error().Err(err).Str("code", code).Msg("Discount calculation failed")
			return nil, huma.Error500InternalServerError("Failed to calculate discount")
		}
		return resp, nil
	}

	resp.Body.DiscountAmount = app.Discount
	resp.Body.FinalAmount = app.Final
	resp.Body.DiscountInfo = &app
	return resp, nil
}

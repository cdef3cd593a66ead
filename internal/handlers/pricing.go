package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/ski-rental-api/internal/pricing"
)

type PricingHandler struct {
	engine *pricing.Engine
}

func NewPricingHandler(engine *pricing.Engine) *PricingHandler {
	return &PricingHandler{engine: engine}
}

type QuoteRenter struct {
	Age          int    `json:"age" minimum:"0" maximum:"120" doc:"Age in years; 13 and under is priced as a child"`
	BoardType    string `json:"board_type,omitempty" doc:"Board type label"`
	EquipType    string `json:"equip_type" doc:"Equipment bundle label"`
	ClothingType string `json:"clothing_type,omitempty" doc:"Clothing rental label"`
	Helmet       string `json:"helmet,omitempty" doc:"是 to rent a helmet"`
	FastWear     string `json:"fast_wear,omitempty" doc:"是 for fast-wear bindings"`
}

type QuoteRequest struct {
	Body struct {
		StartDate   string        `json:"start_date" format:"date" doc:"First rental day"`
		EndDate     string        `json:"end_date" format:"date" doc:"Last rental day, inclusive"`
		PickupStore string        `json:"pickup_store,omitempty" doc:"Store the equipment is picked up from"`
		ReturnStore string        `json:"return_store,omitempty" doc:"Store the equipment is returned to"`
		Renters     []QuoteRenter `json:"renters" minItems:"1" maxItems:"10"`
	}
}

type QuoteResponse struct {
	Body pricing.Quote
}

func (h *PricingHandler) HandleQuote(ctx context.Context, input *QuoteRequest) (*QuoteResponse, error) {
	period, err := pricing.ParsePeriod(input.Body.StartDate, input.Body.EndDate)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid rental period", &huma.ErrorDetail{
			Location: "body.end_date",
			Message:  err.Error(),
		})
	}

	roster := make([]pricing.Renter, 0, len(input.Body.Renters))
	for _, r := range input.Body.Renters {
		roster = append(roster, pricing.Renter{
			Age:       r.Age,
			Equipment: pricing.ParseEquipment(r.BoardType, r.EquipType, r.ClothingType, r.Helmet, r.FastWear),
		})
	}
	trip := pricing.Trip{
		Pickup: pricing.Store(input.Body.PickupStore),
		Return: pricing.Store(input.Body.ReturnStore),
	}

	return &QuoteResponse{Body: h.engine.Compute(period, roster, trip)}, nil
}

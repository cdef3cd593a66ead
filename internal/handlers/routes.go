package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/gdg-garage/ski-rental-api/internal/auth"
	"github.com/gdg-garage/ski-rental-api/internal/config"
	"github.com/gdg-garage/ski-rental-api/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// DiscountPathPrefix is the rate-limited part of the public API.
const DiscountPathPrefix = "/api/discount/"

type Handlers struct {
	Auth        *auth.AuthHandler
	Pricing     *PricingHandler
	Equipment   *EquipmentHandler
	Discount    *DiscountHandler
	Reservation *ReservationHandler
	Admin       *AdminHandler
}

func RegisterRoutes(r *chi.Mux, cfg *config.Config, h Handlers, limiter *IPRateLimiter) huma.API {
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(log.Logger))
	r.Use(middleware.Recoverer)
	if cfg.EnableCORS {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   allowedOrigins(cfg),
			AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	r.Use(h.Auth.SessionMiddleware)
	if limiter != nil {
		r.Use(limiter.Middleware)
	}

	// Initialize Huma API
	humaConfig := huma.DefaultConfig("Ski Rental API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"cookieAuth": {
			Type: "apiKey",
			In:   "cookie",
			Name: auth.CookieName,
		},
	}
	api := humachi.New(r, humaConfig)

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Auth routes
	r.Get("/auth/discord/login", h.Auth.HandleLogin)
	r.Get("/auth/discord/callback", h.Auth.HandleCallback)

	huma.Register(api, huma.Operation{
		OperationID: "quote",
		Method:      http.MethodPost,
		Path:        "/api/pricing/quote",
		Summary:     "Price a rental roster",
		Tags:        []string{"Pricing"},
	}, h.Pricing.HandleQuote)

	equipmentTags := func(o *huma.Operation) {
		o.Tags = []string{"Equipment"}
	}
	huma.Get(api, "/api/equipment", h.Equipment.HandleList, equipmentTags)
	huma.Get(api, "/api/equipment/categories/list", h.Equipment.HandleCategories, equipmentTags)
	huma.Get(api, "/api/equipment/sizes/list", h.Equipment.HandleSizes, equipmentTags)
	huma.Get(api, "/api/equipment/{id}", h.Equipment.HandleGet, equipmentTags)

	huma.Register(api, huma.Operation{
		OperationID: "validate-discount",
		Method:      http.MethodPost,
		Path:        DiscountPathPrefix + "validate",
		Summary:     "Check a discount code",
		Tags:        []string{"Discounts"},
	}, h.Discount.HandleValidate)
	huma.Register(api, huma.Operation{
		OperationID: "calculate-discount",
		Method:      http.MethodPost,
		Path:        DiscountPathPrefix + "calculate",
		Summary:     "Apply a discount code to an amount",
		Tags:        []string{"Discounts"},
	}, h.Discount.HandleCalculate)

	huma.Register(api, huma.Operation{
		OperationID:   "create-reservation",
		Method:        http.MethodPost,
		Path:          "/api/reservations",
		Summary:       "Book a rental",
		Tags:          []string{"Reservations"},
		DefaultStatus: http.StatusCreated,
	}, h.Reservation.HandleCreate)
	huma.Get(api, "/api/reservations/{number}", h.Reservation.HandleGet, func(o *huma.Operation) {
		o.Tags = []string{"Reservations"}
	})

	// Staff routes
	staff := func(o *huma.Operation) {
		o.Security = []map[string][]string{{"cookieAuth": {}}}
	}
	huma.Get(api, "/me", h.Auth.HandleMe, staff)
	huma.Patch(api, "/api/reservations/{number}/cancel", h.Reservation.HandleCancel, staff)
	huma.Get(api, "/admin/discount-codes", h.Admin.HandleListCodes, staff)
	huma.Post(api, "/admin/discount-codes", h.Admin.HandleCreateCode, staff, func(o *huma.Operation) {
		o.DefaultStatus = http.StatusCreated
	})
	huma.Patch(api, "/admin/discount-codes/{code}", h.Admin.HandleUpdateCode, staff)
	huma.Get(api, "/admin/reservations", h.Admin.HandleListReservations, staff)

	return api
}

func allowedOrigins(cfg *config.Config) []string {
	origins := append([]string{}, cfg.AllowedOrigins...)
	if cfg.FrontendURL == "" {
		return origins
	}
	for _, o := range origins {
		if o == cfg.FrontendURL {
			return origins
		}
	}
	return append(origins, cfg.FrontendURL)
}

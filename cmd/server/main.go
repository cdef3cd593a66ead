package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/gdg-garage/ski-rental-api/internal/auth"
	"github.com/gdg-garage/ski-rental-api/internal/config"
	"github.com/gdg-garage/ski-rental-api/internal/database"
	"github.com/gdg-garage/ski-rental-api/internal/discount"
	"github.com/gdg-garage/ski-rental-api/internal/equipment"
	"github.com/gdg-garage/ski-rental-api/internal/handlers"
	"github.com/gdg-garage/ski-rental-api/internal/jobs"
	"github.com/gdg-garage/ski-rental-api/internal/logging"
	"github.com/gdg-garage/ski-rental-api/internal/notifier"
	"github.com/gdg-garage/ski-rental-api/internal/pricing"
	"github.com/gdg-garage/ski-rental-api/internal/reservation"
	"github.com/gdg-garage/ski-rental-api/internal/sheets"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("Failed to load .env")
	}

	// Load Configuration
	cfg := config.LoadConfig()
	logging.NewLogger(cfg.LogFormat, cfg.LogLevel)
	loc := cfg.Location()

	// Connect to Database
	db := database.Connect(cfg)

	var session *discordgo.Session
	var reservationNotifier notifier.Notifier
	if cfg.DiscordBotToken != "" {
		s, err := discordgo.New("Bot " + cfg.DiscordBotToken)
		if err != nil {
			log.Warn().Err(err).Msg("Discord session not initialized")
		} else {
			session = s
			if cfg.DiscordNotificationsChannelID != "" {
				reservationNotifier = notifier.NewDiscordNotifier(session, cfg.DiscordNotificationsChannelID)
			}
		}
	}

	sheetClient := sheets.NewClient(cfg.SheetsURL, cfg.SheetsTimeout)
	if !sheetClient.Enabled() {
		log.Warn().Msg("SHEETS_URL not set, reservations will not be forwarded")
	}
	outbox := sheets.NewOutbox(db, sheetClient, cfg.SheetsMaxAttempts)

	engine := pricing.NewEngine(pricing.DefaultTable)
	service := reservation.NewService(db, engine, outbox, reservationNotifier, loc)
	codes := discount.NewGormStore(db)

	// Initialize Handlers
	authHandler := auth.NewAuthHandler(cfg, db, session)
	h := handlers.Handlers{
		Auth:        authHandler,
		Pricing:     handlers.NewPricingHandler(engine),
		Equipment:   handlers.NewEquipmentHandler(equipment.NewStore(db)),
		Discount:    handlers.NewDiscountHandler(discount.NewResolver(codes), loc),
		Reservation: handlers.NewReservationHandler(service, authHandler),
		Admin:       handlers.NewAdminHandler(authHandler, codes, service),
	}
	limiter := handlers.NewIPRateLimiter(cfg.DiscountRateLimit, cfg.DiscountRateBurst, handlers.DiscountPathPrefix)

	// Initialize Router
	r := chi.NewRouter()
	handlers.RegisterRoutes(r, cfg, h, limiter)

	scheduler := jobs.NewScheduler(loc, cfg.SheetsTimeout*time.Duration(max(cfg.SheetsMaxAttempts, 1)))
	if sheetClient.Enabled() {
		if err := scheduler.RegisterSheetSync(cfg.SheetsSyncSchedule, outbox); err != nil {
			log.Fatal().Err(err).Str("schedule", cfg.SheetsSyncSchedule).Msg("Invalid sheet sync schedule")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		scheduler.Start()
		<-gctx.Done()
		scheduler.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		log.Info().Msg("Shutting down server")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("Server stopped with error")
	}
}

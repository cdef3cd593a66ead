// Package reservation runs the booking workflow: validate the form, price it
// server-side, resolve the discount and commit everything in one transaction.
package reservation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gdg-garage/ski-rental-api/internal/discount"
	"github.com/gdg-garage/ski-rental-api/internal/equipment"
	"github.com/gdg-garage/ski-rental-api/internal/metrics"
	"github.com/gdg-garage/ski-rental-api/internal/models"
	"github.com/gdg-garage/ski-rental-api/internal/notifier"
	"github.com/gdg-garage/ski-rental-api/internal/pricing"
	"github.com/gdg-garage/ski-rental-api/internal/sheets"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var (
	ErrNotFound          = errors.New("reservation not found")
	ErrNotCancellable    = errors.New("reservation can no longer be cancelled")
	ErrDiscountMismatch  = errors.New("discount amount does not match")
	ErrDiscountExhausted = errors.New("discount code was used up while booking")
	ErrEquipmentNotFound = errors.New("equipment not found")
)

// DiscountNotice is returned when a code was supplied but does not apply.
const DiscountNotice = "折扣碼無效或已過期"

type Service struct {
	db       *gorm.DB
	catalog  *equipment.Store
	engine   *pricing.Engine
	resolver *discount.Resolver
	outbox   *sheets.Outbox
	notifier notifier.Notifier
	loc      *time.Location
	now      func() time.Time
}

// NewService wires the workflow. outbox and notifier may be nil; loc decides
// which calendar date counts as today.
func NewService(db *gorm.DB, engine *pricing.Engine, outbox *sheets.Outbox, n notifier.Notifier, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		db:       db,
		catalog:  equipment.NewStore(db),
		engine:   engine,
		resolver: discount.NewResolver(discount.NewGormStore(db)),
		outbox:   outbox,
		notifier: n,
		loc:      loc,
		now:      time.Now,
	}
}

// Result is a committed booking.
type Result struct {
	Reservation models.Reservation
	Quote       pricing.Quote
	Discount    *discount.Application
	// Notice explains why a supplied code was not applied.
	Notice string
}

func (s *Service) today() time.Time {
	return s.now().In(s.loc)
}

// Create validates, prices and stores a booking. An inapplicable discount code
// does not fail the booking; a mismatching client discount does.
func (s *Service) Create(ctx context.Context, req Request) (*Result, error) {
	now := s.today()
	if err := req.Validate(now); err != nil {
		return nil, err
	}

	if req.EquipmentID != nil {
		if _, err := s.catalog.Get(ctx, *req.EquipmentID); err != nil {
			if errors.Is(err, equipment.ErrNotFound) {
				return nil, fmt.Errorf("%w: %v", ErrEquipmentNotFound, err)
			}
			return nil, err
		}
	}

	period, err := pricing.ParsePeriod(req.StartDate, req.EndDate)
	if err != nil {
		return nil, &ValidationError{Fields: []FieldError{{Field: "end_date", Message: err.Error()}}}
	}
	quote := s.engine.Compute(period, req.Roster(), req.Trip())
	if req.OriginalAmount != nil && *req.OriginalAmount != quote.Total {
		log.Warn().
			Int64("client", *req.OriginalAmount).
			Int64("server", quote.Total).
			Msg("Client price differs from server quote")
	}

	result := &Result{Quote: quote}
	var app *discount.Application
	if code := strings.TrimSpace(req.DiscountCode); code != "" {
		resolved, err := s.resolver.Resolve(ctx, code, now, quote.Total, req.DiscountAmount)
		metrics.RecordDiscountValidation(discount.Reason(err))
		switch {
		case err == nil:
			app = &resolved
		case errors.Is(err, discount.ErrAmountMismatch):
			return nil, fmt.Errorf("%w: %v", ErrDiscountMismatch, err)
		case discount.IsInvalid(err):
			log.Info().Err(err).Msg("Discount code not applied")
			result.Notice = DiscountNotice
		default:
			return nil, err
		}
	}

	res := buildReservation(req, period, quote, app)
	var job *models.SheetSyncJob
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := NextNumber(tx, now)
		if err != nil {
			return err
		}
		res.Number = number
		if err := tx.Create(&res).Error; err != nil {
			return fmt.Errorf("failed to create reservation: %w", err)
		}

		if app != nil {
			err := discount.NewGormStore(tx).Redeem(ctx, discount.Redemption{ReservationID: res.ID, Application: *app})
			if errors.Is(err, discount.ErrUsageLimitReached) {
				metrics.RecordDiscountRedemption("exhausted")
				return fmt.Errorf("%w: %v", ErrDiscountExhausted, err)
			}
			if err != nil {
				return err
			}
		}

		if s.outbox != nil {
			job, err = s.outbox.Enqueue(tx, &res, now)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if app != nil {
		metrics.RecordDiscountRedemption("redeemed")
	}
	metrics.RecordReservation(app != nil, res.TotalAmount)
	log.Info().
		Str("reservation", res.Number).
		Int("renters", len(res.Renters)).
		Int64("total", res.TotalAmount).
		Msg("Reservation created")

	s.afterCommit(ctx, res, job)

	result.Reservation = res
	result.Discount = app
	return result, nil
}

// afterCommit forwards the booking. Failures are logged; the outbox job stays
// pending for the scheduler.
func (s *Service) afterCommit(ctx context.Context, res models.Reservation, job *models.SheetSyncJob) {
	if job != nil {
		if err := s.outbox.Deliver(ctx, job); err != nil && !errors.Is(err, sheets.ErrDisabled) {
			log.Warn().Err(err).Str("reservation", res.Number).Msg("Sheet sync deferred")
		}
	}
	if s.notifier != nil {
		if err := s.notifier.NotifyReservation(res); err != nil {
			log.Warn().Err(err).Str("reservation", res.Number).Msg("Failed to notify reservation")
		}
	}
}

func buildReservation(req Request, period pricing.RentalPeriod, quote pricing.Quote, app *discount.Application) models.Reservation {
	res := models.Reservation{
		Status:      models.ReservationPending,
		StartDate:   period.Start,
		EndDate:     period.End,
		RentalDays:  quote.Days,
		PickupDate:  req.PickupDate,
		PickupTime:  req.PickupTime,
		PickupStore: req.PickupStore,
		ReturnStore: req.ReturnStore,
		Applicant: models.Contact{
			Name:        strings.TrimSpace(req.Applicant.Name),
			CountryCode: req.Applicant.CountryCode,
			Phone:       req.Applicant.Phone,
			Email:       strings.TrimSpace(req.Applicant.Email),
			Messenger:   req.Applicant.Messenger,
			MessengerID: req.Applicant.MessengerID,
			Hotel:       req.Applicant.Hotel,
			ShuttleMode: req.Applicant.ShuttleMode,
			Shuttle:     strings.Join(req.Applicant.Shuttle, sheets.ShuttleSeparator),
		},
		Notes:          req.Notes,
		EquipmentID:    req.EquipmentID,
		OriginalAmount: quote.Total,
		TotalAmount:    quote.Total,
		Renters:        make([]models.ReservationRenter, 0, len(req.Renters)),
	}
	if app != nil {
		res.DiscountCode = app.Code
		res.DiscountAmount = app.Discount
		res.TotalAmount = app.Final
	}

	for i, r := range req.Renters {
		eq := r.Equipment()
		b := quote.PerRenter[i]
		res.Renters = append(res.Renters, models.ReservationRenter{
			Position:       i + 1,
			Name:           strings.TrimSpace(r.Name),
			Age:            r.Age,
			Gender:         r.Gender,
			Height:         r.Height,
			Weight:         r.Weight,
			FootSize:       r.FootSize,
			Level:          r.Level,
			SkiType:        r.SkiType,
			BoardType:      r.BoardType,
			EquipType:      r.EquipType,
			ClothingType:   r.ClothingType,
			Helmet:         eq.Helmet,
			FastWear:       eq.FastWear,
			AgeGroup:       b.AgeGroup.String(),
			Item:           b.Item,
			MainCost:       b.Main,
			BootsCost:      b.Boots,
			ClothingCost:   b.Clothing,
			HelmetCost:     b.Helmet,
			FastWearCost:   b.FastWear,
			CrossStoreCost: b.CrossStore,
			Subtotal:       b.Subtotal,
		})
	}
	return res
}

// Get loads a reservation with its renters in form order.
func (s *Service) Get(ctx context.Context, number string) (*models.Reservation, error) {
	var res models.Reservation
	err := s.db.WithContext(ctx).
		Preload("Renters", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Where("number = ?", number).
		First(&res).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load reservation: %w", err)
	}
	return &res, nil
}

// Cancel marks a pending or confirmed reservation as cancelled.
func (s *Service) Cancel(ctx context.Context, number string) (*models.Reservation, error) {
	res, err := s.Get(ctx, number)
	if err != nil {
		return nil, err
	}
	if res.Status == models.ReservationCancelled || res.Status == models.ReservationCompleted {
		return nil, fmt.Errorf("%s is %s: %w", number, res.Status, ErrNotCancellable)
	}

	update := s.db.WithContext(ctx).Model(&models.Reservation{}).
		Where("id = ? AND status = ?", res.ID, res.Status).
		Update("status", models.ReservationCancelled)
	if update.Error != nil {
		return nil, fmt.Errorf("failed to cancel reservation: %w", update.Error)
	}
	if update.RowsAffected == 0 {
		return nil, fmt.Errorf("%s changed concurrently: %w", number, ErrNotCancellable)
	}
	res.Status = models.ReservationCancelled

	if s.notifier != nil {
		if err := s.notifier.NotifyReservation(*res); err != nil {
			log.Warn().Err(err).Str("reservation", number).Msg("Failed to notify cancellation")
		}
	}
	return res, nil
}

// List returns reservations newest first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]models.Reservation, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Reservation{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reservations: %w", err)
	}
	var rows []models.Reservation
	err := s.db.WithContext(ctx).
		Preload("Renters", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reservations: %w", err)
	}
	return rows, total, nil
}

package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gdg-garage/ski-rental-api/internal/metrics"
	"github.com/gdg-garage/ski-rental-api/internal/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type Sender interface {
	Enabled() bool
	Send(ctx context.Context, p Payload) error
}

// Outbox stores the spreadsheet copy of a booking in the same transaction as
// the booking and delivers it afterwards, retrying until delivered or out of
// attempts.
type Outbox struct {
	db          *gorm.DB
	sender      Sender
	maxAttempts int
	now         func() time.Time
}

func NewOutbox(db *gorm.DB, sender Sender, maxAttempts int) *Outbox {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Outbox{db: db, sender: sender, maxAttempts: maxAttempts, now: time.Now}
}

// Enqueue writes a pending job for res using tx, the booking transaction.
func (o *Outbox) Enqueue(tx *gorm.DB, res *models.Reservation, bookedOn time.Time) (*models.SheetSyncJob, error) {
	body, err := json.Marshal(BuildPayload(res, bookedOn))
	if err != nil {
		return nil, fmt.Errorf("failed to encode sheet payload: %w", err)
	}
	job := &models.SheetSyncJob{
		Key:           uuid.NewString(),
		ReservationID: res.ID,
		Payload:       string(body),
		Status:        models.SyncPending,
	}
	if err := tx.Create(job).Error; err != nil {
		return nil, fmt.Errorf("failed to queue sheet sync: %w", err)
	}
	return job, nil
}

// Deliver makes one delivery attempt for job and records the outcome. A
// disabled sender leaves the job untouched.
func (o *Outbox) Deliver(ctx context.Context, job *models.SheetSyncJob) error {
	if o.sender == nil || !o.sender.Enabled() {
		return ErrDisabled
	}
	if job.Status != models.SyncPending {
		return nil
	}

	var payload Payload
	if err := json.Unmarshal([]byte(job.Payload), &payload); err != nil {
		return o.finish(job, models.SyncFailed, fmt.Errorf("corrupt payload: %w", err))
	}

	job.Attempts++
	sendErr := o.sender.Send(ctx, payload)
	if sendErr == nil {
		metrics.RecordSheetSync("delivered")
		return o.finish(job, models.SyncDelivered, nil)
	}

	status := models.SyncPending
	if job.Attempts >= o.maxAttempts {
		status = models.SyncFailed
	}
	metrics.RecordSheetSync(status)
	log.Warn().Err(sendErr).
		Str("key", job.Key).
		Uint("reservation_id", job.ReservationID).
		Int("attempts", job.Attempts).
		Msg("Sheet sync attempt failed")
	if err := o.finish(job, status, sendErr); err != nil {
		return err
	}
	return sendErr
}

func (o *Outbox) finish(job *models.SheetSyncJob, status string, cause error) error {
	updates := map[string]any{
		"status":   status,
		"attempts": job.Attempts,
	}
	if cause != nil {
		updates["last_error"] = cause.Error()
	} else {
		now := o.now()
		job.DeliveredAt = &now
		updates["delivered_at"] = now
		updates["last_error"] = ""
	}
	job.Status = status
	if err := o.db.Model(job).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update sheet sync job: %w", err)
	}
	return cause
}

// RetryPending attempts every pending job, oldest first, and reports how many
// were delivered.
func (o *Outbox) RetryPending(ctx context.Context) (int, error) {
	if o.sender == nil || !o.sender.Enabled() {
		return 0, nil
	}
	var jobs []models.SheetSyncJob
	if err := o.db.WithContext(ctx).
		Where("status = ?", models.SyncPending).
		Order("id").
		Find(&jobs).Error; err != nil {
		return 0, fmt.Errorf("failed to load pending sheet syncs: %w", err)
	}

	delivered := 0
	for i := range jobs {
		if ctx.Err() != nil {
			return delivered, ctx.Err()
		}
		err := o.Deliver(ctx, &jobs[i])
		if err == nil {
			delivered++
			continue
		}
		if errors.Is(err, ErrDisabled) {
			break
		}
	}
	return delivered, nil
}

func (o *Outbox) Pending(ctx context.Context) (int64, error) {
	var count int64
	err := o.db.WithContext(ctx).Model(&models.SheetSyncJob{}).
		Where("status = ?", models.SyncPending).
		Count(&count).Error
	return count, err
}

package discount

import (
	"context"
	"fmt"
	"time"

	"github.com/gdg-garage/ski-rental-api/internal/pricing"
)

// Redemption records one use of a code by a reservation.
type Redemption struct {
	ReservationID uint
	Application   Application
}

// Store is the record store behind the resolver. Redeem must append the
// application and increment the usage counter as one unit, succeed at most
// once per reservation, and fail with ErrUsageLimitReached instead of going
// past the cap.
type Store interface {
	FindByCode(ctx context.Context, code string) (*Code, error)
	Redeem(ctx context.Context, r Redemption) error
}

type Resolver struct {
	store     Store
	tolerance pricing.Money
}

func NewResolver(store Store) *Resolver {
	return &Resolver{store: store, tolerance: DefaultTolerance}
}

func (r *Resolver) Tolerance() pricing.Money {
	return r.tolerance
}

// Validate looks the code up by exact match and checks it as of asOf.
func (r *Resolver) Validate(ctx context.Context, code string, asOf time.Time) (*Code, error) {
	if code == "" {
		return nil, ErrNotFound
	}
	c, err := r.store.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := c.Check(asOf); err != nil {
		return nil, fmt.Errorf("%s: %w", code, err)
	}
	return c, nil
}

// Resolve validates a code and, when a claimed amount is given, cross-checks
// it against the recomputed discount for base.
func (r *Resolver) Resolve(ctx context.Context, code string, asOf time.Time, base pricing.Money, claimed *pricing.Money) (Application, error) {
	c, err := r.Validate(ctx, code, asOf)
	if err != nil {
		return Application{}, err
	}
	app := Apply(*c, base)
	if claimed != nil {
		if err := CrossCheck(app, *claimed, r.tolerance); err != nil {
			return app, fmt.Errorf("%s: client %d, server %d: %w", code, *claimed, app.Discount, err)
		}
	}
	return app, nil
}

func (r *Resolver) Redeem(ctx context.Context, reservationID uint, app Application) error {
	return r.store.Redeem(ctx, Redemption{ReservationID: reservationID, Application: app})
}

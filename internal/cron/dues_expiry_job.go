package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/riverbend-alliance/portal-backend/pkg/logger"
)

// Checkout sessions expire on the gateway side after 24 hours; leave
// comfortable slack before sweeping so a late callback still wins.
const defaultPendingMaxAge = 48 * time.Hour

type duesSweepRepo interface {
	ExpireStalePending(ctx context.Context, cutoff time.Time) (int64, error)
}

// DuesExpiryJobParams configure the stale-pending dues sweep.
type DuesExpiryJobParams struct {
	Logger     *logger.Logger
	Repository duesSweepRepo
	MaxAge     time.Duration
}

// NewDuesExpiryJob expires pending dues records whose checkout session
// died without a gateway callback ever reaching us.
func NewDuesExpiryJob(params DuesExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("dues record repository required")
	}
	maxAge := params.MaxAge
	if maxAge <= 0 {
		maxAge = defaultPendingMaxAge
	}
	return &duesExpiryJob{
		logg:   params.Logger,
		repo:   params.Repository,
		maxAge: maxAge,
		now:    time.Now,
	}, nil
}

type duesExpiryJob struct {
	logg   *logger.Logger
	repo   duesSweepRepo
	maxAge time.Duration
	now    func() time.Time
}

func (j *duesExpiryJob) Name() string { return "dues-pending-expiry" }

func (j *duesExpiryJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.maxAge)
	expired, err := j.repo.ExpireStalePending(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("dues pending expiry: %w", err)
	}
	j.logg.Info(j.logg.WithField(ctx, "expired", expired), "dues pending sweep complete")
	return nil
}

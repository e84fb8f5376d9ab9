package maintenance

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	iauth "github.com/foodlinkhq/foodlink/internal/auth"
	"github.com/foodlinkhq/foodlink/internal/models"
	"github.com/foodlinkhq/foodlink/internal/repository"
	"github.com/foodlinkhq/foodlink/pkg/logger"
	"github.com/foodlinkhq/foodlink/pkg/metrics"
)

const (
	defaultSessionSpec = "@hourly"
	defaultExpirySpec  = "@every 15m"
	expiryScanLimit    = 1000
)

// Cleaner coordinates background maintenance: purging expired sessions and reporting
// available listings whose food has expired.
type Cleaner struct {
	sessions *iauth.SessionService
	repo     repository.Repository
	cron     *cron.Cron
	now      func() time.Time
	log      *zap.Logger

	sessionSchedule string
	expirySchedule  string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithNow overrides the clock used for expiry comparisons.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithSessionSchedule overrides the cron specification for session cleanup.
func WithSessionSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.sessionSchedule = spec
		}
	}
}

// WithExpirySchedule overrides the cron specification for the expired listing report.
func WithExpirySchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.expirySchedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner. A nil dependency skips the jobs that need it.
func NewCleaner(sessions *iauth.SessionService, repo repository.Repository, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		sessions:        sessions,
		repo:            repo,
		now:             time.Now,
		sessionSchedule: defaultSessionSpec,
		expirySchedule:  defaultExpirySpec,
		log:             logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}
	return cleaner
}

// Start registers jobs with the cron scheduler and launches it.
func (c *Cleaner) Start() error {
	if c.sessions == nil && c.repo == nil {
		return nil
	}

	if c.sessions != nil {
		if _, err := c.cron.AddFunc(c.sessionSchedule, func() {
			removed, err := c.sessions.CleanupExpired(context.Background())
			if err != nil {
				c.log.Warn("session cleanup failed", zap.Error(err))
				return
			}
			if removed > 0 {
				c.log.Info("sessions purged", zap.Int64("removed", removed))
			}
		}); err != nil {
			return err
		}
	}

	if c.repo != nil {
		if _, err := c.cron.AddFunc(c.expirySchedule, func() {
			if _, err := ReportExpiredListings(context.Background(), c.repo, c.now()); err != nil {
				c.log.Warn("expired listing report failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes every configured job sequentially.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error

	if c.sessions != nil {
		if _, err := c.sessions.CleanupExpired(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if c.repo != nil {
		if _, err := ReportExpiredListings(ctx, c.repo, c.now()); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	return errs
}

// ReportExpiredListings counts available donations past their expiry date and publishes
// the figure as a gauge. Listings are not withdrawn automatically.
func ReportExpiredListings(ctx context.Context, repo repository.Repository, now time.Time) (int, error) {
	if repo == nil {
		return 0, errors.New("report expired listings: repository is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	donations, err := repo.ListDonations(ctx, repository.DonationFilter{
		Status: models.DonationAvailable,
		Limit:  expiryScanLimit,
	})
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range donations {
		if donations[i].IsExpired(now) {
			expired++
		}
	}
	metrics.ExpiredListings.Set(float64(expired))
	return expired, nil
}

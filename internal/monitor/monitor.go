// Package monitor runs the daily seat-availability check over the destination
// catalog and raises an alert when enough seats open up.
package monitor

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/farewatch/farewatch/internal/catalog"
	"github.com/farewatch/farewatch/internal/flights"
	jobmetrics "github.com/farewatch/farewatch/internal/jobs"
	"github.com/farewatch/farewatch/internal/mailer"
	"github.com/farewatch/farewatch/internal/shared"
)

// TaskAvailabilityCheck is the asynq task type for the daily run.
const TaskAvailabilityCheck = "flights:availability_check"

// Searcher is the slice of the flight service the monitor needs.
type Searcher interface {
	SearchOneWay(ctx context.Context, q flights.OneWayQuery) (*flights.SearchResult, error)
}

// Notifier delivers the alert for a finished run.
type Notifier interface {
	Send(ctx context.Context, alert mailer.Alert) error
}

// Config sets the fixed search parameters for every run.
type Config struct {
	Origin      string
	AirlineCode string
	MinSeats    int
}

// Job checks tomorrow's seat availability for every catalog destination whose
// best months cover tomorrow.
type Job struct {
	searcher Searcher
	catalog  *catalog.Catalog
	notifier Notifier
	cfg      Config
	logger   *slog.Logger
	metrics  *jobmetrics.Metrics
	clock    func() time.Time
	running  atomic.Bool
}

// NewJob wires the availability check.
func NewJob(searcher Searcher, cat *catalog.Catalog, notifier Notifier, cfg Config, logger *slog.Logger, metrics *jobmetrics.Metrics) *Job {
	if logger == nil {
		logger = slog.Default()
	}
	return &Job{
		searcher: searcher,
		catalog:  cat,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle adapts the run to an asynq handler. The task carries no payload.
func (j *Job) Handle(ctx context.Context, _ *asynq.Task) error {
	if j == nil {
		return errors.New("availability check: handler not configured")
	}
	return j.Run(ctx)
}

// Run executes one availability check. Overlapping triggers are skipped, and
// per-destination failures are logged without aborting the rest of the run.
func (j *Job) Run(ctx context.Context) error {
	if !j.running.CompareAndSwap(false, true) {
		j.logger.Warn("availability check already running, skipping trigger",
			slog.String("job", TaskAvailabilityCheck))
		return nil
	}
	defer j.running.Store(false)

	runID := uuid.NewString()
	logger := j.logger.With(
		slog.String("job", TaskAvailabilityCheck),
		slog.String("run_id", runID),
	)

	tracker := j.metrics.Track(TaskAvailabilityCheck)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	tomorrow := j.clock().Add(24 * time.Hour)
	date := tomorrow.Format("2006-01-02")
	candidates := j.catalog.MatchingMonth(tomorrow.Month())
	logger.Info("starting availability check",
		slog.String("date", date),
		slog.String("month", tomorrow.Month().String()),
		slog.Int("candidates", len(candidates)))
	if len(candidates) == 0 {
		logger.Info("no destinations in season, nothing to check")
		return nil
	}

	var qualifying []catalog.Destination
	failures := 0
	for _, dest := range candidates {
		seats, err := j.checkDestination(ctx, dest, date)
		if err != nil {
			failures++
			logger.Error("destination check failed",
				slog.String("destination", dest.AirportCode),
				slog.Any("error", err))
			continue
		}
		if seats >= j.cfg.MinSeats {
			qualifying = append(qualifying, dest)
			j.metrics.AddQualifyingDestination(dest.AirportCode)
			logger.Info("destination qualifies",
				slog.String("destination", dest.AirportCode),
				slog.Int("seats", seats))
		} else {
			logger.Debug("destination below threshold",
				slog.String("destination", dest.AirportCode),
				slog.Int("seats", seats))
		}
	}

	logger.Info("completed availability check",
		slog.Int("qualifying", len(qualifying)),
		slog.Int("failures", failures))

	if len(qualifying) == 0 {
		return nil
	}
	alert := mailer.Alert{
		RunID:        runID,
		Origin:       j.cfg.Origin,
		Date:         tomorrow,
		Destinations: qualifying,
	}
	if err := j.notifier.Send(ctx, alert); err != nil {
		logger.Error("alert delivery failed", slog.Any("error", err))
	}
	return nil
}

// checkDestination returns the best seat count found for tomorrow, or zero
// when the provider has no flights on the route.
func (j *Job) checkDestination(ctx context.Context, dest catalog.Destination, date string) (int, error) {
	result, err := j.searcher.SearchOneWay(ctx, flights.OneWayQuery{
		Origin:        j.cfg.Origin,
		Destination:   dest.AirportCode,
		DepartureDate: date,
		AirlineCode:   j.cfg.AirlineCode,
	})
	if err != nil {
		var provErr *shared.ProviderError
		if errors.As(err, &provErr) && (provErr.StatusCode == 400 || provErr.StatusCode == 404) {
			// The provider answers 400/404 when a route simply has no
			// flights. That is no availability, not a broken run.
			return 0, nil
		}
		return 0, err
	}
	if result.SearchType != flights.SearchTypeOffers {
		return 0, nil
	}
	best := 0
	for _, offer := range result.Offers {
		if offer.Seats > best {
			best = offer.Seats
		}
	}
	return best, nil
}

package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Schedule decides whether a job is due at now given its last submission.
// last is the zero time before the first run.
type Schedule interface {
	Due(last, now time.Time) bool
}

// Every is due once per interval, and immediately on the first check
type Every time.Duration

// Due implements Schedule
func (e Every) Due(last, now time.Time) bool {
	return last.IsZero() || now.Sub(last) >= time.Duration(e)
}

// CronSchedule is due once in every minute matching its fields. A field of
// -1 matches any value.
type CronSchedule struct {
	Minute     int
	Hour       int
	DayOfMonth int
}

// ParseCronSchedule parses "minute hour day-of-month month day-of-week".
// Month and day-of-week must be "*".
func ParseCronSchedule(expr string) (CronSchedule, error) {
	parts := strings.Fields(expr)
	if len(parts) != 5 {
		return CronSchedule{}, fmt.Errorf("%w: %q needs 5 fields", ErrInvalidSchedule, expr)
	}
	if parts[3] != "*" || parts[4] != "*" {
		return CronSchedule{}, fmt.Errorf("%w: %q month and weekday must be *", ErrInvalidSchedule, expr)
	}

	minute, err := parseField(parts[0], 0, 59)
	if err != nil {
		return CronSchedule{}, fmt.Errorf("%w: minute: %v", ErrInvalidSchedule, err)
	}
	hour, err := parseField(parts[1], 0, 23)
	if err != nil {
		return CronSchedule{}, fmt.Errorf("%w: hour: %v", ErrInvalidSchedule, err)
	}
	dom, err := parseField(parts[2], 1, 31)
	if err != nil {
		return CronSchedule{}, fmt.Errorf("%w: day of month: %v", ErrInvalidSchedule, err)
	}
	return CronSchedule{Minute: minute, Hour: hour, DayOfMonth: dom}, nil
}

func parseField(s string, lo, hi int) (int, error) {
	if s == "*" {
		return -1, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if v < lo || v > hi {
		return 0, fmt.Errorf("%d out of range %d-%d", v, lo, hi)
	}
	return v, nil
}

// Matches reports whether t falls in a matching minute
func (c CronSchedule) Matches(t time.Time) bool {
	return (c.Minute < 0 || t.Minute() == c.Minute) &&
		(c.Hour < 0 || t.Hour() == c.Hour) &&
		(c.DayOfMonth < 0 || t.Day() == c.DayOfMonth)
}

// Due implements Schedule
func (c CronSchedule) Due(last, now time.Time) bool {
	if !c.Matches(now) {
		return false
	}
	return last.IsZero() || !last.Truncate(time.Minute).Equal(now.Truncate(time.Minute))
}

// CronTrigger submits registered jobs to a Scheduler when their schedules
// come due. Times are evaluated in the configured location.
type CronTrigger struct {
	scheduler     *Scheduler
	location      *time.Location
	checkInterval time.Duration
	logger        *zap.Logger
	now           func() time.Time

	mu        sync.Mutex
	entries   map[JobName]*triggerEntry
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	isRunning bool
}

type triggerEntry struct {
	schedule Schedule
	last     time.Time
}

// NewCronTrigger creates a trigger checking schedules every checkInterval
func NewCronTrigger(scheduler *Scheduler, location *time.Location, checkInterval time.Duration, logger *zap.Logger) *CronTrigger {
	if location == nil {
		location = time.UTC
	}
	if checkInterval <= 0 {
		checkInterval = 30 * time.Second
	}
	return &CronTrigger{
		scheduler:     scheduler,
		location:      location,
		checkInterval: checkInterval,
		logger:        logger,
		now:           time.Now,
		entries:       make(map[JobName]*triggerEntry),
	}
}

// Add schedules a job. Adding the same name again replaces its schedule.
func (c *CronTrigger) Add(name JobName, schedule Schedule) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[name] = &triggerEntry{schedule: schedule}
}

// Start starts the check loop
func (c *CronTrigger) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = true
	c.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.wg.Add(1)
	go c.runLoop(ctx)

	c.logger.Info("Cron trigger started",
		zap.Duration("check_interval", c.checkInterval),
		zap.String("location", c.location.String()),
	)
	return nil
}

// Stop stops the check loop
func (c *CronTrigger) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = false
	c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("Cron trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *CronTrigger) runLoop(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.checkInterval)
	defer ticker.Stop()

	c.checkAndTrigger()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.checkAndTrigger()
		}
	}
}

// checkAndTrigger submits every due job. A job still in flight stays due and
// is retried on the next check.
func (c *CronTrigger) checkAndTrigger() {
	now := c.now().In(c.location)

	c.mu.Lock()
	defer c.mu.Unlock()

	for name, entry := range c.entries {
		if !entry.schedule.Due(entry.last, now) {
			continue
		}
		_, err := c.scheduler.Submit(name)
		switch {
		case err == nil:
			entry.last = now
		case errors.Is(err, ErrJobInFlight):
			c.logger.Debug("Skipping job still in flight", zap.String("job", string(name)))
		default:
			c.logger.Error("Failed to submit scheduled job", zap.String("job", string(name)), zap.Error(err))
		}
	}
}

// TriggerNow submits a job immediately, outside its schedule
func (c *CronTrigger) TriggerNow(name JobName) (*Job, error) {
	return c.scheduler.Submit(name)
}

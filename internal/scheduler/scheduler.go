// Package scheduler periodically decides whether night policy is active from
// the sunrise/sunset pair in the preference store and broadcasts each decision
// to subscribers.
package scheduler

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/julianstephens/nightshift/internal/constants"
	"github.com/julianstephens/nightshift/internal/logger"
	"github.com/julianstephens/nightshift/internal/window"
)

// Decision is the outcome of one evaluation
type Decision int

const (
	Unknown Decision = iota
	Day
	Night
)

func (d Decision) String() string {
	switch d {
	case Day:
		return "day"
	case Night:
		return "night"
	default:
		return "unknown"
	}
}

// Event is delivered to subscribers after every successful evaluation
type Event struct {
	Decision Decision
	At       time.Time
}

// Listener receives events synchronously on the evaluating goroutine. It must
// not call Enable, Disable or SyncWithStore.
type Listener func(Event)

// Observer is told about every evaluation and every skipped tick
type Observer interface {
	Evaluated(Decision)
	Skipped(reason string)
}

// Store is the slice of the preference store the scheduler reads
type Store interface {
	GetBool(key string, def bool) bool
	GetInt(key string, def int64) int64
}

// Skip reasons reported to the Observer
const (
	SkipMissingTimestamps = "missing_timestamps"
	SkipOverlap           = "overlap"
)

const missingTimestamp = math.MinInt64

// Decide evaluates the night window for now without touching any scheduler
// state. ok is false when either timestamp is missing from the store.
func Decide(store Store, now time.Time, loc *time.Location) (d Decision, ok bool) {
	sunrise := store.GetInt(constants.PrefSunrise, missingTimestamp)
	sunset := store.GetInt(constants.PrefSunset, missingTimestamp)
	if sunrise == missingTimestamp || sunset == missingTimestamp {
		return Unknown, false
	}

	night := window.FromTimes(
		time.Unix(sunset, 0).In(loc),
		time.Unix(sunrise, 0).In(loc),
	)
	if night.Contains(window.SecondsOfDay(now.In(loc))) {
		return Night, true
	}
	return Day, true
}

type subscription struct {
	id uuid.UUID
	fn Listener
}

// Scheduler owns the periodic job and the last decision. It never keeps the
// raw timestamps beyond one evaluation.
type Scheduler struct {
	store    Store
	clock    clockwork.Clock
	loc      *time.Location
	period   time.Duration
	observer Observer
	cron     gocron.Scheduler

	// ctlMu serializes Enable/Disable
	ctlMu sync.Mutex
	// evalMu is held for the duration of one evaluation and its dispatch
	evalMu sync.Mutex

	mu      sync.Mutex
	running bool
	jobID   uuid.UUID
	last    Decision

	subMu sync.RWMutex
	subs  []subscription
}

type Option func(*Scheduler)

// WithClock replaces the wall clock, for both timers and "now"
func WithClock(c clockwork.Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

// WithLocation sets the location used to take time-of-day
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) { s.loc = loc }
}

// WithPeriod overrides the tick period
func WithPeriod(d time.Duration) Option {
	return func(s *Scheduler) { s.period = d }
}

func WithObserver(o Observer) Option {
	return func(s *Scheduler) { s.observer = o }
}

// New builds a stopped scheduler over store. Close releases it.
func New(store Store, opts ...Option) (*Scheduler, error) {
	s := &Scheduler{
		store:  store,
		clock:  clockwork.NewRealClock(),
		loc:    time.Local,
		period: constants.SchedulerPeriod,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.period <= 0 {
		return nil, fmt.Errorf("scheduler period must be positive, got %v", s.period)
	}

	cron, err := gocron.NewScheduler(gocron.WithClock(s.clock), gocron.WithLocation(s.loc))
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	s.cron = cron
	s.cron.Start()

	return s, nil
}

// Enable starts periodic evaluation. The first evaluation happens before
// Enable returns. Enabling a running scheduler does nothing.
func (s *Scheduler) Enable() error {
	s.ctlMu.Lock()
	defer s.ctlMu.Unlock()

	if s.Running() {
		return nil
	}
	s.setRunning(true)

	s.evalMu.Lock()
	s.evaluate()
	s.evalMu.Unlock()

	job, err := s.cron.NewJob(
		gocron.DurationJob(s.period),
		gocron.NewTask(s.tick),
		gocron.WithName("automatic-theme"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		s.setRunning(false)
		return fmt.Errorf("failed to schedule evaluation job: %w", err)
	}

	s.mu.Lock()
	s.jobID = job.ID()
	s.mu.Unlock()

	logger.Info("Automatic theme scheduler enabled", "period", s.period)
	return nil
}

// Disable stops periodic evaluation and keeps the last decision. An
// evaluation already in progress completes; none start after Disable returns.
func (s *Scheduler) Disable() error {
	s.ctlMu.Lock()
	defer s.ctlMu.Unlock()

	if !s.Running() {
		return nil
	}

	s.mu.Lock()
	s.running = false
	jobID := s.jobID
	s.jobID = uuid.Nil
	s.mu.Unlock()

	if jobID != uuid.Nil {
		if err := s.cron.RemoveJob(jobID); err != nil {
			return fmt.Errorf("failed to remove evaluation job: %w", err)
		}
	}

	logger.Info("Automatic theme scheduler disabled", "last_decision", s.Decision())
	return nil
}

// SyncWithStore enables or disables the scheduler to match the stored
// automaticTheme flag
func (s *Scheduler) SyncWithStore() error {
	if s.store.GetBool(constants.PrefAutomaticTheme, constants.DefaultAutomaticTheme) {
		return s.Enable()
	}
	return s.Disable()
}

// Close disables the scheduler and shuts down its timers
func (s *Scheduler) Close() error {
	if err := s.Disable(); err != nil {
		return err
	}
	return s.cron.Shutdown()
}

func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) setRunning(v bool) {
	s.mu.Lock()
	s.running = v
	s.mu.Unlock()
}

// Decision returns the most recent decision, Unknown before the first one
func (s *Scheduler) Decision() Decision {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Period is the tick interval
func (s *Scheduler) Period() time.Duration {
	return s.period
}

// tick runs on the gocron goroutine. A tick that finds another evaluation in
// progress is dropped.
func (s *Scheduler) tick() {
	if !s.Running() {
		return
	}
	if !s.evalMu.TryLock() {
		logger.Debug("Dropping overlapping evaluation")
		if s.observer != nil {
			s.observer.Skipped(SkipOverlap)
		}
		return
	}
	defer s.evalMu.Unlock()

	s.evaluate()
}

// evaluate must be called with evalMu held
func (s *Scheduler) evaluate() {
	now := s.clock.Now()
	d, ok := Decide(s.store, now, s.loc)
	if !ok {
		logger.Debug("Sunrise/sunset not set, skipping evaluation")
		if s.observer != nil {
			s.observer.Skipped(SkipMissingTimestamps)
		}
		return
	}

	s.mu.Lock()
	prev := s.last
	s.last = d
	s.mu.Unlock()

	if prev != d {
		logger.Info("Decision changed", "from", prev, "to", d)
	} else {
		logger.Debug("Decision unchanged", "decision", d)
	}
	if s.observer != nil {
		s.observer.Evaluated(d)
	}

	s.dispatch(Event{Decision: d, At: now})
}

func (s *Scheduler) dispatch(ev Event) {
	s.subMu.RLock()
	subs := make([]subscription, len(s.subs))
	copy(subs, s.subs)
	s.subMu.RUnlock()

	for _, sub := range subs {
		sub.fn(ev)
	}
}

// Subscribe registers fn and returns a handle for Unsubscribe. Listeners are
// called in subscription order.
func (s *Scheduler) Subscribe(fn Listener) uuid.UUID {
	id := uuid.New()
	s.subMu.Lock()
	s.subs = append(s.subs, subscription{id: id, fn: fn})
	s.subMu.Unlock()
	return id
}

// Unsubscribe removes a listener. Unknown handles are ignored.
func (s *Scheduler) Unsubscribe(id uuid.UUID) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for i, sub := range s.subs {
		if sub.id == id {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return
		}
	}
}

// Events subscribes a buffered channel. Events are dropped when the buffer is
// full. The channel is never closed; call cancel to stop delivery.
func (s *Scheduler) Events(buffer int) (events <-chan Event, cancel func()) {
	ch := make(chan Event, buffer)
	id := s.Subscribe(func(ev Event) {
		select {
		case ch <- ev:
		default:
			logger.Debug("Event channel full, dropping event", "decision", ev.Decision)
		}
	})
	return ch, func() { s.Unsubscribe(id) }
}

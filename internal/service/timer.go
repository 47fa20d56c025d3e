package service

import (
	"context"
	"sync"
	"time"

	"freelance-crm/internal/billing"
	"freelance-crm/internal/models"

	"go.uber.org/zap"
)

// PreemptPolicy decides what a running timer keeps when another one starts.
type PreemptPolicy string

const (
	// PreemptRecord stores the hours the preempted timer ran for.
	PreemptRecord PreemptPolicy = "record"
	// PreemptDiscard stops the preempted timer with zero hours.
	PreemptDiscard PreemptPolicy = "discard"
)

// TimeTracker runs at most one timer per user. Start and Stop of one user are
// serialised in process; the store enforces the same rule across processes.
type TimeTracker struct {
	store  Store
	policy PreemptPolicy
	now    func() time.Time
	log    *zap.Logger
	locks  sync.Map // user id -> *sync.Mutex
}

// TimerOption configures a TimeTracker.
type TimerOption func(*TimeTracker)

// WithPreemptPolicy sets what happens to a running timer when another one starts.
func WithPreemptPolicy(p PreemptPolicy) TimerOption {
	return func(t *TimeTracker) { t.policy = p }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) TimerOption {
	return func(t *TimeTracker) { t.now = now }
}

// WithTimerLogger sets the logger used for timer events.
func WithTimerLogger(log *zap.Logger) TimerOption {
	return func(t *TimeTracker) { t.log = log }
}

// NewTimeTracker returns a tracker that records preempted timers by default.
func NewTimeTracker(store Store, opts ...TimerOption) *TimeTracker {
	t := &TimeTracker{
		store:  store,
		policy: PreemptRecord,
		now:    time.Now,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *TimeTracker) lock(userID int64) func() {
	v, _ := t.locks.LoadOrStore(userID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Start stops the user's running timer, if any, and starts a new one.
func (t *TimeTracker) Start(ctx context.Context, userID int64, in models.TimerStart) (*models.TimeEntry, error) {
	if err := models.Validate(in); err != nil {
		return nil, err
	}

	unlock := t.lock(userID)
	defer unlock()

	at := t.now()
	started, stopped, err := t.store.StartTimer(ctx, userID, in, at, func(running *models.TimeEntry) float64 {
		if t.policy == PreemptDiscard || running.StartTime == nil {
			return 0
		}
		return billing.ElapsedHours(*running.StartTime, at)
	})
	if err != nil {
		return nil, err
	}

	if stopped != nil {
		t.log.Info("preempted running timer",
			zap.Int64("user_id", userID),
			zap.Int64("entry_id", stopped.ID),
			zap.Float64("hours", stopped.Hours),
			zap.String("policy", string(t.policy)),
		)
	}
	return started, nil
}

// Stop stops the running timer id and records the elapsed hours.
func (t *TimeTracker) Stop(ctx context.Context, userID, id int64) (*models.TimeEntry, error) {
	unlock := t.lock(userID)
	defer unlock()

	at := t.now()
	return t.store.StopTimer(ctx, userID, id, at, func(start time.Time) float64 {
		return billing.ElapsedHours(start, at)
	})
}

// Running returns the user's running timer, or nil.
func (t *TimeTracker) Running(ctx context.Context, userID int64) (*models.TimeEntry, error) {
	return t.store.GetRunningTimer(ctx, userID)
}

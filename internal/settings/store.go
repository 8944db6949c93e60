// Package settings persists the notification toggles of one identity or device.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/fieldops/internal/domain"
)

// StorageKey is the key the notification record is stored under.
const StorageKey = "notificationSettings"

const (
	defaultQueueSize    = 16
	defaultWriteTimeout = 5 * time.Second
)

var (
	// ErrUnknownFlag is returned by Set for names outside the notification record.
	ErrUnknownFlag = errors.New("settings: unknown flag")
	// ErrClosed is returned when writing to a closed store.
	ErrClosed = errors.New("settings: store closed")
)

// Storage is asynchronous key-value string storage.
type Storage interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
}

type writeRequest struct {
	snapshot *domain.NotificationSettings
	done     chan struct{}
}

// Store holds the notification settings in memory and persists every change
// through a single writer goroutine. Writes are applied in call order; a
// backlog of writes collapses to the newest snapshot.
type Store struct {
	storage      Storage
	logger       *zap.Logger
	writeTimeout time.Duration

	mu      sync.RWMutex
	current domain.NotificationSettings
	closed  bool

	queue     chan writeRequest
	stopped   chan struct{}
	closeOnce sync.Once
}

// Option customizes a Store.
type Option func(*Store)

// WithWriteTimeout bounds each persist call.
func WithWriteTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.writeTimeout = d
		}
	}
}

// NewStore starts a store over storage, initialized with the defaults.
func NewStore(storage Storage, logger *zap.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		storage:      storage,
		logger:       logger,
		writeTimeout: defaultWriteTimeout,
		current:      domain.DefaultNotificationSettings(),
		queue:        make(chan writeRequest, defaultQueueSize),
		stopped:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.run()
	return s
}

// Load rehydrates the settings from storage. Queued writes are flushed first.
// Missing records, read failures and corrupt JSON all yield the defaults.
func (s *Store) Load(ctx context.Context) domain.NotificationSettings {
	loaded, err := s.Reload(ctx)
	if err != nil {
		s.logger.Warn("settings read failed", zap.Error(err))
		loaded = domain.DefaultNotificationSettings()
		s.mu.Lock()
		s.current = loaded
		s.mu.Unlock()
	}
	return loaded
}

// Reload is Load that reports a failed storage read. On failure the in-memory
// settings are left unchanged and returned. A missing or corrupt record is not
// a failure.
func (s *Store) Reload(ctx context.Context) (domain.NotificationSettings, error) {
	if err := s.Flush(ctx); err != nil {
		s.logger.Warn("settings flush before load failed", zap.Error(err))
	}

	raw, found, err := s.storage.Get(ctx, StorageKey)
	if err != nil {
		return s.Snapshot(), fmt.Errorf("read settings: %w", err)
	}
	loaded := domain.DefaultNotificationSettings()
	if found {
		parsed := domain.DefaultNotificationSettings()
		if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
			s.logger.Warn("settings record corrupt; using defaults", zap.Error(err))
		} else {
			loaded = parsed
		}
	}

	s.mu.Lock()
	s.current = loaded
	s.mu.Unlock()
	return loaded, nil
}

// Snapshot returns a copy of the in-memory settings.
func (s *Store) Snapshot() domain.NotificationSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Set updates one flag in memory and queues the full record for persistence.
func (s *Store) Set(ctx context.Context, flag string, value bool) error {
	return s.update(ctx, func(current *domain.NotificationSettings) error {
		return applyFlag(current, flag, value)
	})
}

// Replace overwrites the whole record and queues it for persistence.
func (s *Store) Replace(ctx context.Context, next domain.NotificationSettings) error {
	return s.update(ctx, func(current *domain.NotificationSettings) error {
		*current = next
		return nil
	})
}

func (s *Store) update(ctx context.Context, mutate func(*domain.NotificationSettings) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	next := s.current
	if err := mutate(&next); err != nil {
		return err
	}
	s.current = next

	select {
	case s.queue <- writeRequest{snapshot: &next}:
		return nil
	case <-ctx.Done():
		s.logger.Warn("settings persist not queued", zap.Error(ctx.Err()))
		return nil
	}
}

// Flush waits until every write queued before the call has been attempted.
func (s *Store) Flush(ctx context.Context) error {
	done := make(chan struct{})

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	select {
	case s.queue <- writeRequest{done: done}:
	case <-ctx.Done():
		s.mu.Unlock()
		return ctx.Err()
	}
	s.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close drains the queue and stops the writer.
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.queue)
		s.mu.Unlock()
	})
	<-s.stopped
}

func (s *Store) run() {
	defer close(s.stopped)

	for req := range s.queue {
		latest := req.snapshot
		var barriers []chan struct{}
		if req.done != nil {
			barriers = append(barriers, req.done)
		}

	drain:
		for {
			select {
			case next, ok := <-s.queue:
				if !ok {
					break drain
				}
				if next.snapshot != nil {
					latest = next.snapshot
				}
				if next.done != nil {
					barriers = append(barriers, next.done)
				}
			default:
				break drain
			}
		}

		if latest != nil {
			s.persist(*latest)
		}
		for _, done := range barriers {
			close(done)
		}
	}
}

func (s *Store) persist(snapshot domain.NotificationSettings) {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		s.logger.Error("settings encode failed", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.writeTimeout)
	defer cancel()
	if err := s.storage.Set(ctx, StorageKey, string(payload)); err != nil {
		s.logger.Warn("settings write failed", zap.Error(err))
	}
}

func applyFlag(target *domain.NotificationSettings, flag string, value bool) error {
	switch flag {
	case domain.FlagPushNotifications:
		target.PushNotifications = value
	case domain.FlagEmailAlerts:
		target.EmailAlerts = value
	case domain.FlagSMSAlerts:
		target.SMSAlerts = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFlag, flag)
	}
	return nil
}

// Flags lists the flag names accepted by Set.
func Flags() []string {
	return []string{domain.FlagPushNotifications, domain.FlagEmailAlerts, domain.FlagSMSAlerts}
}

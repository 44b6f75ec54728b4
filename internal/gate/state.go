package gate

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/zulandar/textline/internal/models"
	"gorm.io/gorm"
)

// State is the operator-controlled admission configuration, read on every
// inbound message.
type State struct {
	KillSwitch        bool
	PausedUntil       time.Time // zero when not paused
	FallbackMode      bool
	ModerationEnabled bool
	RatePerMinute     int
}

// StateReader is the read side of the admission state, the only view the
// pipeline needs. Operator mutations happen elsewhere and take effect on the
// next request.
type StateReader interface {
	Snapshot() State
	IsBlocked(rawNumber string) bool
}

// Store holds the authoritative in-memory admission state and persists
// operator mutations through GORM so they survive restarts.
type Store struct {
	db *gorm.DB

	mu      sync.RWMutex
	state   State
	blocked map[string]struct{}
}

// NewStore loads persisted state (creating a row from defaults on first run)
// and the blocked-number set.
func NewStore(gdb *gorm.DB, defaults State) (*Store, error) {
	if gdb == nil {
		return nil, fmt.Errorf("gate: store: db is required")
	}

	var row models.ServiceState
	err := gdb.First(&row, 1).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		row = models.ServiceState{
			ID:                1,
			KillSwitch:        defaults.KillSwitch,
			FallbackMode:      defaults.FallbackMode,
			ModerationEnabled: defaults.ModerationEnabled,
			RatePerMinute:     defaults.RatePerMinute,
		}
		if !defaults.PausedUntil.IsZero() {
			t := defaults.PausedUntil
			row.PausedUntil = &t
		}
		if err := gdb.Create(&row).Error; err != nil {
			return nil, fmt.Errorf("gate: store: create state row: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("gate: store: load state: %w", err)
	}

	var blockedRows []models.BlockedNumber
	if err := gdb.Find(&blockedRows).Error; err != nil {
		return nil, fmt.Errorf("gate: store: load blocked numbers: %w", err)
	}
	blocked := make(map[string]struct{}, len(blockedRows))
	for _, b := range blockedRows {
		blocked[b.Number] = struct{}{}
	}

	return &Store{
		db:      gdb,
		state:   stateFromRow(row),
		blocked: blocked,
	}, nil
}

func stateFromRow(row models.ServiceState) State {
	s := State{
		KillSwitch:        row.KillSwitch,
		FallbackMode:      row.FallbackMode,
		ModerationEnabled: row.ModerationEnabled,
		RatePerMinute:     row.RatePerMinute,
	}
	if row.PausedUntil != nil {
		s.PausedUntil = *row.PausedUntil
	}
	return s
}

// Snapshot returns a copy of the current admission state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// IsBlocked reports whether the raw sender address is operator-blocked.
func (s *Store) IsBlocked(rawNumber string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.blocked[rawNumber]
	return ok
}

// BlockedCount returns the size of the blocked set.
func (s *Store) BlockedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blocked)
}

// ToggleKillSwitch flips the kill switch and returns the new value.
func (s *Store) ToggleKillSwitch() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.state
	next.KillSwitch = !next.KillSwitch
	if err := s.persist(next); err != nil {
		return s.state.KillSwitch, err
	}
	s.state = next
	return next.KillSwitch, nil
}

// Pause suspends admission until the given time.
func (s *Store) Pause(until time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.state
	next.PausedUntil = until
	if err := s.persist(next); err != nil {
		return err
	}
	s.state = next
	return nil
}

// ToggleFallback flips fallback mode and returns the new value.
func (s *Store) ToggleFallback() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.state
	next.FallbackMode = !next.FallbackMode
	if err := s.persist(next); err != nil {
		return s.state.FallbackMode, err
	}
	s.state = next
	return next.FallbackMode, nil
}

// SetRateLimit updates the per-identity per-minute budget. Zero disables
// rate limiting.
func (s *Store) SetRateLimit(perMinute int) error {
	if perMinute < 0 {
		return fmt.Errorf("gate: store: rate limit must be >= 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.state
	next.RatePerMinute = perMinute
	if err := s.persist(next); err != nil {
		return err
	}
	s.state = next
	return nil
}

// SetModeration enables or disables content moderation.
func (s *Store) SetModeration(enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.state
	next.ModerationEnabled = enabled
	if err := s.persist(next); err != nil {
		return err
	}
	s.state = next
	return nil
}

// Block adds a raw number to the blocked set.
func (s *Store) Block(rawNumber, reason string) error {
	if rawNumber == "" {
		return fmt.Errorf("gate: store: number is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	row := models.BlockedNumber{Number: rawNumber, Reason: reason}
	if err := s.db.Save(&row).Error; err != nil {
		return fmt.Errorf("gate: store: block %s: %w", rawNumber, err)
	}
	s.blocked[rawNumber] = struct{}{}
	return nil
}

// Unblock removes a raw number from the blocked set.
func (s *Store) Unblock(rawNumber string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.db.Delete(&models.BlockedNumber{}, "number = ?", rawNumber).Error; err != nil {
		return fmt.Errorf("gate: store: unblock %s: %w", rawNumber, err)
	}
	delete(s.blocked, rawNumber)
	return nil
}

// persist writes the state row. Caller holds the write lock.
func (s *Store) persist(next State) error {
	row := models.ServiceState{
		ID:                1,
		KillSwitch:        next.KillSwitch,
		FallbackMode:      next.FallbackMode,
		ModerationEnabled: next.ModerationEnabled,
		RatePerMinute:     next.RatePerMinute,
	}
	if !next.PausedUntil.IsZero() {
		t := next.PausedUntil
		row.PausedUntil = &t
	}
	if err := s.db.Save(&row).Error; err != nil {
		return fmt.Errorf("gate: store: persist state: %w", err)
	}
	return nil
}

package gate

import (
	"testing"
	"time"

	"github.com/zulandar/textline/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openStateTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := gdb.AutoMigrate(&models.ServiceState{}, &models.BlockedNumber{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return gdb
}

func defaultState() State {
	return State{ModerationEnabled: true, RatePerMinute: 10}
}

func TestNewStore_NilDB(t *testing.T) {
	if _, err := NewStore(nil, defaultState()); err == nil {
		t.Fatal("expected error for nil db")
	}
}

func TestNewStore_CreatesDefaultsRow(t *testing.T) {
	gdb := openStateTestDB(t)
	s, err := NewStore(gdb, defaultState())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	st := s.Snapshot()
	if st.KillSwitch || st.FallbackMode {
		t.Errorf("fresh state should start safe: %+v", st)
	}
	if !st.ModerationEnabled || st.RatePerMinute != 10 {
		t.Errorf("defaults not applied: %+v", st)
	}

	var count int64
	gdb.Model(&models.ServiceState{}).Count(&count)
	if count != 1 {
		t.Errorf("state rows = %d, want 1", count)
	}
}

func TestStore_MutationsPersistAcrossReload(t *testing.T) {
	gdb := openStateTestDB(t)
	s, err := NewStore(gdb, defaultState())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if _, err := s.ToggleKillSwitch(); err != nil {
		t.Fatalf("toggle killswitch: %v", err)
	}
	until := time.Now().Add(5 * time.Minute).Truncate(time.Second)
	if err := s.Pause(until); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if err := s.SetRateLimit(25); err != nil {
		t.Fatalf("set rate limit: %v", err)
	}
	if err := s.Block("+15551234567", "abuse"); err != nil {
		t.Fatalf("block: %v", err)
	}

	// Fresh store over the same db sees the mutations.
	s2, err := NewStore(gdb, defaultState())
	if err != nil {
		t.Fatalf("reload store: %v", err)
	}
	st := s2.Snapshot()
	if !st.KillSwitch {
		t.Error("kill switch not persisted")
	}
	if !st.PausedUntil.Equal(until) {
		t.Errorf("pausedUntil = %v, want %v", st.PausedUntil, until)
	}
	if st.RatePerMinute != 25 {
		t.Errorf("rate = %d, want 25", st.RatePerMinute)
	}
	if !s2.IsBlocked("+15551234567") {
		t.Error("blocked number not persisted")
	}
}

func TestStore_ToggleRoundTrip(t *testing.T) {
	s, err := NewStore(openStateTestDB(t), defaultState())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	on, err := s.ToggleKillSwitch()
	if err != nil || !on {
		t.Fatalf("first toggle = %v, %v", on, err)
	}
	off, err := s.ToggleKillSwitch()
	if err != nil || off {
		t.Fatalf("second toggle = %v, %v", off, err)
	}

	fb, err := s.ToggleFallback()
	if err != nil || !fb {
		t.Fatalf("fallback toggle = %v, %v", fb, err)
	}
}

func TestStore_BlockUnblock(t *testing.T) {
	s, err := NewStore(openStateTestDB(t), defaultState())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := s.Block("", ""); err == nil {
		t.Error("blocking empty number should fail")
	}
	if err := s.Block("+15551234567", ""); err != nil {
		t.Fatalf("block: %v", err)
	}
	if !s.IsBlocked("+15551234567") {
		t.Error("number should be blocked")
	}
	if s.BlockedCount() != 1 {
		t.Errorf("BlockedCount = %d", s.BlockedCount())
	}
	if err := s.Unblock("+15551234567"); err != nil {
		t.Fatalf("unblock: %v", err)
	}
	if s.IsBlocked("+15551234567") {
		t.Error("number should be unblocked")
	}
}

func TestStore_SetRateLimitRejectsNegative(t *testing.T) {
	s, err := NewStore(openStateTestDB(t), defaultState())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := s.SetRateLimit(-1); err == nil {
		t.Error("negative rate limit should fail")
	}
}

func TestStore_SetModeration(t *testing.T) {
	s, err := NewStore(openStateTestDB(t), defaultState())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := s.SetModeration(false); err != nil {
		t.Fatalf("set moderation: %v", err)
	}
	if s.Snapshot().ModerationEnabled {
		t.Error("moderation should be disabled")
	}
}

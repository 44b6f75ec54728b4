package metrics

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/zulandar/textline/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openMetricsTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := gdb.AutoMigrate(&models.Interaction{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return gdb
}

func TestLogger_LogCreatesRow(t *testing.T) {
	gdb := openMetricsTestDB(t)
	l, err := NewLogger(gdb, io.Discard)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	l.Log("abc123def4567890", "query", 200, 420*time.Millisecond)

	var row models.Interaction
	if err := gdb.First(&row).Error; err != nil {
		t.Fatalf("load row: %v", err)
	}
	if row.Identity != "abc123def4567890" || row.Kind != "query" || row.Status != 200 {
		t.Errorf("row = %+v", row)
	}
	if row.ResponseTimeMs != 420 {
		t.Errorf("responseTimeMs = %d", row.ResponseTimeMs)
	}
	if row.RequestID == "" {
		t.Error("request ID should be assigned")
	}
}

func TestLogger_Summarize(t *testing.T) {
	gdb := openMetricsTestDB(t)
	l, err := NewLogger(gdb, io.Discard)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	l.Log("user-one", "query", 200, 100*time.Millisecond)
	l.Log("user-one", "command:help", 200, 50*time.Millisecond)
	l.Log("user-two", "query", 200, 150*time.Millisecond)

	s, err := l.Summarize()
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if s.MessagesToday != 3 {
		t.Errorf("MessagesToday = %d, want 3", s.MessagesToday)
	}
	if s.ActiveUsersToday != 2 {
		t.Errorf("ActiveUsersToday = %d, want 2", s.ActiveUsersToday)
	}
	if s.AvgResponseTimeMs != 100 {
		t.Errorf("AvgResponseTimeMs = %v, want 100", s.AvgResponseTimeMs)
	}

	var total int64
	for _, n := range s.HourlyVolume {
		total += n
	}
	if total != 3 {
		t.Errorf("hourly volume total = %d, want 3", total)
	}
}

func TestLogger_Recent(t *testing.T) {
	gdb := openMetricsTestDB(t)
	l, _ := NewLogger(gdb, io.Discard)
	for i := 0; i < 5; i++ {
		l.Log("user-one", "query", 200, time.Millisecond)
	}
	rows, err := l.Recent(3)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("len = %d, want 3", len(rows))
	}
	if len(rows) > 1 && rows[0].ID < rows[1].ID {
		t.Error("rows should be newest first")
	}
}

func TestDigest_BuildPreviousDay(t *testing.T) {
	gdb := openMetricsTestDB(t)
	d, err := NewDigest(DigestOpts{DB: gdb, Out: io.Discard})
	if err != nil {
		t.Fatalf("new digest: %v", err)
	}

	yesterday := time.Now().AddDate(0, 0, -1)
	gdb.Create(&models.Interaction{Identity: "user-one", Kind: "query", Status: 200, ResponseTimeMs: 200, CreatedAt: yesterday})
	gdb.Create(&models.Interaction{Identity: "user-two", Kind: "query", Status: 200, ResponseTimeMs: 400, CreatedAt: yesterday})
	// Today's row must not count.
	gdb.Create(&models.Interaction{Identity: "user-three", Kind: "query", Status: 200, CreatedAt: time.Now()})

	body, err := d.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !strings.Contains(body, "2 messages from 2 users") {
		t.Errorf("digest = %q", body)
	}
	if !strings.Contains(body, "300ms") {
		t.Errorf("digest avg missing: %q", body)
	}
}

func TestDigest_BuildEmptyDaySuppressed(t *testing.T) {
	d, err := NewDigest(DigestOpts{DB: openMetricsTestDB(t), Out: io.Discard})
	if err != nil {
		t.Fatalf("new digest: %v", err)
	}
	body, err := d.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if body != "" {
		t.Errorf("empty day should suppress digest, got %q", body)
	}
}

func TestDigest_Prune(t *testing.T) {
	gdb := openMetricsTestDB(t)
	d, err := NewDigest(DigestOpts{DB: gdb, RetentionDays: 7, Out: io.Discard})
	if err != nil {
		t.Fatalf("new digest: %v", err)
	}

	gdb.Create(&models.Interaction{Identity: "old", Kind: "query", CreatedAt: time.Now().AddDate(0, 0, -10)})
	gdb.Create(&models.Interaction{Identity: "new", Kind: "query", CreatedAt: time.Now()})

	if err := d.Prune(); err != nil {
		t.Fatalf("prune: %v", err)
	}
	var count int64
	gdb.Model(&models.Interaction{}).Count(&count)
	if count != 1 {
		t.Errorf("rows after prune = %d, want 1", count)
	}
}

func TestDigest_RunDisabledWithoutCron(t *testing.T) {
	d, err := NewDigest(DigestOpts{DB: openMetricsTestDB(t), Out: io.Discard})
	if err != nil {
		t.Fatalf("new digest: %v", err)
	}
	done := make(chan struct{})
	go func() {
		d.Run(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run should return immediately without a cron expression")
	}
}

func TestDigest_RunRejectsBadCron(t *testing.T) {
	var buf bytes.Buffer
	d, err := NewDigest(DigestOpts{DB: openMetricsTestDB(t), CronExpr: "not a cron", Out: &buf})
	if err != nil {
		t.Fatalf("new digest: %v", err)
	}
	d.Run(context.Background())
	if !strings.Contains(buf.String(), "invalid cron") {
		t.Errorf("out = %q", buf.String())
	}
}

func TestNextCronDuration(t *testing.T) {
	if d := nextCronDuration("*/5 * * * *"); d <= 0 || d > 5*time.Minute {
		t.Errorf("nextCronDuration = %v", d)
	}
	if d := nextCronDuration("garbage"); d != 0 {
		t.Errorf("bad expr should yield 0, got %v", d)
	}
}

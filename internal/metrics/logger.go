// Package metrics persists privacy-preserving interaction records and
// aggregates them for the operator API.
package metrics

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/zulandar/textline/internal/models"
	"gorm.io/gorm"
)

// Logger writes interaction rows. Logging is best-effort: storage failures
// are reported to out and never fail the request.
type Logger struct {
	db  *gorm.DB
	out io.Writer
	now func() time.Time
}

// NewLogger creates a Logger.
func NewLogger(gdb *gorm.DB, out io.Writer) (*Logger, error) {
	if gdb == nil {
		return nil, fmt.Errorf("metrics: db is required")
	}
	if out == nil {
		out = os.Stdout
	}
	return &Logger{db: gdb, out: out, now: time.Now}, nil
}

// Log records one interaction. Only the hashed identity and the message kind
// are stored, never raw numbers or content.
func (l *Logger) Log(identityHash, kind string, status int, elapsed time.Duration) {
	row := models.Interaction{
		RequestID:      uuid.NewString(),
		Identity:       identityHash,
		Kind:           kind,
		Status:         status,
		ResponseTimeMs: elapsed.Milliseconds(),
	}
	if err := l.db.Create(&row).Error; err != nil {
		fmt.Fprintf(l.out, "metrics: log interaction: %v\n", err)
	}
}

// Summary is the aggregate view served by the operator API.
type Summary struct {
	MessagesToday     int64     `json:"messagesToday"`
	ActiveUsersToday  int64     `json:"activeUsers"`
	AvgResponseTimeMs float64   `json:"avgResponseTime"`
	HourlyVolume      [24]int64 `json:"hourlyVolume"`
}

// Summarize aggregates today's interactions (local midnight boundary).
func (l *Logger) Summarize() (Summary, error) {
	var s Summary
	now := l.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if err := l.db.Model(&models.Interaction{}).
		Where("created_at >= ?", dayStart).
		Count(&s.MessagesToday).Error; err != nil {
		return Summary{}, fmt.Errorf("metrics: count today: %w", err)
	}
	if err := l.db.Model(&models.Interaction{}).
		Where("created_at >= ?", dayStart).
		Distinct("identity").Count(&s.ActiveUsersToday).Error; err != nil {
		return Summary{}, fmt.Errorf("metrics: count users: %w", err)
	}

	var avg *float64
	if err := l.db.Model(&models.Interaction{}).
		Where("created_at >= ?", dayStart).
		Select("AVG(response_time_ms)").Scan(&avg).Error; err != nil {
		return Summary{}, fmt.Errorf("metrics: avg response time: %w", err)
	}
	if avg != nil {
		s.AvgResponseTimeMs = *avg
	}

	var rows []models.Interaction
	if err := l.db.Where("created_at >= ?", dayStart).Find(&rows).Error; err != nil {
		return Summary{}, fmt.Errorf("metrics: hourly volume: %w", err)
	}
	for _, r := range rows {
		s.HourlyVolume[r.CreatedAt.Hour()]++
	}
	return s, nil
}

// Recent returns the newest n interaction rows.
func (l *Logger) Recent(n int) ([]models.Interaction, error) {
	if n <= 0 {
		n = 20
	}
	var rows []models.Interaction
	if err := l.db.Order("id DESC").Limit(n).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("metrics: recent: %w", err)
	}
	return rows, nil
}

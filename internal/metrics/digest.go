package metrics

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/zulandar/textline/internal/alert"
	"github.com/zulandar/textline/internal/models"
	"gorm.io/gorm"
)

// cronParser uses standard 5-field cron expressions (minute, hour, dom,
// month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// nextCronDuration parses a 5-field cron expression and returns the duration
// until the next fire time. Returns 0 on parse error.
func nextCronDuration(expr string) time.Duration {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return 0
	}
	next := sched.Next(time.Now())
	d := time.Until(next)
	if d < 0 {
		return 0
	}
	return d
}

// Digest periodically summarizes the previous day's interactions for
// operators and prunes rows past the retention window.
type Digest struct {
	db            *gorm.DB
	notifier      alert.Notifier
	cronExpr      string
	retentionDays int
	out           io.Writer
	now           func() time.Time
}

// DigestOpts holds parameters for creating a Digest.
type DigestOpts struct {
	DB            *gorm.DB
	Notifier      alert.Notifier // optional; defaults to a no-op
	CronExpr      string         // 5-field cron; empty disables the scheduler
	RetentionDays int            // rows older than this are pruned; 0 disables
	Out           io.Writer      // defaults to os.Stdout
}

// NewDigest creates a Digest.
func NewDigest(opts DigestOpts) (*Digest, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("metrics: digest: db is required")
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = alert.Nop{}
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	return &Digest{
		db:            opts.DB,
		notifier:      notifier,
		cronExpr:      opts.CronExpr,
		retentionDays: opts.RetentionDays,
		out:           out,
		now:           time.Now,
	}, nil
}

// Run blocks until ctx is cancelled, firing on the cron schedule. It returns
// immediately when no schedule is configured.
func (d *Digest) Run(ctx context.Context) {
	if d.cronExpr == "" {
		return
	}
	wait := nextCronDuration(d.cronExpr)
	if wait <= 0 {
		fmt.Fprintf(d.out, "metrics: digest: invalid cron %q; scheduler disabled\n", d.cronExpr)
		return
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			d.fire(ctx)
			if next := nextCronDuration(d.cronExpr); next > 0 {
				timer.Reset(next)
			} else {
				return
			}
		}
	}
}

// fire builds and delivers one digest, then prunes old rows.
func (d *Digest) fire(ctx context.Context) {
	body, err := d.Build()
	if err != nil {
		fmt.Fprintf(d.out, "metrics: digest: %v\n", err)
		return
	}
	if body != "" {
		if err := d.notifier.Notify(ctx, "Textline daily digest", body); err != nil {
			fmt.Fprintf(d.out, "metrics: digest: notify: %v\n", err)
		}
	}
	if err := d.Prune(); err != nil {
		fmt.Fprintf(d.out, "metrics: digest: %v\n", err)
	}
}

// Build summarizes the previous day. Returns an empty string when there was
// no activity, which suppresses the notification.
func (d *Digest) Build() (string, error) {
	now := d.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	prevStart := dayStart.AddDate(0, 0, -1)

	var count int64
	if err := d.db.Model(&models.Interaction{}).
		Where("created_at >= ? AND created_at < ?", prevStart, dayStart).
		Count(&count).Error; err != nil {
		return "", fmt.Errorf("count interactions: %w", err)
	}
	if count == 0 {
		return "", nil
	}

	var users int64
	if err := d.db.Model(&models.Interaction{}).
		Where("created_at >= ? AND created_at < ?", prevStart, dayStart).
		Distinct("identity").Count(&users).Error; err != nil {
		return "", fmt.Errorf("count users: %w", err)
	}

	var avg *float64
	if err := d.db.Model(&models.Interaction{}).
		Where("created_at >= ? AND created_at < ?", prevStart, dayStart).
		Select("AVG(response_time_ms)").Scan(&avg).Error; err != nil {
		return "", fmt.Errorf("avg response time: %w", err)
	}
	avgMs := 0.0
	if avg != nil {
		avgMs = *avg
	}

	return fmt.Sprintf("%s: %d messages from %d users, avg response %.0fms",
		prevStart.Format("2006-01-02"), count, users, avgMs), nil
}

// Prune deletes interaction rows older than the retention window.
func (d *Digest) Prune() error {
	if d.retentionDays <= 0 {
		return nil
	}
	cutoff := d.now().AddDate(0, 0, -d.retentionDays)
	if err := d.db.Where("created_at < ?", cutoff).Delete(&models.Interaction{}).Error; err != nil {
		return fmt.Errorf("prune interactions: %w", err)
	}
	return nil
}

// Package admin is the operator control plane: runtime toggles, block-list
// management, cache control, and metrics, served as an authenticated route
// group alongside the webhooks.
package admin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/textline/internal/alert"
	"github.com/zulandar/textline/internal/cache"
	"github.com/zulandar/textline/internal/gate"
	"github.com/zulandar/textline/internal/metrics"
)

// defaultPauseMinutes is used when a pause request names no duration.
const defaultPauseMinutes = 5

// Rate-limit bounds accepted from operators.
const (
	minRateLimit = 1
	maxRateLimit = 100
)

// API implements the operator endpoints over the shared runtime stores.
type API struct {
	tokenHash     string
	store         *gate.Store
	queryCache    *cache.Bounded
	continuations *cache.Continuations
	metrics       *metrics.Logger
	notifier      alert.Notifier
	out           io.Writer
	now           func() time.Time
}

// Opts holds parameters for creating an API.
type Opts struct {
	// TokenHash is the hex SHA-256 digest of the operator bearer token.
	TokenHash     string
	Store         *gate.Store
	QueryCache    *cache.Bounded
	Continuations *cache.Continuations
	Metrics       *metrics.Logger
	Notifier      alert.Notifier // optional; defaults to a no-op
	Out           io.Writer      // defaults to os.Stdout
	Now           func() time.Time
}

// New creates an API.
func New(opts Opts) (*API, error) {
	if opts.TokenHash == "" {
		return nil, fmt.Errorf("admin: token hash is required")
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("admin: state store is required")
	}
	if opts.QueryCache == nil {
		return nil, fmt.Errorf("admin: query cache is required")
	}
	if opts.Continuations == nil {
		return nil, fmt.Errorf("admin: continuation store is required")
	}
	if opts.Metrics == nil {
		return nil, fmt.Errorf("admin: metrics logger is required")
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = alert.Nop{}
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &API{
		tokenHash:     opts.TokenHash,
		store:         opts.Store,
		queryCache:    opts.QueryCache,
		continuations: opts.Continuations,
		metrics:       opts.Metrics,
		notifier:      notifier,
		out:           out,
		now:           now,
	}, nil
}

// Register mounts the operator routes under /admin. Every route, metrics
// included, sits behind bearer authentication.
func (a *API) Register(router *gin.Engine) {
	grp := router.Group("/admin", a.requireToken())

	grp.POST("/killswitch", a.handleKillSwitch)
	grp.POST("/pause", a.handlePause)
	grp.POST("/fallback", a.handleFallback)
	grp.POST("/ratelimit", a.handleRateLimit)
	grp.POST("/block", a.handleBlock)
	grp.POST("/unblock", a.handleUnblock)
	grp.POST("/cache/clear", a.handleCacheClear)
	grp.GET("/config", a.handleConfigGet)
	grp.POST("/config", a.handleConfigSet)
	grp.GET("/metrics", a.handleMetrics)
	grp.GET("/messages", a.handleMessages)
}

func (a *API) handleKillSwitch(c *gin.Context) {
	active, err := a.store.ToggleKillSwitch()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update state"})
		return
	}
	verb := "deactivated"
	if active {
		verb = "activated"
	}
	a.notify(c.Request.Context(), "Kill switch "+verb,
		fmt.Sprintf("Operator %s the kill switch.", verb))
	c.JSON(http.StatusOK, gin.H{
		"killSwitch": active,
		"message":    "kill switch " + verb,
	})
}

type pauseRequest struct {
	// Pointer so an absent field (use the default) is distinct from an
	// explicit zero (rejected).
	Minutes *int `json:"minutes"`
}

func (a *API) handlePause(c *gin.Context) {
	var req pauseRequest
	// An empty body means the default pause window.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed JSON body"})
		return
	}
	minutes := defaultPauseMinutes
	if req.Minutes != nil {
		minutes = *req.Minutes
	}
	if minutes < 1 || minutes > 24*60 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "minutes must be between 1 and 1440"})
		return
	}

	until := a.now().Add(time.Duration(minutes) * time.Minute)
	if err := a.store.Pause(until); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update state"})
		return
	}
	a.notify(c.Request.Context(), "Service paused",
		fmt.Sprintf("Inbound messages paused for %d minutes.", minutes))
	c.JSON(http.StatusOK, gin.H{
		"pausedUntil": until.UTC().Format(time.RFC3339),
		"message":     fmt.Sprintf("paused for %d minutes", minutes),
	})
}

func (a *API) handleFallback(c *gin.Context) {
	active, err := a.store.ToggleFallback()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update state"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"fallbackMode": active})
}

type rateLimitRequest struct {
	Limit int `json:"limit"`
}

func (a *API) handleRateLimit(c *gin.Context) {
	var req rateLimitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed JSON body"})
		return
	}
	if req.Limit < minRateLimit || req.Limit > maxRateLimit {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("limit must be between %d and %d", minRateLimit, maxRateLimit),
		})
		return
	}
	if err := a.store.SetRateLimit(req.Limit); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update state"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ratePerMinute": req.Limit})
}

type numberRequest struct {
	Number string `json:"number"`
	Reason string `json:"reason"`
}

func (a *API) handleBlock(c *gin.Context) {
	var req numberRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Number == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "number is required"})
		return
	}
	if err := a.store.Block(req.Number, req.Reason); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update block list"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"blocked":      req.Number,
		"blockedCount": a.store.BlockedCount(),
	})
}

func (a *API) handleUnblock(c *gin.Context) {
	var req numberRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Number == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "number is required"})
		return
	}
	if err := a.store.Unblock(req.Number); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update block list"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"unblocked":    req.Number,
		"blockedCount": a.store.BlockedCount(),
	})
}

func (a *API) handleCacheClear(c *gin.Context) {
	queries := a.queryCache.Len()
	continuations := a.continuations.Len()
	a.queryCache.Clear()
	a.continuations.Clear()
	c.JSON(http.StatusOK, gin.H{
		"clearedQueries":       queries,
		"clearedContinuations": continuations,
	})
}

func (a *API) handleConfigGet(c *gin.Context) {
	c.JSON(http.StatusOK, a.configView())
}

type configRequest struct {
	Moderation *bool `json:"moderation"`
	RateLimit  *int  `json:"rateLimit"`
}

// handleConfigSet applies partial updates; absent fields are untouched.
func (a *API) handleConfigSet(c *gin.Context) {
	var req configRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed JSON body"})
		return
	}
	if req.Moderation == nil && req.RateLimit == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no recognized config fields"})
		return
	}
	if req.RateLimit != nil && (*req.RateLimit < minRateLimit || *req.RateLimit > maxRateLimit) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("rateLimit must be between %d and %d", minRateLimit, maxRateLimit),
		})
		return
	}

	if req.Moderation != nil {
		if err := a.store.SetModeration(*req.Moderation); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update state"})
			return
		}
	}
	if req.RateLimit != nil {
		if err := a.store.SetRateLimit(*req.RateLimit); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update state"})
			return
		}
	}
	c.JSON(http.StatusOK, a.configView())
}

func (a *API) handleMetrics(c *gin.Context) {
	summary, err := a.metrics.Summarize()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build summary"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"systemStatus": a.systemStatus(),
		"summary":      summary,
		"cache": gin.H{
			"queries":       a.queryCache.Len(),
			"continuations": a.continuations.Len(),
		},
	})
}

func (a *API) handleMessages(c *gin.Context) {
	n := 50
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > 500 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 500"})
			return
		}
		n = v
	}
	rows, err := a.metrics.Recent(n)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": rows})
}

func (a *API) configView() gin.H {
	st := a.store.Snapshot()
	view := gin.H{
		"killSwitch":    st.KillSwitch,
		"fallbackMode":  st.FallbackMode,
		"moderation":    st.ModerationEnabled,
		"ratePerMinute": st.RatePerMinute,
		"blockedCount":  a.store.BlockedCount(),
		"systemStatus":  a.systemStatus(),
	}
	if !st.PausedUntil.IsZero() && st.PausedUntil.After(a.now()) {
		view["pausedUntil"] = st.PausedUntil.UTC().Format(time.RFC3339)
	}
	return view
}

// systemStatus collapses the admission state into one operator-facing word.
func (a *API) systemStatus() string {
	st := a.store.Snapshot()
	switch {
	case st.KillSwitch:
		return "stopped"
	case !st.PausedUntil.IsZero() && st.PausedUntil.After(a.now()):
		return "paused"
	case st.FallbackMode:
		return "fallback"
	default:
		return "operational"
	}
}

// notify sends an operator alert without blocking the response on failures.
func (a *API) notify(ctx context.Context, title, body string) {
	if err := a.notifier.Notify(ctx, title, body); err != nil {
		fmt.Fprintf(a.out, "admin: alert delivery failed: %v\n", err)
	}
}

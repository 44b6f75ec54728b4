// Package webhook serves the inbound message transports. Each handler is a
// thin translation of request/response shapes around the pipeline; no
// decision logic lives here.
package webhook

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/textline/internal/pipeline"
)

// Opts holds configuration for the webhook server.
type Opts struct {
	Pipeline *pipeline.Pipeline
	Port     int
	// TwilioAuthToken enables X-Twilio-Signature validation on the SMS
	// webhook when set. PublicURL must then be the externally visible base
	// URL Twilio signed against.
	TwilioAuthToken string
	PublicURL       string
	Out             io.Writer
	// Register adds extra route groups (the operator API) onto the same
	// engine. Optional.
	Register func(*gin.Engine)
}

// Start launches the HTTP server. It blocks until ctx is cancelled, then
// shuts down gracefully.
func Start(ctx context.Context, opts Opts) error {
	router, err := NewRouter(opts)
	if err != nil {
		return err
	}

	port := opts.Port
	if port <= 0 {
		port = 8080
	}
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "Textline listening on :%d\n", port)
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("webhook: %w", err)
	}
	return nil
}

// NewRouter builds the Gin engine with all transport routes registered.
func NewRouter(opts Opts) (*gin.Engine, error) {
	if opts.Pipeline == nil {
		return nil, fmt.Errorf("webhook: pipeline is required")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.HandleMethodNotAllowed = true

	started := time.Now()
	router.GET("/health", handleHealth(started))
	router.POST("/webhook/sms", handleSMS(opts))
	router.POST("/webhook/imessage", handleIMessage(opts.Pipeline))

	if opts.Register != nil {
		opts.Register(router)
	}
	return router, nil
}

func handleHealth(started time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"uptimeSec": int(time.Since(started).Seconds()),
		})
	}
}

// handleSMS translates a Twilio form POST into a pipeline call and renders
// the outcome as TwiML.
func handleSMS(opts Opts) gin.HandlerFunc {
	return func(c *gin.Context) {
		if opts.TwilioAuthToken != "" {
			if err := c.Request.ParseForm(); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "malformed form body"})
				return
			}
			requestURL := opts.PublicURL + c.Request.URL.RequestURI()
			sig := c.GetHeader("X-Twilio-Signature")
			if err := VerifySignature(opts.TwilioAuthToken, requestURL, c.Request.PostForm, sig); err != nil {
				c.JSON(http.StatusForbidden, gin.H{"error": "signature verification failed"})
				return
			}
		}

		out := opts.Pipeline.Handle(c.Request.Context(), pipeline.Inbound{
			Body: c.PostForm("Body"),
			From: c.PostForm("From"),
			To:   c.PostForm("To"),
		})
		if out.Err != "" {
			c.JSON(out.Status, gin.H{"error": out.Err})
			return
		}
		c.Data(out.Status, "text/xml; charset=utf-8", []byte(TwiML(out.Reply)))
	}
}

// iMessageRequest is the JSON shape of the iMessage bridge adapter.
type iMessageRequest struct {
	Message string `json:"message"`
	Sender  string `json:"sender"`
}

// handleIMessage is the second transport adapter: JSON in, JSON out, same
// pipeline underneath.
func handleIMessage(p *pipeline.Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req iMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed JSON body"})
			return
		}

		out := p.Handle(c.Request.Context(), pipeline.Inbound{
			Body: req.Message,
			From: req.Sender,
		})
		if out.Err != "" {
			c.JSON(out.Status, gin.H{"error": out.Err})
			return
		}
		c.JSON(out.Status, gin.H{"reply": out.Reply})
	}
}

package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/zulandar/textline/internal/admin"
	"github.com/zulandar/textline/internal/alert"
	"github.com/zulandar/textline/internal/cache"
	"github.com/zulandar/textline/internal/config"
	"github.com/zulandar/textline/internal/db"
	"github.com/zulandar/textline/internal/gate"
	"github.com/zulandar/textline/internal/metrics"
	"github.com/zulandar/textline/internal/openai"
	"github.com/zulandar/textline/internal/pipeline"
	"github.com/zulandar/textline/internal/respond"
	"github.com/zulandar/textline/internal/sms"
	"github.com/zulandar/textline/internal/webhook"

	"github.com/gin-gonic/gin"
)

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Textline webhook server",
		Long:  "Starts the SMS/iMessage webhook server with the operator API mounted under /admin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "textline.yaml", "path to Textline config file")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	gdb, err := openFromConfig(cfg)
	if err != nil {
		return err
	}
	if err := db.AutoMigrate(gdb); err != nil {
		return err
	}
	fmt.Fprintf(out, "Database ready (%s)\n", cfg.Database.Driver)

	store, err := gate.NewStore(gdb, gate.State{
		ModerationEnabled: true,
		RatePerMinute:     cfg.Limits.RatePerMinute,
	})
	if err != nil {
		return err
	}
	admission, err := gate.New(gate.Opts{
		State:   store,
		Limiter: gate.NewWindowLimiter(time.Minute),
	})
	if err != nil {
		return err
	}

	ai := openai.NewClient(openai.Opts{
		APIKey:           cfg.OpenAI.APIKey,
		BaseURL:          cfg.OpenAI.BaseURL,
		Model:            cfg.OpenAI.Model,
		Timeout:          time.Duration(cfg.OpenAI.TimeoutSec) * time.Second,
		Temperature:      cfg.OpenAI.Temperature,
		FrequencyPenalty: cfg.OpenAI.FrequencyPenalty,
	})

	formatter := sms.NewFormatter(cfg.Limits.SMSMaxLength, cfg.Limits.ComplianceProbability, time.Now().UnixNano())
	queryCache := cache.NewBounded(cfg.Limits.CacheCapacity)
	continuations := cache.NewContinuations()

	notifier, err := alert.FromConfig(cfg.Alerts)
	if err != nil {
		return fmt.Errorf("configure alerts: %w", err)
	}

	generator, err := respond.NewGenerator(respond.GeneratorOpts{
		Completer:     ai,
		Formatter:     formatter,
		QueryCache:    queryCache,
		Continuations: continuations,
		MaxTokens:     cfg.OpenAI.MaxTokens,
		Timeout:       time.Duration(cfg.OpenAI.TimeoutSec) * time.Second,
		Out:           out,
		Notifier:      notifier,
	})
	if err != nil {
		return err
	}

	interactions, err := metrics.NewLogger(gdb, out)
	if err != nil {
		return err
	}

	p, err := pipeline.New(pipeline.Opts{
		Salt:      cfg.Identity.Salt,
		Gate:      admission,
		State:     store,
		Moderator: ai,
		Generator: generator,
		Formatter: formatter,
		Logger:    interactions,
		Out:       out,
	})
	if err != nil {
		return err
	}

	operator, err := admin.New(admin.Opts{
		TokenHash:     cfg.Admin.TokenHash,
		Store:         store,
		QueryCache:    queryCache,
		Continuations: continuations,
		Metrics:       interactions,
		Notifier:      notifier,
		Out:           out,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	digest, err := metrics.NewDigest(metrics.DigestOpts{
		DB:            gdb,
		Notifier:      notifier,
		CronExpr:      cfg.Metrics.DigestCron,
		RetentionDays: cfg.Metrics.RetentionDays,
		Out:           out,
	})
	if err != nil {
		return err
	}
	go digest.Run(ctx)

	return webhook.Start(ctx, webhook.Opts{
		Pipeline:        p,
		Port:            cfg.Server.Port,
		TwilioAuthToken: cfg.Server.TwilioAuthToken,
		PublicURL:       cfg.Server.PublicURL,
		Out:             out,
		Register:        func(r *gin.Engine) { operator.Register(r) },
	})
}

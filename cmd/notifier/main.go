package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/spf13/pflag"

	"github.com/jwalitptl/content-notifier/internal/config"
	"github.com/jwalitptl/content-notifier/internal/email"
	"github.com/jwalitptl/content-notifier/internal/links"
	"github.com/jwalitptl/content-notifier/internal/model"
	"github.com/jwalitptl/content-notifier/internal/repository/cache"
	"github.com/jwalitptl/content-notifier/internal/repository/postgres"
	"github.com/jwalitptl/content-notifier/internal/service/review"
	"github.com/jwalitptl/content-notifier/internal/tasklog"
	"github.com/jwalitptl/content-notifier/pkg/logger"
	"github.com/jwalitptl/content-notifier/pkg/metrics"
)

func main() {
	once := pflag.Bool("once", false, "execute a single notification run and exit")
	pflag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
	})

	runCfg, err := cfg.Task.Normalize()
	if err != nil {
		log.Fatal(err, "invalid task configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	if err := postgres.RunMigrations(db); err != nil {
		log.Fatal(err, "failed to run migrations")
	}

	base := postgres.NewBaseRepository(db)
	contentRepo := postgres.NewContentRepository(base)
	logRepo := postgres.NewReviewLogRepository(base)
	userRepo := cache.NewUserRepository(postgres.NewUserRepository(base), cfg.Task.CacheTTL(), cfg.Task.CacheTTL())

	mailer := email.NewSMTPMailer(cfg.SMTP, email.NewDefaultTemplateSet())
	linkBuilder := links.NewBuilder(links.Config{
		SiteBaseURL:  cfg.Site.BaseURL,
		AdminBaseURL: cfg.Site.AdminBaseURL,
	})
	diag := tasklog.NewFileLog(cfg.Task.TaskLogFile(), log)

	m := metrics.New("content_notifier", prometheus.DefaultRegisterer)

	runner := review.NewRunner(
		review.NewSelector(contentRepo, logRepo),
		review.NewResolver(userRepo, log),
		logRepo,
		mailer,
		linkBuilder,
		diag,
		review.Site{Name: cfg.Site.Name, Language: cfg.Site.Language},
		log,
		m,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("shutting down")
		cancel()
	}()

	execute := func() model.RunStatus {
		result, err := runner.Run(ctx, runCfg)
		if err != nil {
			log.Error(err, "notification run failed", "status", result.Status.String())
			return result.Status
		}
		log.Info("notification run finished",
			"first_sent", result.FirstSent,
			"second_sent", result.SecondSent,
			"cancelled", result.Cancelled,
			"skipped", result.Skipped)
		return result.Status
	}

	if *once {
		if execute() != model.StatusOK {
			os.Exit(1)
		}
		return
	}

	serveMetrics(cfg.Metrics.Addr, log)

	// The scheduler guarantees single-flight runs; overlapping ticks are
	// skipped rather than queued.
	var running atomic.Bool
	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.Task.Schedule, func() {
		if !running.CompareAndSwap(false, true) {
			log.Warn("previous run still in progress, skipping tick")
			return
		}
		defer running.Store(false)
		execute()
	})
	if err != nil {
		log.Fatal(err, "invalid cron schedule")
	}

	log.Info("scheduler started", "schedule", cfg.Task.Schedule)
	scheduler.Start()

	<-ctx.Done()
	<-scheduler.Stop().Done()
}

func serveMetrics(addr string, log *logger.Logger) {
	if addr == "" {
		addr = ":8081"
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Error(err, "metrics server failed")
			os.Exit(1)
		}
	}()
}

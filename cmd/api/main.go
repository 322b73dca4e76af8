package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/wardle-dev/lookout/internal/api/routes"
	"github.com/wardle-dev/lookout/internal/checker"
	"github.com/wardle-dev/lookout/internal/config"
	"github.com/wardle-dev/lookout/internal/database"
	"github.com/wardle-dev/lookout/internal/logger"
	"github.com/wardle-dev/lookout/internal/metrics"
	"github.com/wardle-dev/lookout/internal/notify"
	"github.com/wardle-dev/lookout/internal/scheduler"
	"github.com/wardle-dev/lookout/internal/server"
	"github.com/wardle-dev/lookout/internal/services"
	"github.com/wardle-dev/lookout/internal/version"
)

func main() {
	// .env is optional; real deployments configure through the environment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Log().WithError(err).Fatal("load config")
	}

	// Log to stdout and a rotated file.
	logDir := filepath.Join(filepath.Dir(cfg.DatabasePath), "logs")
	_ = os.MkdirAll(logDir, 0o755)
	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "lookout.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	logger.Init(cfg.Environment == "development", io.MultiWriter(os.Stdout, rotator))
	log := logger.Log()

	log.Infof("starting %s %s", version.Name, version.Full())

	if cfg.JWTSecret == "" {
		log.Fatal("LOOKOUT_JWT_SECRET must be set")
	}

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		log.WithError(err).Fatal("open database")
	}
	if err := database.Migrate(db); err != nil {
		log.WithError(err).Fatal("migrate database")
	}

	registry := prometheus.NewRegistry()
	metrics.Register(registry)

	// Liveness heartbeat: Redis when configured, in-process otherwise.
	var liveness scheduler.LivenessSignal
	if cfg.RedisAddr != "" {
		redisSignal, err := scheduler.NewRedisSignal(cfg.RedisAddr)
		if err != nil {
			log.WithError(err).Fatal("connect redis")
		}
		liveness = redisSignal
	} else {
		liveness = scheduler.NewMemorySignal()
		log.Info("no redis configured, using in-process scheduler heartbeat")
	}

	mailer := notify.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.FromAddress)
	dispatcher := notify.NewDispatcher(db, mailer, cfg)
	checkService := services.NewCheckService(db, checker.New(), dispatcher)
	uptimeService := services.NewUptimeService(db)

	sched := scheduler.New(db, checkService, liveness, scheduler.Options{Workers: cfg.Workers})
	defer sched.Stop()

	// Periodic triggers: the due scan every scan interval, retention daily.
	crontab := cron.New()
	_, err = crontab.AddFunc("@every "+cfg.ScanInterval.String(), func() {
		if _, err := sched.EnqueueDue(context.Background()); err != nil {
			log.WithError(err).Error("scheduler scan failed")
		}
	})
	if err != nil {
		log.WithError(err).Fatal("register scheduler cadence")
	}
	if _, err := crontab.AddFunc("@daily", func() {
		if _, err := uptimeService.PruneChecks(cfg.CheckRetentionDays, false); err != nil {
			log.WithError(err).Error("check retention failed")
		}
	}); err != nil {
		log.WithError(err).Fatal("register retention job")
	}
	crontab.Start()
	defer crontab.Stop()

	srv := server.New(cfg, routes.Deps{
		DB:        db,
		Config:    cfg,
		Scheduler: sched,
		Liveness:  liveness,
		Registry:  registry,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Infof("listening on :%s", cfg.HTTPPort)
	if err := srv.Run(ctx); err != nil {
		log.WithError(err).Fatal("server error")
	}
}

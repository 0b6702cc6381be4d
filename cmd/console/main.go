package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/xela07ax/hospital-console/internal/app"
	"github.com/xela07ax/hospital-console/internal/console/handler"
	"github.com/xela07ax/hospital-console/internal/console/server"
	"github.com/xela07ax/hospital-console/internal/console/service"
	"github.com/xela07ax/hospital-console/internal/dashboard"
	"github.com/xela07ax/hospital-console/internal/infra"
	"github.com/xela07ax/hospital-console/internal/infra/auth"
	"github.com/xela07ax/hospital-console/internal/notify"
	"github.com/xela07ax/hospital-console/internal/reports"
	"github.com/xela07ax/hospital-console/internal/validation"
)

func main() {
	// 1. Конфигурация и логгер
	loader := infra.NewLoader()
	cfg, err := loader.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger, level, err := infra.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	// Уровень логирования меняется без рестарта
	loader.Watch(func(c *infra.Config) {
		if err := infra.SetLogLevel(level, c.Logger.Level); err != nil {
			logger.Warn("config reload: bad log level", zap.Error(err))
			return
		}
		logger.Info("log level changed", zap.String("level", c.Logger.Level))
	})

	// Контекст жизненного цикла: SIGTERM отменяет его
	appCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Ключи RS256
	privateKey, err := auth.ParseRSAPrivateKey(cfg.Auth.PrivateKey)
	if err != nil {
		logger.Fatal("auth private key", zap.Error(err))
	}
	publicKey, err := auth.ParseRSAPublicKey(cfg.Auth.PublicKey)
	if err != nil {
		logger.Fatal("auth public key", zap.Error(err))
	}

	// 3. Инфраструктура и ресурсы
	startCtx, cancel := context.WithTimeout(appCtx, 15*time.Second)
	res, err := app.Open(startCtx, cfg, logger)
	cancel()
	if err != nil {
		logger.Fatal("failed to open resources", zap.Error(err))
	}
	defer res.Close()

	// Метрики
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := dashboard.NewMetrics(reg)

	// 4. Почта: Resend (или лог в test_mode) -> надежность -> очередь
	var mailer notify.Mailer = notify.NewLogMailer(logger)
	if !cfg.Email.TestMode {
		resendMailer, err := notify.NewResendMailer(cfg.Email.ResendAPIKey, cfg.Email.FromName, cfg.Email.From)
		if err != nil {
			logger.Fatal("email", zap.Error(err))
		}
		mailer = notify.NewReliableMailer(resendMailer, cfg.Email.RatePerSec)
	}
	outbox := notify.NewOutbox(mailer, cfg.Email.OutboxSize, logger)
	outbox.Start()

	// 5. Сервисы (Dependency Injection)
	loc := cfg.Dashboard.Location()
	v := validation.New()

	aggregator := dashboard.NewAggregator(res.Repo, loc)
	dashService := service.NewDashboardService(aggregator, res.Feed, metrics, cfg.Dashboard.RefreshTimeout, logger)
	if err := dashService.Start(appCtx); err != nil {
		logger.Fatal("failed to start dashboard", zap.Error(err))
	}

	var archive reports.ObjectStore
	if cfg.Reports.ArchiveEnabled() {
		store, err := reports.NewS3Store(appCtx, cfg.Reports)
		if err != nil {
			logger.Fatal("report archive", zap.Error(err))
		}
		archive = store
	}

	authService := service.NewAuthService(res.Repo, privateKey, cfg.Auth.TokenTTL)
	records := service.NewRecordService(res.Repo, v, res.Publisher, logger)
	booking := service.NewBookingService(res.Repo, v, outbox, res.Publisher, service.BookingConfig{
		Clinic:       cfg.Email.FromName,
		AdminAddress: cfg.Email.AdminAddress,
		Location:     loc,
	}, logger)
	contact := service.NewContactService(res.Repo, v, logger)
	reportService := service.NewReportService(reports.NewBuilder(res.Repo, loc), dashService, archive, logger)

	// 6. HTTP
	api := server.NewConsoleServer(logger, auth.NewConsoleVerifier(publicKey),
		func(r *http.Request) error { return res.Repo.Ping(r.Context()) },
		server.Handlers{
			Auth:         handler.NewAuthHandler(authService, logger),
			Public:       handler.NewPublicHandler(booking, contact, logger),
			Dashboard:    handler.NewDashboardHandler(dashService, cfg.Server.AllowedOrigins, logger),
			Patients:     handler.NewPatientHandler(records, logger),
			Doctors:      handler.NewDoctorHandler(records, logger),
			Appointments: handler.NewAppointmentHandler(records, logger),
			Billing:      handler.NewBillingHandler(records, logger),
			Inventory:    handler.NewInventoryHandler(records, logger),
			Reports:      handler.NewReportHandler(reportService, logger),
		})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      api,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		// WebSocket-соединения не ждет Shutdown, они закрываются по отмене appCtx
		BaseContext: func(net.Listener) context.Context { return appCtx },
	}

	var metricsSrv *http.Server
	if cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		metricsSrv = &http.Server{Addr: cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", zap.Error(err))
			}
		}()
	}

	go func() {
		logger.Info("console API started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	// 7. Graceful Shutdown
	<-appCtx.Done()
	logger.Info("console API stopping...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer shutdownCancel()

	// Сначала HTTP (закрывает live-сессии), затем общий Sync и очередь писем
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	if err := dashService.Stop(shutdownCtx); err != nil {
		logger.Warn("dashboard stop", zap.Error(err))
	}
	outbox.Stop()
	logger.Info("console API exited properly")
}

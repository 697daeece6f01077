package cmd

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Robaed/changachanga-dev/app/controller"
	"github.com/Robaed/changachanga-dev/app/factory"
	"github.com/Robaed/changachanga-dev/app/messaging"
	"github.com/Robaed/changachanga-dev/app/provider"
	"github.com/Robaed/changachanga-dev/app/repository"
	"github.com/Robaed/changachanga-dev/app/retry"
	"github.com/Robaed/changachanga-dev/app/sequence"
	"github.com/Robaed/changachanga-dev/app/service"
	"github.com/Robaed/changachanga-dev/app/types"
	"github.com/Robaed/changachanga-dev/config"

	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  "Start the HTTP (Echo) server for channels, contributions, and provider notifications.",
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) {
	cfg, contributionService, channelService, cleanup := mustCreateServices()
	defer cleanup()

	contributionController := controller.NewContributionController(contributionService)
	channelController := controller.NewChannelController(channelService)

	e := setupHTTPServer(contributionController, channelController, cfg.App.APIKey)

	go func() {
		httpAddr := net.JoinHostPort(cfg.HTTP.Host, cfg.HTTP.Port)
		logrus.WithField("addr", httpAddr).Info("Starting HTTP server")
		if err := e.Start(httpAddr); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("HTTP shutdown error")
	}

	logrus.Info("Server stopped")
}

func setupHTTPServer(
	contributionController *controller.ContributionController,
	channelController *controller.ChannelController,
	notificationAPIKey string,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogUserAgent: true,
		LogError:     true,
		HandleError:  true,
		LogRequestID: true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := logrus.Fields{
				"remote_ip":  v.RemoteIP,
				"host":       v.Host,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"latency_ns": v.Latency.Nanoseconds(),
				"user_agent": v.UserAgent,
			}
			entry := logrus.WithFields(fields)
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			entry.Info("http_request")
			return nil
		},
	}))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(echomiddleware.RequestID())

	e.GET("/health", contributionController.Health)

	channels := e.Group("/channels")
	channels.POST("", channelController.CreateChannel)
	channels.GET("/:channel_no", channelController.GetChannel)
	channels.POST("/:channel_no/invites", channelController.InviteParticipants)
	channels.GET("/:channel_no/invites", channelController.ListInvites)
	channels.POST("/:channel_no/contributions", contributionController.Contribute)

	payments := e.Group("/payments")
	payments.GET("/:request_id", contributionController.GetPaymentRequest)

	notifications := e.Group("/payments/notification")
	notifications.Use(requireAPIKey(notificationAPIKey))
	notifications.POST("", contributionController.HandleProviderNotification)

	return e
}

// requireAPIKey guards the provider notification endpoint. An empty configured
// key disables the check, which is only acceptable in local development.
func requireAPIKey(apiKey string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if apiKey == "" {
				return next(ctx)
			}
			provided := ctx.Request().Header.Get("X-Api-Key")
			if subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
				return ctx.JSON(http.StatusUnauthorized, &types.ErrorResponse{Error: "invalid api key"})
			}
			return next(ctx)
		}
	}
}

func mustCreateServices() (*config.Config, *service.ContributionService, *service.ChannelService, func()) {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := configureLogging(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}

	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		logrus.WithError(err).Fatal("Failed to ping database")
	}

	sequences := sequence.NewGenerator(cfg.Sequence.MaxAttempts)
	paymentRequestRepo := repository.NewPaymentRequestRepository(db, sequences)
	channelRepo := repository.NewChannelRepository(db, sequences)
	channelInviteRepo := repository.NewChannelInviteRepository(db, sequences)

	retryPolicy := retry.Policy{
		MaxAttempts:  cfg.Retry.MaxAttempts,
		InitialDelay: cfg.Retry.InitialDelay,
		MaxDelay:     cfg.Retry.MaxDelay,
	}

	kcbClient := provider.NewKCBClient(provider.KCBConfig{
		ClientID:        cfg.KCB.ClientID,
		ClientSecret:    cfg.KCB.ClientSecret,
		TokenURL:        cfg.KCB.TokenURL,
		StkPushURL:      cfg.KCB.StkPushURL,
		OrgShortCode:    cfg.KCB.OrgShortCode,
		OrgPassKey:      cfg.KCB.OrgPassKey,
		SharedShortCode: cfg.KCB.SharedShortCode,
		CallbackURL:     cfg.KCB.CallbackURL,
		HTTPTimeout:     cfg.KCB.HTTPTimeout,
	}, retryPolicy)

	cyberSourceClient := provider.NewCyberSourceClient(provider.CyberSourceConfig{
		APIKey:      cfg.CyberSource.APIKey,
		MerchantID:  cfg.CyberSource.MerchantID,
		PaymentsURL: cfg.CyberSource.PaymentsURL,
		HTTPTimeout: cfg.CyberSource.HTTPTimeout,
	}, retryPolicy)

	providerRegistry := provider.NewRegistry(kcbClient, cyberSourceClient)

	var smsSender messaging.Sender
	if cfg.SMS.URL != "" {
		smsSender = messaging.NewBongaClient(messaging.BongaConfig{
			URL:         cfg.SMS.URL,
			ClientID:    cfg.SMS.ClientID,
			APIKey:      cfg.SMS.APIKey,
			Secret:      cfg.SMS.Secret,
			ServiceID:   cfg.SMS.ServiceID,
			HTTPTimeout: cfg.SMS.HTTPTimeout,
		}, retryPolicy)
	} else {
		smsSender = &messaging.LogSender{Logger: factory.NewModuleLogger("sms-sender")}
	}

	contributionService := service.NewContributionService(
		paymentRequestRepo,
		channelRepo,
		providerRegistry,
		factory.NewModuleLogger("contributions-service"),
	)
	channelService := service.NewChannelService(
		channelRepo,
		channelInviteRepo,
		smsSender,
		factory.NewModuleLogger("channels-service"),
	)

	cleanup := func() {
		if err := db.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close database")
		}
	}

	return cfg, contributionService, channelService, cleanup
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"strconv"
	"syscall"
	"time"

	"github.com/diwise/iot-bin-telemetry/internal/pkg/application/events"
	"github.com/diwise/iot-bin-telemetry/internal/pkg/application/telemetry"
	"github.com/diwise/iot-bin-telemetry/internal/pkg/infrastructure/logging"
	"github.com/diwise/iot-bin-telemetry/internal/pkg/infrastructure/mqtt"
	"github.com/diwise/iot-bin-telemetry/internal/pkg/infrastructure/repositories/database"
	"github.com/diwise/iot-bin-telemetry/internal/pkg/infrastructure/router"
	"github.com/diwise/iot-bin-telemetry/internal/pkg/infrastructure/tracing"
	"github.com/diwise/iot-bin-telemetry/internal/pkg/presentation/api"
	"github.com/diwise/iot-bin-telemetry/internal/pkg/presentation/webevents"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

const serviceName string = "iot-bin-telemetry"

func main() {
	// a .env file is optional, real environment variables take precedence
	envErr := godotenv.Load()

	flags := parseExternalConfig(defaultFlags())

	serviceVersion := version()
	ctx, logger := logging.NewLogger(context.Background(), serviceName, serviceVersion)
	logger.Info().Msg("starting up ...")

	if envErr != nil {
		logger.Debug().Msg("no .env file loaded")
	}

	if flags[enableTracing] == "true" {
		cleanup, err := tracing.Init(ctx, logger, serviceName, serviceVersion)
		exitIf(err, logger, "failed to init tracing")
		defer cleanup()
	}

	cfg, notifications, err := loadConfigurationFile(flags[configurationFile])
	exitIf(err, logger, "could not load configuration file")

	loc, err := displayLocation(flags[displayTimezoneOffset])
	exitIf(err, logger, "invalid display timezone offset")

	store, err := newStore(logger, flags)
	exitIf(err, logger, "could not create or connect to database")
	defer store.Close()

	sender, err := events.New(notifications)
	exitIf(err, logger, "failed to create event sender")

	web := webevents.New()
	defer web.Shutdown()

	svc := telemetry.New(store, sender, web, cfg, loc)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if flags[mqttBroker] != "" {
		sub := mqtt.NewSubscriber(logger, mqtt.Config{
			Broker:   flags[mqttBroker],
			Topic:    flags[mqttTopic],
			ClientID: flags[mqttClientID],
			Username: flags[mqttUsername],
			Password: flags[mqttPassword],
		}, telemetry.NewUplinkMessageHandler(svc))
		defer sub.Disconnect()

		go func() {
			if err := sub.Connect(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error().Err(err).Msg("mqtt subscriber failed to connect")
			}
		}()
	}

	r := setupRouter(logger, svc, web.Handler(), flags, loc)

	server := &http.Server{
		Addr:              net.JoinHostPort(flags[listenAddress], flags[servicePort]),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		logger.Info().Msg("shutting down ...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shut down http server")
		}
	}()

	logger.Info().Str("addr", server.Addr).Msg("starting to listen for connections")

	err = server.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		exitIf(err, logger, "failed to start request router")
	}
}

func setupRouter(logger zerolog.Logger, svc telemetry.TelemetryService, liveEvents http.Handler, flags flagMap, loc *time.Location) *chi.Mux {
	r := router.New(serviceName)

	return api.RegisterHandlers(logger, r, svc, liveEvents, api.Credentials{
		Username: flags[webhookUsername],
		Password: flags[webhookPassword],
	}, loc)
}

func newStore(logger zerolog.Logger, flags flagMap) (database.Store, error) {
	switch flags[dbDriver] {
	case "sqlite":
		return database.New(database.NewSQLiteConnector(logger, flags[sqlitePath]))
	case "postgres":
		return database.New(database.NewPostgreSQLConnector(logger, database.ConnectorConfig{
			Host:     flags[dbHost],
			Port:     flags[dbPort],
			Username: flags[dbUser],
			DbName:   flags[dbName],
			Password: flags[dbPassword],
			SslMode:  flags[dbSSLMode],
		}))
	}

	return nil, fmt.Errorf("unknown database driver %q", flags[dbDriver])
}

// displayLocation returns a fixed zone offset from UTC by the given number of hours.
func displayLocation(offsetHours string) (*time.Location, error) {
	hours, err := strconv.ParseFloat(offsetHours, 64)
	if err != nil {
		return nil, err
	}

	if hours < -14 || hours > 14 {
		return nil, fmt.Errorf("offset %s is out of range", offsetHours)
	}

	if hours == 0 {
		return time.UTC, nil
	}

	return time.FixedZone(fmt.Sprintf("UTC%+g", hours), int(hours*3600)), nil
}

func version() string {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}

	buildSettings := buildInfo.Settings
	infoMap := map[string]string{}
	for _, s := range buildSettings {
		infoMap[s.Key] = s.Value
	}

	sha := infoMap["vcs.revision"]
	if infoMap["vcs.modified"] == "true" {
		sha += "+"
	}

	return sha
}

func exitIf(err error, logger zerolog.Logger, msg string) {
	if err != nil {
		logger.Error().Err(err).Msg(msg)
		time.Sleep(2 * time.Second)
		os.Exit(1)
	}
}

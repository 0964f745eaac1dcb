package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/diwise/iot-bin-telemetry/internal/pkg/application/replay"
	"github.com/diwise/iot-bin-telemetry/internal/pkg/application/telemetry"
	"github.com/diwise/iot-bin-telemetry/internal/pkg/infrastructure/logging"
	"github.com/diwise/iot-bin-telemetry/internal/pkg/infrastructure/tracing"
	"github.com/diwise/iot-bin-telemetry/pkg/types"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("iot-bin-telemetry/api")

type Credentials struct {
	Username string
	Password string
}

type response struct {
	Status  string          `json:"status,omitempty"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// RegisterHandlers mounts the webhook and dashboard endpoints. Timestamps in
// responses are rendered in loc. liveEvents, when not nil, streams device updates
// as server sent events.
func RegisterHandlers(log zerolog.Logger, router *chi.Mux, svc telemetry.TelemetryService, liveEvents http.Handler, creds Credentials, loc *time.Location) *chi.Mux {
	if loc == nil {
		loc = time.UTC
	}

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.BasicAuth("ttn-webhook", map[string]string{creds.Username: creds.Password}))
		r.Post("/ttn-webhook", ttnWebhookHandler(log, svc))
	})

	router.Post("/benchmark-uplink", benchmarkUplinkHandler(log, svc))
	router.Get("/get_bins", getDashboardHandler(log, svc, loc))

	router.Route("/api/v0", func(r chi.Router) {
		r.Get("/devices", getDevicesHandler(log, svc, loc))
		r.Get("/telemetry", getTelemetryHandler(log, svc, loc))
		r.Get("/metrics", getMetricsHandler(log, svc))
		r.Get("/history", getHistoryHandler(log, svc))
		r.Get("/benchmarks", getBenchmarksHandler(log, svc, loc))

		if liveEvents != nil {
			r.Method(http.MethodGet, "/events", liveEvents)
		}
	})

	return router
}

func ttnWebhookHandler(log zerolog.Logger, svc telemetry.TelemetryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		ctx, span := tracer.Start(r.Context(), "ttn-webhook")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := logging.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		body, err := io.ReadAll(r.Body)
		if err != nil {
			requestLogger.Error().Err(err).Msg("unable to read request body")
			writeJSON(w, http.StatusBadRequest, response{Status: "error", Message: "Malformed uplink"})
			return
		}

		uplink, err := telemetry.ParseUplink(bytes.NewReader(body))
		if err != nil {
			requestLogger.Error().Err(err).Msg("unable to parse uplink")
			writeJSON(w, http.StatusBadRequest, response{Status: "error", Message: "Malformed uplink"})
			return
		}

		requestLogger = requestLogger.With().Str("device_id", uplink.DeviceID()).Logger()
		ctx = logging.NewContextWithLogger(ctx, requestLogger)

		result, err := svc.HandleUplink(ctx, uplink)
		if err != nil {
			writeUplinkError(w, requestLogger, err)
			return
		}

		switch result.Status {
		case telemetry.NoPayload:
			writeJSON(w, http.StatusOK, response{Status: "error", Message: "No decoded payload"})
		case telemetry.OtherUplink:
			writeJSON(w, http.StatusOK, response{Status: "ok", Message: "Other uplink"})
		default:
			// accepted uplinks are echoed back
			writeJSON(w, http.StatusOK, response{Status: "ok", Data: body})
		}
	}
}

func benchmarkUplinkHandler(log zerolog.Logger, svc telemetry.TelemetryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		ctx, span := tracer.Start(r.Context(), "benchmark-uplink")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := logging.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		uplink, err := telemetry.ParseUplink(r.Body)
		if err != nil {
			requestLogger.Error().Err(err).Msg("unable to parse uplink")
			writeJSON(w, http.StatusBadRequest, response{Status: "error", Message: "Malformed uplink"})
			return
		}

		result, err := svc.HandleBenchmarkUplink(ctx, uplink)
		if err != nil {
			writeUplinkError(w, requestLogger, err)
			return
		}

		if result.Status == telemetry.NoPayload {
			writeJSON(w, http.StatusOK, response{Status: "error", Message: "No decoded payload"})
			return
		}

		writeJSON(w, http.StatusOK, response{Status: "ok", Message: "Other uplink"})
	}
}

func writeUplinkError(w http.ResponseWriter, log zerolog.Logger, err error) {
	switch {
	case errors.Is(err, replay.ErrReplayDetected):
		log.Warn().Err(err).Msg("uplink rejected")
		writeJSON(w, http.StatusForbidden, response{Error: "Replay Attack Detected!"})
	case errors.Is(err, telemetry.ErrMalformedUplink):
		log.Error().Err(err).Msg("malformed uplink")
		writeJSON(w, http.StatusBadRequest, response{Status: "error", Message: "Malformed uplink"})
	default:
		log.Error().Err(err).Msg("failed to handle uplink")
		writeJSON(w, http.StatusInternalServerError, response{Status: "error", Message: "Internal error"})
	}
}

func getDashboardHandler(log zerolog.Logger, svc telemetry.TelemetryService, loc *time.Location) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		ctx, span := tracer.Start(r.Context(), "get-dashboard")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := logging.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		dashboard, err := svc.GetDashboard(ctx)
		if err != nil {
			requestLogger.Error().Err(err).Msg("unable to build dashboard")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		dashboard.Bins = localizeDevices(dashboard.Bins, loc)

		writeJSON(w, http.StatusOK, dashboard)
	}
}

func getDevicesHandler(log zerolog.Logger, svc telemetry.TelemetryService, loc *time.Location) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		ctx, span := tracer.Start(r.Context(), "get-devices")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := logging.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		devices, err := svc.GetLatest(ctx)
		if err != nil {
			requestLogger.Error().Err(err).Msg("unable to fetch devices")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, localizeDevices(devices, loc))
	}
}

func getTelemetryHandler(log zerolog.Logger, svc telemetry.TelemetryService, loc *time.Location) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		ctx, span := tracer.Start(r.Context(), "get-telemetry")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := logging.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		rows, err := svc.GetAllTelemetry(ctx)
		if err != nil {
			requestLogger.Error().Err(err).Msg("unable to fetch telemetry")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		deviceID := r.URL.Query().Get("device_id")
		if deviceID != "" {
			rows = lo.Filter(rows, func(t types.Telemetry, _ int) bool {
				return t.DeviceID == deviceID
			})
		}

		writeJSON(w, http.StatusOK, lo.Map(rows, func(t types.Telemetry, _ int) types.Telemetry {
			t.ReceivedAt = t.ReceivedAt.In(loc)
			return t
		}))
	}
}

func getMetricsHandler(log zerolog.Logger, svc telemetry.TelemetryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		ctx, span := tracer.Start(r.Context(), "get-metrics")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := logging.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		metrics, err := svc.GetGeneralMetrics(ctx)
		if err != nil {
			requestLogger.Error().Err(err).Msg("unable to compute metrics")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, metrics)
	}
}

func getHistoryHandler(log zerolog.Logger, svc telemetry.TelemetryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		ctx, span := tracer.Start(r.Context(), "get-history")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := logging.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		history, err := svc.GetFullBinHistory(ctx)
		if err != nil {
			requestLogger.Error().Err(err).Msg("unable to compute full bin history")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, history)
	}
}

func getBenchmarksHandler(log zerolog.Logger, svc telemetry.TelemetryService, loc *time.Location) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		ctx, span := tracer.Start(r.Context(), "get-benchmarks")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := logging.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		metrics, err := svc.GetBenchmarkMetrics(ctx)
		if err != nil {
			requestLogger.Error().Err(err).Msg("unable to fetch benchmark metrics")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, lo.Map(metrics, func(m types.BenchmarkMetric, _ int) types.BenchmarkMetric {
			m.CreatedAt = m.CreatedAt.In(loc)
			return m
		}))
	}
}

func localizeDevices(devices []types.Device, loc *time.Location) []types.Device {
	return lo.Map(devices, func(d types.Device, _ int) types.Device {
		d.LastSeenAt = d.LastSeenAt.In(loc)
		return d
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(b)
}

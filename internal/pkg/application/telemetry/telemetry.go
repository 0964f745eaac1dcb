package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/diwise/iot-bin-telemetry/internal/pkg/application/anomaly"
	"github.com/diwise/iot-bin-telemetry/internal/pkg/application/events"
	"github.com/diwise/iot-bin-telemetry/internal/pkg/application/replay"
	"github.com/diwise/iot-bin-telemetry/internal/pkg/infrastructure/logging"
	"github.com/diwise/iot-bin-telemetry/internal/pkg/infrastructure/repositories/database"
	"github.com/diwise/iot-bin-telemetry/internal/pkg/infrastructure/tracing"
	"github.com/diwise/iot-bin-telemetry/pkg/types"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("iot-bin-telemetry/telemetry")

type Status string

const (
	Accepted    Status = "accepted"
	NoPayload   Status = "no_payload"
	OtherUplink Status = "other_uplink"
)

type Result struct {
	Status    Status
	Anomalies anomaly.Labels
}

//go:generate moq -rm -out telemetry_mock.go . TelemetryService
type TelemetryService interface {
	Ingest(ctx context.Context, deviceID string, receivedAt time.Time, reading types.Reading) (Result, error)
	HandleUplink(ctx context.Context, uplink Uplink) (Result, error)
	HandleBenchmarkUplink(ctx context.Context, uplink Uplink) (Result, error)

	GetLatest(ctx context.Context) ([]types.Device, error)
	GetGeneralMetrics(ctx context.Context) (types.GeneralMetrics, error)
	GetFullBinHistory(ctx context.Context) ([]types.HourlyCount, error)
	GetAllTelemetry(ctx context.Context) ([]types.Telemetry, error)
	GetDashboard(ctx context.Context) (types.Dashboard, error)
	GetBenchmarkMetrics(ctx context.Context) ([]types.BenchmarkMetric, error)
}

// Publisher receives the current state of a device after every accepted reading.
type Publisher interface {
	Publish(event string, data any) error
}

type telemetrySvc struct {
	store      database.Store
	classifier anomaly.Classifier
	guard      replay.Guard
	sender     events.EventSender
	publisher  Publisher
	cfg        Config
	loc        *time.Location
	now        func() time.Time
}

// New wires the ingestion and aggregation paths to a shared store. Hour buckets in
// the full bin history follow the wall clock of loc. A nil sender disables
// anomaly notifications and a nil publisher disables live updates.
func New(store database.Store, sender events.EventSender, publisher Publisher, cfg Config, loc *time.Location) TelemetryService {
	return newService(store, sender, publisher, cfg, loc, time.Now)
}

func newService(store database.Store, sender events.EventSender, publisher Publisher, cfg Config, loc *time.Location, now func() time.Time) *telemetrySvc {
	if loc == nil {
		loc = time.UTC
	}

	return &telemetrySvc{
		store:      store,
		classifier: anomaly.NewClassifier(cfg.Anomaly),
		guard:      replay.NewGuard(cfg.ReplayMaxAge),
		sender:     sender,
		publisher:  publisher,
		cfg:        cfg,
		loc:        loc,
		now:        now,
	}
}

func (svc *telemetrySvc) Ingest(ctx context.Context, deviceID string, receivedAt time.Time, reading types.Reading) (Result, error) {
	var err error

	ctx, span := tracer.Start(ctx, "ingest")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	logger := logging.GetLoggerFromContext(ctx).With().Str("device_id", deviceID).Logger()
	ctx = logging.NewContextWithLogger(ctx, logger)

	// timestamptz keeps microseconds, both stores must agree on the value
	receivedAt = receivedAt.UTC().Truncate(time.Microsecond)

	if err = svc.guard.Check(receivedAt, svc.now()); err != nil {
		logger.Warn().Time("received_at", receivedAt).Msg("stale uplink rejected")
		return Result{}, err
	}

	var labels anomaly.Labels
	var device database.Device

	err = svc.store.WithinTransaction(ctx, func(tx database.Store) error {
		var txErr error
		labels, device, txErr = svc.ingest(ctx, tx, deviceID, receivedAt, reading)
		return txErr
	})
	if err != nil {
		logger.Error().Err(err).Msg("failed to ingest reading")
		return Result{}, err
	}

	if !labels.Empty() {
		logger.Info().Str("anomaly", labels.String()).Msg("anomaly detected")
		svc.notify(ctx, deviceID, receivedAt, reading, labels)
	}

	if svc.publisher != nil {
		if pubErr := svc.publisher.Publish(types.BinUpdatedEventType, svc.toDevice(device, svc.now())); pubErr != nil {
			logger.Error().Err(pubErr).Msg("failed to publish device update")
		}
	}

	return Result{Status: Accepted, Anomalies: labels}, nil
}

func (svc *telemetrySvc) ingest(ctx context.Context, tx database.Store, deviceID string, receivedAt time.Time, reading types.Reading) (anomaly.Labels, database.Device, error) {
	var fixed *types.Location

	device, err := tx.GetDevice(ctx, deviceID)
	if err != nil {
		if !errors.Is(err, database.ErrDeviceNotFound) {
			return anomaly.Labels{}, database.Device{}, err
		}

		claim := newDeviceRow(deviceID, receivedAt, reading, anomaly.NoAnomaly)
		claim.FixedLatitude = reading.Location.Latitude
		claim.FixedLongitude = reading.Location.Longitude

		created, err := tx.CreateDeviceIfNotExists(ctx, &claim)
		if err != nil {
			return anomaly.Labels{}, database.Device{}, err
		}

		if !created {
			// another ingestion registered the device first
			device, err = tx.GetDevice(ctx, deviceID)
			if err != nil {
				return anomaly.Labels{}, database.Device{}, err
			}
			fixed = &types.Location{Latitude: device.FixedLatitude, Longitude: device.FixedLongitude}
		}
	} else {
		fixed = &types.Location{Latitude: device.FixedLatitude, Longitude: device.FixedLongitude}
	}

	labels := svc.classifier.Classify(reading, fixed)

	row := newDeviceRow(deviceID, receivedAt, reading, labels.String())
	row.FixedLatitude, row.FixedLongitude = reading.Location.Latitude, reading.Location.Longitude
	if fixed != nil {
		row.FixedLatitude, row.FixedLongitude = fixed.Latitude, fixed.Longitude
	}

	if err := tx.UpsertDevice(ctx, &row); err != nil {
		return anomaly.Labels{}, database.Device{}, err
	}

	t := database.Telemetry{
		DeviceID:           deviceID,
		ReceivedAt:         receivedAt,
		Temperature:        reading.Temperature,
		FillLevel:          reading.FillLevel,
		Humidity:           reading.Humidity,
		SmokeConcentration: reading.SmokeConcentration,
		Latitude:           reading.Location.Latitude,
		Longitude:          reading.Location.Longitude,
	}
	if err := tx.AppendTelemetry(ctx, &t); err != nil {
		return anomaly.Labels{}, database.Device{}, err
	}

	return labels, row, nil
}

func (svc *telemetrySvc) notify(ctx context.Context, deviceID string, receivedAt time.Time, reading types.Reading, labels anomaly.Labels) {
	if svc.sender == nil {
		return
	}

	err := svc.sender.Send(ctx, types.AnomalyDetected{
		DeviceID:  deviceID,
		Anomalies: labels.Strings(),
		Reading:   reading,
		Timestamp: receivedAt.UTC(),
	})
	if err != nil {
		logger := logging.GetLoggerFromContext(ctx)
		logger.Error().Err(err).Msg("failed to send anomaly notification")
	}
}

func (svc *telemetrySvc) HandleUplink(ctx context.Context, uplink Uplink) (Result, error) {
	receivedAt, err := uplink.ReceivedAt()
	if err != nil {
		return Result{}, err
	}

	if err := svc.guard.Check(receivedAt, svc.now()); err != nil {
		return Result{}, err
	}

	if !uplink.HasDecodedPayload() {
		return Result{Status: NoPayload}, nil
	}

	reading, ok := uplink.Reading()
	if !ok {
		logger := logging.GetLoggerFromContext(ctx)
		logger.Debug().Str("device_id", uplink.DeviceID()).Msg("uplink without a complete sensor reading ignored")
		return Result{Status: OtherUplink}, nil
	}

	return svc.Ingest(ctx, uplink.DeviceID(), receivedAt, reading)
}

// HandleBenchmarkUplink records the latency between the send time reported by the
// device and the time of receipt.
func (svc *telemetrySvc) HandleBenchmarkUplink(ctx context.Context, uplink Uplink) (Result, error) {
	var err error

	ctx, span := tracer.Start(ctx, "benchmark-uplink")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	receivedAt, err := uplink.ReceivedAt()
	if err != nil {
		return Result{}, err
	}

	now := svc.now()

	if err = svc.guard.Check(receivedAt, now); err != nil {
		return Result{}, err
	}

	if !uplink.HasDecodedPayload() {
		return Result{Status: NoPayload}, nil
	}

	startTime, ok := uplink.StartTime()
	if !ok {
		return Result{Status: OtherUplink}, nil
	}

	latency := float64(now.Sub(startTime)) / float64(time.Millisecond)

	if err = svc.store.AddBenchmarkMetric(ctx, latency); err != nil {
		return Result{}, err
	}

	logger := logging.GetLoggerFromContext(ctx)
	logger.Debug().Str("device_id", uplink.DeviceID()).Float64("latency_ms", latency).Msg("benchmark uplink recorded")

	return Result{Status: OtherUplink}, nil
}

func (svc *telemetrySvc) GetBenchmarkMetrics(ctx context.Context) ([]types.BenchmarkMetric, error) {
	rows, err := svc.store.GetBenchmarkMetrics(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not fetch benchmark metrics: %w", err)
	}

	metrics := make([]types.BenchmarkMetric, 0, len(rows))
	for _, r := range rows {
		metrics = append(metrics, types.BenchmarkMetric{
			ID:        r.ID,
			LatencyMs: r.LatencyMs,
			CreatedAt: r.CreatedAt.UTC(),
		})
	}

	return metrics, nil
}

func newDeviceRow(deviceID string, receivedAt time.Time, reading types.Reading, labels string) database.Device {
	return database.Device{
		DeviceID:           deviceID,
		LastSeenAt:         receivedAt,
		Temperature:        reading.Temperature,
		FillLevel:          reading.FillLevel,
		Humidity:           reading.Humidity,
		SmokeConcentration: reading.SmokeConcentration,
		Latitude:           reading.Location.Latitude,
		Longitude:          reading.Location.Longitude,
		Anomaly:            labels,
	}
}

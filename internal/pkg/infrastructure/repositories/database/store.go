package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/diwise/iot-bin-telemetry/internal/pkg/infrastructure/logging"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrDeviceNotFound = errors.New("device not found")
var ErrStorageFailure = errors.New("storage failure")

type Store interface {
	// WithinTransaction runs fn against a Store bound to a single transaction.
	// The transaction is committed if fn returns nil and rolled back otherwise.
	WithinTransaction(ctx context.Context, fn func(tx Store) error) error

	GetDevice(ctx context.Context, deviceID string) (Device, error)
	GetDevices(ctx context.Context) ([]Device, error)
	CreateDeviceIfNotExists(ctx context.Context, device *Device) (bool, error)
	UpsertDevice(ctx context.Context, device *Device) error

	AppendTelemetry(ctx context.Context, t *Telemetry) error
	GetTelemetry(ctx context.Context) ([]Telemetry, error)
	// GetFullTelemetryBetween returns readings above fillThreshold received in [from, to).
	GetFullTelemetryBetween(ctx context.Context, from, to time.Time, fillThreshold float64) ([]Telemetry, error)

	AddBenchmarkMetric(ctx context.Context, latencyMs float64) error
	GetBenchmarkMetrics(ctx context.Context) ([]BenchmarkMetric, error)

	Close() error
}

type store struct {
	db *gorm.DB
}

func New(connect ConnectorFunc) (Store, error) {
	impl, log, err := connect()
	if err != nil {
		return nil, err
	}

	err = impl.AutoMigrate(&Device{}, &Telemetry{}, &BenchmarkMetric{})
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database schema: %w", err)
	}

	log.Debug().Msg("database schema migrated")

	return &store{
		db: impl,
	}, nil
}

func storageFailure(err error) error {
	return fmt.Errorf("%w: %w", ErrStorageFailure, err)
}

func (s *store) WithinTransaction(ctx context.Context, fn func(tx Store) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&store{db: tx})
	})
	if err != nil && !errors.Is(err, ErrStorageFailure) && !errors.Is(err, ErrDeviceNotFound) {
		// begin and commit errors come straight from the driver
		return storageFailure(err)
	}
	return err
}

func (s *store) GetDevice(ctx context.Context, deviceID string) (Device, error) {
	device := Device{}

	result := s.db.WithContext(ctx).Where(&Device{DeviceID: deviceID}).First(&device)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Device{}, ErrDeviceNotFound
		}

		logger := logging.GetLoggerFromContext(ctx)
		logger.Error().Err(result.Error).Str("device_id", deviceID).Msg("gorm error")

		return Device{}, storageFailure(result.Error)
	}

	return device, nil
}

func (s *store) GetDevices(ctx context.Context) ([]Device, error) {
	var devices []Device

	result := s.db.WithContext(ctx).Order("device_id").Find(&devices)
	if result.Error != nil {
		return nil, storageFailure(result.Error)
	}

	return devices, nil
}

// CreateDeviceIfNotExists inserts the device unless a row with the same device id
// already exists. It reports whether this call created the row.
func (s *store) CreateDeviceIfNotExists(ctx context.Context, device *Device) (bool, error) {
	d := *device
	d.ID = 0
	d.LastSeenAt = d.LastSeenAt.UTC()

	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "device_id"}},
		DoNothing: true,
	}).Create(&d)
	if result.Error != nil {
		return false, storageFailure(result.Error)
	}

	return result.RowsAffected == 1, nil
}

// UpsertDevice inserts or updates the current state of a device keyed on device id.
// The fixed location of an existing row is never overwritten.
func (s *store) UpsertDevice(ctx context.Context, device *Device) error {
	d := *device
	d.ID = 0
	d.LastSeenAt = d.LastSeenAt.UTC()

	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "device_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"last_seen_at",
			"temperature",
			"fill_level",
			"humidity",
			"smoke_concentration",
			"latitude",
			"longitude",
			"anomaly",
			"updated_at",
		}),
	}).Create(&d)
	if result.Error != nil {
		return storageFailure(result.Error)
	}

	return nil
}

func (s *store) AppendTelemetry(ctx context.Context, t *Telemetry) error {
	t.ReceivedAt = t.ReceivedAt.UTC()

	result := s.db.WithContext(ctx).Create(t)
	if result.Error != nil {
		return storageFailure(result.Error)
	}

	return nil
}

func (s *store) GetTelemetry(ctx context.Context) ([]Telemetry, error) {
	var rows []Telemetry

	result := s.db.WithContext(ctx).Order("received_at").Order("id").Find(&rows)
	if result.Error != nil {
		return nil, storageFailure(result.Error)
	}

	return rows, nil
}

func (s *store) GetFullTelemetryBetween(ctx context.Context, from, to time.Time, fillThreshold float64) ([]Telemetry, error) {
	var rows []Telemetry

	result := s.db.WithContext(ctx).
		Where("received_at >= ? AND received_at < ? AND fill_level > ?", from.UTC(), to.UTC(), fillThreshold).
		Order("received_at DESC").
		Find(&rows)
	if result.Error != nil {
		return nil, storageFailure(result.Error)
	}

	return rows, nil
}

func (s *store) AddBenchmarkMetric(ctx context.Context, latencyMs float64) error {
	result := s.db.WithContext(ctx).Create(&BenchmarkMetric{LatencyMs: latencyMs})
	if result.Error != nil {
		return storageFailure(result.Error)
	}

	return nil
}

func (s *store) GetBenchmarkMetrics(ctx context.Context) ([]BenchmarkMetric, error) {
	var metrics []BenchmarkMetric

	result := s.db.WithContext(ctx).Order("id").Find(&metrics)
	if result.Error != nil {
		return nil, storageFailure(result.Error)
	}

	return metrics, nil
}

func (s *store) Close() error {
	sqldb, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqldb.Close()
}

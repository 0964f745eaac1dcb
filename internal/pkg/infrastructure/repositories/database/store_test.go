package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
)

func TestCreateDeviceIfNotExists(t *testing.T) {
	is, ctx, s := testSetupStore(t)
	now := time.Now().UTC()

	created, err := s.CreateDeviceIfNotExists(ctx, newDevice("bin-1", 1.0, 1.0, now))
	is.NoErr(err)
	is.True(created)

	created, err = s.CreateDeviceIfNotExists(ctx, newDevice("bin-1", 2.0, 2.0, now))
	is.NoErr(err)
	is.True(!created)

	d, err := s.GetDevice(ctx, "bin-1")
	is.NoErr(err)
	is.Equal(d.FixedLatitude, 1.0)
	is.Equal(d.FixedLongitude, 1.0)
}

func TestGetUnknownDevice(t *testing.T) {
	is, ctx, s := testSetupStore(t)

	_, err := s.GetDevice(ctx, "nosuchdevice")

	is.True(errors.Is(err, ErrDeviceNotFound))
}

func TestUpsertNeverOverwritesFixedLocation(t *testing.T) {
	is, ctx, s := testSetupStore(t)
	now := time.Now().UTC()

	is.NoErr(s.UpsertDevice(ctx, newDevice("bin-1", 1.0, 1.0, now)))

	moved := newDevice("bin-1", 5.0, 5.0, now.Add(time.Minute))
	moved.Latitude = 1.01
	moved.Longitude = 1.02
	moved.FillLevel = 90
	moved.Anomaly = "Location"
	is.NoErr(s.UpsertDevice(ctx, moved))

	devices, err := s.GetDevices(ctx)
	is.NoErr(err)
	is.Equal(len(devices), 1)

	d := devices[0]
	is.Equal(d.FixedLatitude, 1.0)
	is.Equal(d.FixedLongitude, 1.0)
	is.Equal(d.Latitude, 1.01)
	is.Equal(d.Longitude, 1.02)
	is.Equal(d.FillLevel, 90.0)
	is.Equal(d.Anomaly, "Location")
	is.True(d.LastSeenAt.Equal(now.Add(time.Minute)))
}

func TestTelemetryRoundTrip(t *testing.T) {
	is, ctx, s := testSetupStore(t)
	sgt := time.FixedZone("SGT", 8*60*60)
	receivedAt := time.Date(2025, 3, 1, 18, 30, 15, 123456000, sgt)

	row := &Telemetry{
		DeviceID:           "bin-1",
		ReceivedAt:         receivedAt,
		Temperature:        28.37,
		FillLevel:          81,
		Humidity:           64.123456789,
		SmokeConcentration: 0.1 + 0.2,
		Latitude:           1.370653,
		Longitude:          103.8268,
	}
	is.NoErr(s.AppendTelemetry(ctx, row))

	rows, err := s.GetTelemetry(ctx)
	is.NoErr(err)
	is.Equal(len(rows), 1)

	r := rows[0]
	is.Equal(r.DeviceID, "bin-1")
	is.True(r.ReceivedAt.Equal(receivedAt))
	is.Equal(r.ReceivedAt.UTC().Hour(), 10)
	is.Equal(r.Temperature, 28.37)
	is.Equal(r.FillLevel, 81.0)
	is.Equal(r.Humidity, 64.123456789)
	is.Equal(r.SmokeConcentration, 0.1+0.2)
	is.Equal(r.Latitude, 1.370653)
	is.Equal(r.Longitude, 103.8268)
}

func TestTelemetryIsOrderedByReceivedAtThenInsertion(t *testing.T) {
	is, ctx, s := testSetupStore(t)
	t0 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	is.NoErr(s.AppendTelemetry(ctx, &Telemetry{DeviceID: "b", ReceivedAt: t0.Add(time.Minute)}))
	is.NoErr(s.AppendTelemetry(ctx, &Telemetry{DeviceID: "a", ReceivedAt: t0}))
	is.NoErr(s.AppendTelemetry(ctx, &Telemetry{DeviceID: "c", ReceivedAt: t0}))

	rows, err := s.GetTelemetry(ctx)
	is.NoErr(err)
	is.Equal(rows[0].DeviceID, "a")
	is.Equal(rows[1].DeviceID, "c")
	is.Equal(rows[2].DeviceID, "b")
}

func TestGetFullTelemetryBetween(t *testing.T) {
	is, ctx, s := testSetupStore(t)
	from := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	to := from.Add(3 * time.Hour)

	is.NoErr(s.AppendTelemetry(ctx, &Telemetry{DeviceID: "a", ReceivedAt: from.Add(-time.Millisecond), FillLevel: 95}))
	is.NoErr(s.AppendTelemetry(ctx, &Telemetry{DeviceID: "b", ReceivedAt: from, FillLevel: 95}))
	is.NoErr(s.AppendTelemetry(ctx, &Telemetry{DeviceID: "c", ReceivedAt: from.Add(500 * time.Millisecond), FillLevel: 80}))
	is.NoErr(s.AppendTelemetry(ctx, &Telemetry{DeviceID: "d", ReceivedAt: from.Add(2 * time.Hour), FillLevel: 80.5}))
	is.NoErr(s.AppendTelemetry(ctx, &Telemetry{DeviceID: "e", ReceivedAt: to, FillLevel: 99}))
	is.NoErr(s.AppendTelemetry(ctx, &Telemetry{DeviceID: "f", ReceivedAt: to.Add(19 * time.Hour), FillLevel: 99}))

	rows, err := s.GetFullTelemetryBetween(ctx, from, to, 80)
	is.NoErr(err)
	is.Equal(len(rows), 2)
	is.Equal(rows[0].DeviceID, "d")
	is.Equal(rows[1].DeviceID, "b")
}

func TestThatFailedTransactionIsRolledBack(t *testing.T) {
	is, ctx, s := testSetupStore(t)
	errAbort := errors.New("abort")

	err := s.WithinTransaction(ctx, func(tx Store) error {
		if err := tx.UpsertDevice(ctx, newDevice("bin-1", 1.0, 1.0, time.Now())); err != nil {
			return err
		}
		if err := tx.AppendTelemetry(ctx, &Telemetry{DeviceID: "bin-1", ReceivedAt: time.Now()}); err != nil {
			return err
		}
		return errAbort
	})
	is.True(errors.Is(err, errAbort))

	devices, err := s.GetDevices(ctx)
	is.NoErr(err)
	is.Equal(len(devices), 0)

	rows, err := s.GetTelemetry(ctx)
	is.NoErr(err)
	is.Equal(len(rows), 0)
}

func TestBenchmarkMetrics(t *testing.T) {
	is, ctx, s := testSetupStore(t)

	is.NoErr(s.AddBenchmarkMetric(ctx, 1234.5))
	is.NoErr(s.AddBenchmarkMetric(ctx, 99.25))

	metrics, err := s.GetBenchmarkMetrics(ctx)
	is.NoErr(err)
	is.Equal(len(metrics), 2)
	is.Equal(metrics[0].LatencyMs, 1234.5)
	is.Equal(metrics[1].LatencyMs, 99.25)
}

func TestSQLiteFileDSN(t *testing.T) {
	is := is.New(t)

	dsn, err := sqliteDSN("")
	is.NoErr(err)
	is.Equal(dsn, "file::memory:")

	dsn, err = sqliteDSN("file:bins.db?cache=shared")
	is.NoErr(err)
	is.Equal(dsn, "file:bins.db?cache=shared&_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL&_txlock=immediate")

	dsn, err = sqliteDSN(t.TempDir() + "/data/bins.db")
	is.NoErr(err)
	is.True(len(dsn) > 0)
}

func testSetupStore(t *testing.T) (*is.I, context.Context, Store) {
	is := is.New(t)
	ctx := context.Background()

	s, err := New(NewSQLiteConnector(zerolog.Nop(), ""))
	is.NoErr(err)

	t.Cleanup(func() { s.Close() })

	return is, ctx, s
}

func newDevice(deviceID string, lat, lon float64, seen time.Time) *Device {
	return &Device{
		DeviceID:       deviceID,
		FixedLatitude:  lat,
		FixedLongitude: lon,
		LastSeenAt:     seen,
		Latitude:       lat,
		Longitude:      lon,
		Anomaly:        "No",
	}
}

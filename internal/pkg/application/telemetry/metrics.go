package telemetry

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/diwise/iot-bin-telemetry/internal/pkg/application/anomaly"
	"github.com/diwise/iot-bin-telemetry/internal/pkg/infrastructure/repositories/database"
	"github.com/diwise/iot-bin-telemetry/internal/pkg/infrastructure/tracing"
	"github.com/diwise/iot-bin-telemetry/pkg/types"
	"github.com/samber/lo"
)

func (svc *telemetrySvc) GetLatest(ctx context.Context) ([]types.Device, error) {
	rows, err := svc.store.GetDevices(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not fetch devices: %w", err)
	}

	now := svc.now()

	return lo.Map(rows, func(d database.Device, _ int) types.Device {
		return svc.toDevice(d, now)
	}), nil
}

func (svc *telemetrySvc) toDevice(d database.Device, now time.Time) types.Device {
	return types.Device{
		DeviceID: d.DeviceID,
		FixedLocation: types.Location{
			Latitude:  d.FixedLatitude,
			Longitude: d.FixedLongitude,
		},
		LastSeenAt: d.LastSeenAt.UTC(),
		LastReading: types.Reading{
			Temperature:        d.Temperature,
			FillLevel:          d.FillLevel,
			Humidity:           d.Humidity,
			SmokeConcentration: d.SmokeConcentration,
			Location: types.Location{
				Latitude:  d.Latitude,
				Longitude: d.Longitude,
			},
		},
		Anomaly: d.Anomaly,
		Active:  now.Sub(d.LastSeenAt) < svc.cfg.ActiveWindow,
	}
}

func (svc *telemetrySvc) GetGeneralMetrics(ctx context.Context) (types.GeneralMetrics, error) {
	var err error

	ctx, span := tracer.Start(ctx, "general-metrics")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	devices, err := svc.GetLatest(ctx)
	if err != nil {
		return types.GeneralMetrics{}, err
	}

	return svc.generalMetrics(devices), nil
}

func (svc *telemetrySvc) generalMetrics(devices []types.Device) types.GeneralMetrics {
	active := lo.Filter(devices, func(d types.Device, _ int) bool {
		return d.Active
	})

	full := lo.CountBy(active, func(d types.Device) bool {
		return d.LastReading.FillLevel > svc.cfg.FullThreshold
	})

	anomalous := lo.CountBy(active, func(d types.Device) bool {
		return !anomaly.ParseLabels(d.Anomaly).Empty()
	})

	m := types.GeneralMetrics{
		TotalDevices:    len(devices),
		ActiveDevices:   len(active),
		InactiveDevices: len(devices) - len(active),
		FullDevices:     full,
		AnomalyDevices:  anomalous,
	}

	if m.ActiveDevices > 0 {
		m.FullBinsPercent = int(math.Round(100 * float64(full) / float64(m.ActiveDevices)))
	}

	return m
}

// GetFullBinHistory counts, per wall clock hour, the distinct devices that reported
// a fill level above the full threshold. The current hour comes first.
func (svc *telemetrySvc) GetFullBinHistory(ctx context.Context) ([]types.HourlyCount, error) {
	var err error

	ctx, span := tracer.Start(ctx, "full-bin-history")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	now := svc.now().In(svc.loc)
	currentHour := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 0, 0, 0, svc.loc)
	since := currentHour.Add(-time.Duration(svc.cfg.HistoryHours-1) * time.Hour)
	until := currentHour.Add(time.Hour)

	rows, err := svc.store.GetFullTelemetryBetween(ctx, since, until, svc.cfg.FullThreshold)
	if err != nil {
		return nil, fmt.Errorf("could not fetch full bin history: %w", err)
	}

	devicesPerHour := lo.GroupBy(rows, func(t database.Telemetry) string {
		return hourKey(t.ReceivedAt.In(svc.loc))
	})

	history := make([]types.HourlyCount, 0, svc.cfg.HistoryHours)
	for i := range svc.cfg.HistoryHours {
		key := hourKey(currentHour.Add(-time.Duration(i) * time.Hour))

		deviceIDs := lo.Uniq(lo.Map(devicesPerHour[key], func(t database.Telemetry, _ int) string {
			return t.DeviceID
		}))

		history = append(history, types.HourlyCount{Hour: key, FullBins: len(deviceIDs)})
	}

	return history, nil
}

func hourKey(t time.Time) string {
	return fmt.Sprintf("%02d", t.Hour())
}

func (svc *telemetrySvc) GetAllTelemetry(ctx context.Context) ([]types.Telemetry, error) {
	rows, err := svc.store.GetTelemetry(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not fetch telemetry: %w", err)
	}

	return lo.Map(rows, func(t database.Telemetry, _ int) types.Telemetry {
		return types.Telemetry{
			ID:         t.ID,
			DeviceID:   t.DeviceID,
			ReceivedAt: t.ReceivedAt.UTC(),
			Reading: types.Reading{
				Temperature:        t.Temperature,
				FillLevel:          t.FillLevel,
				Humidity:           t.Humidity,
				SmokeConcentration: t.SmokeConcentration,
				Location: types.Location{
					Latitude:  t.Latitude,
					Longitude: t.Longitude,
				},
			},
		}
	}), nil
}

// GetDashboard assembles the document polled by the dashboard from one snapshot
// of the device table.
func (svc *telemetrySvc) GetDashboard(ctx context.Context) (types.Dashboard, error) {
	var err error

	ctx, span := tracer.Start(ctx, "dashboard")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	devices, err := svc.GetLatest(ctx)
	if err != nil {
		return types.Dashboard{}, err
	}

	history, err := svc.GetFullBinHistory(ctx)
	if err != nil {
		return types.Dashboard{}, err
	}

	m := svc.generalMetrics(devices)

	return types.Dashboard{
		Bins:            devices,
		TotalBins:       m.TotalDevices,
		ActiveBins:      m.ActiveDevices,
		FullBins:        m.FullDevices,
		FullBinsPercent: m.FullBinsPercent,
		FullBinHistory:  history,
		AnomalyBins:     m.AnomalyDevices,
		InactiveBins:    m.InactiveDevices,
		ActiveBinsGraph: m.ActiveDevices - m.FullDevices,
	}, nil
}

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/diwise/iot-bin-telemetry/internal/pkg/infrastructure/logging"
	"github.com/diwise/iot-bin-telemetry/internal/pkg/infrastructure/tracing"
	"github.com/diwise/iot-bin-telemetry/pkg/types"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
)

// DashboardClient reads the dashboard endpoints of a running iot-bin-telemetry.
type DashboardClient interface {
	GetDashboard(ctx context.Context) (types.Dashboard, error)
	GetDevices(ctx context.Context) ([]types.Device, error)
	GetTelemetry(ctx context.Context, deviceID string) ([]types.Telemetry, error)
}

type dashboardClient struct {
	url        string
	httpClient http.Client
}

var tracer = otel.Tracer("iot-bin-telemetry-client")

func New(serviceUrl string) DashboardClient {
	return &dashboardClient{
		url: strings.TrimSuffix(serviceUrl, "/"),
		httpClient: http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

func (dc *dashboardClient) GetDashboard(ctx context.Context) (types.Dashboard, error) {
	var err error
	ctx, span := tracer.Start(ctx, "get-dashboard")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	dashboard := types.Dashboard{}
	err = dc.get(ctx, "/get_bins", &dashboard)

	return dashboard, err
}

func (dc *dashboardClient) GetDevices(ctx context.Context) ([]types.Device, error) {
	var err error
	ctx, span := tracer.Start(ctx, "get-devices")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	devices := []types.Device{}
	err = dc.get(ctx, "/api/v0/devices", &devices)

	return devices, err
}

// GetTelemetry returns the telemetry history of one device, or of every device
// when deviceID is empty.
func (dc *dashboardClient) GetTelemetry(ctx context.Context, deviceID string) ([]types.Telemetry, error) {
	var err error
	ctx, span := tracer.Start(ctx, "get-telemetry")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	path := "/api/v0/telemetry"
	if deviceID != "" {
		path += "?device_id=" + url.QueryEscape(deviceID)
	}

	rows := []types.Telemetry{}
	err = dc.get(ctx, path, &rows)

	return rows, err
}

func (dc *dashboardClient) get(ctx context.Context, path string, result any) error {
	log := logging.GetLoggerFromContext(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, dc.url+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create http request: %w", err)
	}
	req.Header.Add("Accept", "application/json")

	resp, err := dc.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to retrieve %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Error().Msgf("request to %s failed with status code %d", path, resp.StatusCode)
		return fmt.Errorf("request failed with status code %d", resp.StatusCode)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	err = json.Unmarshal(respBody, result)
	if err != nil {
		return fmt.Errorf("failed to unmarshal response body: %w", err)
	}

	return nil
}

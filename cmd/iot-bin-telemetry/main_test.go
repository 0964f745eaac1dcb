package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/diwise/iot-bin-telemetry/internal/pkg/application/telemetry"
	"github.com/diwise/iot-bin-telemetry/internal/pkg/infrastructure/repositories/database"
	"github.com/diwise/iot-bin-telemetry/pkg/types"
	"github.com/matryer/is"
	"github.com/rs/zerolog"
)

func TestSetup(t *testing.T) {
	is, server := setupTest(t)
	defer server.Close()

	resp, _ := testRequest(is, server, http.MethodGet, "/health", nil, false)

	is.Equal(resp.StatusCode, http.StatusNoContent)
}

func TestThatAcceptedUplinkShowsUpOnDashboard(t *testing.T) {
	is, server := setupTest(t)
	defer server.Close()

	resp, body := testRequest(is, server, http.MethodPost, "/ttn-webhook", strings.NewReader(uplink("bin-1", time.Now(), 90)), true)
	is.Equal(resp.StatusCode, http.StatusOK)
	is.True(strings.HasPrefix(body, `{"status":"ok","data":{"end_device_ids":{"device_id":"bin-1"}`))

	resp, body = testRequest(is, server, http.MethodGet, "/get_bins", nil, false)
	is.Equal(resp.StatusCode, http.StatusOK)

	dashboard := types.Dashboard{}
	is.NoErr(json.Unmarshal([]byte(body), &dashboard))
	is.Equal(dashboard.TotalBins, 1)
	is.Equal(dashboard.ActiveBins, 1)
	is.Equal(dashboard.FullBins, 1)
	is.Equal(dashboard.FullBinsPercent, 100)
	is.Equal(dashboard.FullBinHistory[0].FullBins, 1)
	is.Equal(dashboard.Bins[0].Anomaly, "No")
}

func TestThatStaleUplinkIsRejected(t *testing.T) {
	is, server := setupTest(t)
	defer server.Close()

	resp, body := testRequest(is, server, http.MethodPost, "/ttn-webhook", strings.NewReader(uplink("bin-1", time.Now().Add(-5*time.Minute), 90)), true)
	is.Equal(resp.StatusCode, http.StatusForbidden)
	is.Equal(body, `{"error":"Replay Attack Detected!"}`)

	resp, body = testRequest(is, server, http.MethodGet, "/api/v0/devices", nil, false)
	is.Equal(resp.StatusCode, http.StatusOK)
	is.Equal(body, `[]`)
}

func TestApplyEnvironment(t *testing.T) {
	is := is.New(t)

	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("TTN_WEBHOOK_USERNAME", "ttn")
	t.Setenv("MQTT_BROKER", "")

	flags := applyEnvironment(defaultFlags())

	is.Equal(flags[dbDriver], "postgres")
	is.Equal(flags[webhookUsername], "ttn")
	is.Equal(flags[webhookPassword], "mypassword")
	is.Equal(flags[mqttBroker], "")
	is.Equal(flags[displayTimezoneOffset], "8")
}

func TestDisplayLocation(t *testing.T) {
	is := is.New(t)

	loc, err := displayLocation("8")
	is.NoErr(err)
	_, offset := time.Date(2025, 3, 1, 0, 0, 0, 0, loc).Zone()
	is.Equal(offset, 8*60*60)

	loc, err = displayLocation("5.5")
	is.NoErr(err)
	_, offset = time.Date(2025, 3, 1, 0, 0, 0, 0, loc).Zone()
	is.Equal(offset, 5*60*60+30*60)

	loc, err = displayLocation("0")
	is.NoErr(err)
	is.Equal(loc, time.UTC)

	_, err = displayLocation("eight")
	is.True(err != nil)
}

func TestLoadConfigurationFile(t *testing.T) {
	is := is.New(t)

	cfg, notifications, err := loadConfigurationFile(filepath.Join(t.TempDir(), "missing.yaml"))
	is.NoErr(err)
	is.Equal(cfg, telemetry.DefaultConfig())
	is.True(notifications == nil)

	path := filepath.Join(t.TempDir(), "config.yaml")
	is.NoErr(os.WriteFile(path, []byte(configYaml), 0o644))

	cfg, notifications, err = loadConfigurationFile(path)
	is.NoErr(err)
	is.Equal(cfg.FullThreshold, 75.0)
	is.Equal(len(notifications.Notifications), 1)
}

func TestUnknownDatabaseDriver(t *testing.T) {
	is := is.New(t)

	flags := defaultFlags()
	flags[dbDriver] = "mysql"

	_, err := newStore(zerolog.Nop(), flags)
	is.True(err != nil)
}

const configYaml string = `
policy:
  fullThreshold: 75
notifications:
  - id: bin-anomalies
    name: Bin anomaly alerts
    type: diwise.bin.anomalydetected
    subscribers:
    - endpoint: http://api-notification:8990
`

func setupTest(t *testing.T) (*is.I, *httptest.Server) {
	is := is.New(t)
	log := zerolog.Nop()

	store, err := database.New(database.NewSQLiteConnector(log, ""))
	is.NoErr(err)

	svc := telemetry.New(store, nil, nil, telemetry.DefaultConfig(), time.UTC)
	r := setupRouter(log, svc, nil, defaultFlags(), time.UTC)

	return is, httptest.NewServer(r)
}

func uplink(deviceID string, receivedAt time.Time, fillLevel float64) string {
	return fmt.Sprintf(`{
		"end_device_ids": {"device_id": %q},
		"uplink_message": {
			"received_at": %q,
			"decoded_payload": {"temperature": 21.5, "fill_level": %g, "humidity": 60, "smoke_conc": 3, "lat": 1.3521, "lon": 103.8198}
		}
	}`, deviceID, receivedAt.UTC().Format(time.RFC3339Nano), fillLevel)
}

func testRequest(is *is.I, ts *httptest.Server, method, path string, body io.Reader, withAuth bool) (*http.Response, string) {
	req, _ := http.NewRequest(method, ts.URL+path, body)
	if withAuth {
		req.SetBasicAuth("myuser", "mypassword")
	}

	resp, err := http.DefaultClient.Do(req)
	is.NoErr(err)
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	return resp, string(respBody)
}

package events

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/diwise/iot-bin-telemetry/pkg/types"
	"github.com/matryer/is"
)

func TestConfig(t *testing.T) {
	is := is.New(t)
	config := strings.NewReader(`
notifications:
  - id: bin-anomalies
    name: Bin anomaly alerts
    type: diwise.bin.anomalydetected
    subscribers:
    - endpoint: http://api-notification:8990
`)
	cfg, err := LoadConfiguration(config)

	is.NoErr(err)
	is.Equal(len(cfg.Notifications), 1)
	is.Equal(cfg.Notifications[0].ID, "bin-anomalies")
	is.Equal(cfg.Notifications[0].Subscribers[0].Endpoint, "http://api-notification:8990")
}

func TestThatEventIsSentToSubscriber(t *testing.T) {
	is := is.New(t)

	var ceType, body string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ceType = r.Header.Get("Ce-Type")
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sender, err := New(&Config{
		Notifications: []Notification{{
			ID:          "bin-anomalies",
			Type:        types.AnomalyDetectedEventType,
			Subscribers: []SubscriberConfig{{Endpoint: server.URL}},
		}},
	})
	is.NoErr(err)

	err = sender.Send(context.Background(), types.AnomalyDetected{
		DeviceID:  "my-bin-2",
		Anomalies: []string{"Smoke"},
		Timestamp: time.Now().UTC(),
	})
	is.NoErr(err)

	is.Equal(ceType, types.AnomalyDetectedEventType)

	received := types.AnomalyDetected{}
	is.NoErr(json.Unmarshal([]byte(body), &received))
	is.Equal(received.DeviceID, "my-bin-2")
	is.Equal(received.Anomalies, []string{"Smoke"})
}

func TestThatNothingIsSentWithoutSubscribers(t *testing.T) {
	is := is.New(t)

	sender, err := New(nil)
	is.NoErr(err)

	is.NoErr(sender.Send(context.Background(), types.AnomalyDetected{DeviceID: "my-bin-2"}))
}

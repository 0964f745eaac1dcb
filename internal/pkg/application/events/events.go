package events

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	cehttp "github.com/cloudevents/sdk-go/v2/protocol/http"
	"github.com/diwise/iot-bin-telemetry/internal/pkg/infrastructure/logging"
	"github.com/diwise/iot-bin-telemetry/pkg/types"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sys/unix"
	yaml "gopkg.in/yaml.v2"
)

const eventSource string = "github.com/diwise/iot-bin-telemetry"

//go:generate moq -rm -out events_mock.go . EventSender

type EventSender interface {
	Send(ctx context.Context, message types.AnomalyDetected) error
}

type eventSender struct {
	client      cloudevents.Client
	subscribers map[string][]SubscriberConfig
}

func New(cfg *Config) (EventSender, error) {
	c, err := cloudevents.NewClientHTTP(
		cehttp.WithRoundTripper(otelhttp.NewTransport(http.DefaultTransport)),
	)
	if err != nil {
		return nil, err
	}

	e := &eventSender{
		client:      c,
		subscribers: make(map[string][]SubscriberConfig),
	}

	if cfg != nil {
		for _, s := range cfg.Notifications {
			e.subscribers[s.Type] = append(e.subscribers[s.Type], s.Subscribers...)
		}
	}

	return e, nil
}

func (e *eventSender) Send(ctx context.Context, message types.AnomalyDetected) error {
	subscribers, ok := e.subscribers[message.EventType()]
	if !ok || len(subscribers) == 0 {
		return nil
	}

	event := cloudevents.NewEvent()
	event.SetID(uuid.NewString())
	event.SetTime(message.Timestamp)
	event.SetSource(eventSource)
	event.SetType(message.EventType())
	event.SetSubject(message.DeviceID)

	err := event.SetData(message.ContentType(), message)
	if err != nil {
		return err
	}

	logger := logging.GetLoggerFromContext(ctx)

	for _, s := range subscribers {
		ctxWithTarget := cloudevents.ContextWithTarget(ctx, s.Endpoint)

		result := e.client.Send(ctxWithTarget, event)
		if cloudevents.IsUndelivered(result) || errors.Is(result, unix.ECONNREFUSED) {
			logger.Error().Err(result).Msgf("failed to send event to %s", s.Endpoint)
			err = fmt.Errorf("%w", result)
		}
	}

	return err
}

type SubscriberConfig struct {
	Endpoint string `yaml:"endpoint"`
}

type Notification struct {
	ID          string             `yaml:"id"`
	Name        string             `yaml:"name"`
	Type        string             `yaml:"type"`
	Subscribers []SubscriberConfig `yaml:"subscribers"`
}

type Config struct {
	Notifications []Notification `yaml:"notifications"`
}

func LoadConfiguration(data io.Reader) (*Config, error) {
	buf, err := io.ReadAll(data)
	if err != nil {
		return nil, err
	}

	cfg := Config{}
	if err := yaml.Unmarshal(buf, &cfg); err == nil {
		return &cfg, nil
	} else {
		return nil, err
	}
}

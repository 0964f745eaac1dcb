package mqtt

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
)

func TestHandleMessage(t *testing.T) {
	is := is.New(t)

	var received []byte

	s := NewSubscriber(zerolog.Nop(), testConfig(), func(ctx context.Context, payload []byte) error {
		received = payload
		return nil
	})

	s.handleMessage("v3/app@ttn/devices/bin-1/up", []byte(`{"end_device_ids":{"device_id":"bin-1"}}`))

	is.Equal(string(received), `{"end_device_ids":{"device_id":"bin-1"}}`)
}

func TestHandlerErrorsAreSwallowed(t *testing.T) {
	is := is.New(t)
	calls := 0

	s := NewSubscriber(zerolog.Nop(), testConfig(), func(ctx context.Context, payload []byte) error {
		calls++
		return errors.New("replay")
	})

	s.handleMessage("t", []byte("{}"))
	s.handleMessage("t", []byte("{}"))

	is.Equal(calls, 2)
}

func TestConnectAfterDisconnectFails(t *testing.T) {
	is := is.New(t)

	s := NewSubscriber(zerolog.Nop(), testConfig(), nil)
	s.Disconnect()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := s.Connect(ctx)
	is.True(errors.Is(err, ErrSubscriberStopped))
	is.True(!s.IsConnected())
}

func testConfig() Config {
	return Config{
		Broker:   "tcp://127.0.0.1:1",
		Topic:    "v3/+/devices/+/up",
		ClientID: "iot-bin-telemetry-test",
	}
}

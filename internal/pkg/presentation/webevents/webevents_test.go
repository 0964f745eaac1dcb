package webevents

import (
	"testing"

	"github.com/diwise/iot-bin-telemetry/pkg/types"
	"github.com/matryer/is"
)

func TestPublishWithoutClients(t *testing.T) {
	is := is.New(t)

	we := New()
	defer we.Shutdown()

	err := we.Publish(types.BinUpdatedEventType, types.Device{DeviceID: "bin-1", Anomaly: "No", Active: true})
	is.NoErr(err)
}

func TestPublishUnencodableData(t *testing.T) {
	is := is.New(t)

	we := New()
	defer we.Shutdown()

	err := we.Publish(types.BinUpdatedEventType, make(chan int))
	is.True(err != nil)
}

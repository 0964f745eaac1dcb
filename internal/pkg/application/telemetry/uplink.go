package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/diwise/iot-bin-telemetry/pkg/types"
)

var ErrMalformedUplink = errors.New("malformed uplink")

// Uplink is the subset of a The Things Stack v3 uplink message that the bins decode into.
type Uplink struct {
	EndDeviceIDs struct {
		DeviceID string `json:"device_id"`
	} `json:"end_device_ids"`
	UplinkMessage struct {
		ReceivedAt     string          `json:"received_at"`
		DecodedPayload json.RawMessage `json:"decoded_payload"`
	} `json:"uplink_message"`

	payload *DecodedPayload
}

// DecodedPayload holds the fields produced by the payload formatter. A nil field
// was not present in the message.
type DecodedPayload struct {
	Temperature *float64 `json:"temperature"`
	FillLevel   *float64 `json:"fill_level"`
	Humidity    *float64 `json:"humidity"`
	SmokeConc   *float64 `json:"smoke_conc"`
	Latitude    *float64 `json:"lat"`
	Longitude   *float64 `json:"lon"`

	// StartTime is set by the benchmark firmware, in seconds since the epoch.
	StartTime *float64 `json:"startTime"`
}

func ParseUplink(r io.Reader) (Uplink, error) {
	u := Uplink{}

	if err := json.NewDecoder(r).Decode(&u); err != nil {
		return u, fmt.Errorf("%w: %w", ErrMalformedUplink, err)
	}

	if strings.TrimSpace(u.EndDeviceIDs.DeviceID) == "" {
		return u, fmt.Errorf("%w: missing device id", ErrMalformedUplink)
	}

	// a null payload is present but carries no reading
	raw := u.UplinkMessage.DecodedPayload
	if len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		p := &DecodedPayload{}
		if err := json.Unmarshal(raw, p); err != nil {
			return u, fmt.Errorf("%w: bad decoded_payload: %w", ErrMalformedUplink, err)
		}
		u.payload = p
	}

	return u, nil
}

func (u Uplink) DeviceID() string {
	return u.EndDeviceIDs.DeviceID
}

func (u Uplink) ReceivedAt() (time.Time, error) {
	ts, err := time.Parse(time.RFC3339Nano, u.UplinkMessage.ReceivedAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad received_at %q", ErrMalformedUplink, u.UplinkMessage.ReceivedAt)
	}
	return ts.UTC(), nil
}

// HasDecodedPayload reports whether the message carries a decoded_payload key, even a null one.
func (u Uplink) HasDecodedPayload() bool {
	return len(u.UplinkMessage.DecodedPayload) > 0
}

// Reading returns the sensor reading carried by the uplink. The second return
// value is false unless every sensor field is present.
func (u Uplink) Reading() (types.Reading, bool) {
	p := u.payload
	if p == nil {
		return types.Reading{}, false
	}

	if p.Temperature == nil || p.FillLevel == nil || p.Humidity == nil ||
		p.SmokeConc == nil || p.Latitude == nil || p.Longitude == nil {
		return types.Reading{}, false
	}

	return types.Reading{
		Temperature:        *p.Temperature,
		FillLevel:          *p.FillLevel,
		Humidity:           *p.Humidity,
		SmokeConcentration: *p.SmokeConc,
		Location: types.Location{
			Latitude:  *p.Latitude,
			Longitude: *p.Longitude,
		},
	}, true
}

// StartTime returns the send time reported by benchmark firmware.
func (u Uplink) StartTime() (time.Time, bool) {
	p := u.payload
	if p == nil || p.StartTime == nil {
		return time.Time{}, false
	}

	sec := *p.StartTime
	whole := int64(sec)
	nanos := int64((sec - float64(whole)) * float64(time.Second))

	return time.Unix(whole, nanos).UTC(), true
}

// NewUplinkMessageHandler adapts the service to raw uplink messages such as those
// published by the MQTT integration.
func NewUplinkMessageHandler(svc TelemetryService) func(ctx context.Context, payload []byte) error {
	return func(ctx context.Context, payload []byte) error {
		uplink, err := ParseUplink(bytes.NewReader(payload))
		if err != nil {
			return err
		}

		_, err = svc.HandleUplink(ctx, uplink)
		return err
	}
}

package types

import "time"

const AnomalyDetectedEventType string = "diwise.bin.anomalydetected"

// BinUpdatedEventType is pushed to live dashboards after each accepted reading.
const BinUpdatedEventType string = "bin-updated"

type AnomalyDetected struct {
	DeviceID  string    `json:"deviceID"`
	Anomalies []string  `json:"anomalies"`
	Reading   Reading   `json:"reading"`
	Timestamp time.Time `json:"timestamp"`
}

func (a *AnomalyDetected) ContentType() string {
	return "application/json"
}

func (a *AnomalyDetected) EventType() string {
	return AnomalyDetectedEventType
}

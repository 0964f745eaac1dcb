package types

import (
	"time"
)

type Location struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// Reading is one decoded uplink from a bin sensor.
type Reading struct {
	Temperature        float64  `json:"temperature"`
	FillLevel          float64  `json:"fill_level"`
	Humidity           float64  `json:"humidity"`
	SmokeConcentration float64  `json:"smoke_concentration"`
	Location           Location `json:"location"`
}

type Device struct {
	DeviceID      string    `json:"device_name"`
	FixedLocation Location  `json:"fixed_location"`
	LastSeenAt    time.Time `json:"received_at"`
	LastReading   Reading   `json:"last_reading"`
	Anomaly       string    `json:"anomaly"`
	Active        bool      `json:"active"`
}

type Telemetry struct {
	ID         uint      `json:"id"`
	DeviceID   string    `json:"device_name"`
	ReceivedAt time.Time `json:"received_at"`
	Reading
}

type GeneralMetrics struct {
	TotalDevices    int `json:"total_devices"`
	ActiveDevices   int `json:"active_devices"`
	InactiveDevices int `json:"inactive_devices"`
	FullDevices     int `json:"num_full"`
	AnomalyDevices  int `json:"num_anomaly"`
	FullBinsPercent int `json:"full_bins_perctg"`
}

type HourlyCount struct {
	Hour     string `json:"hour"`
	FullBins int    `json:"full_bins"`
}

// Dashboard is the document polled by the web dashboard.
type Dashboard struct {
	Bins            []Device      `json:"bins"`
	TotalBins       int           `json:"total_bins"`
	ActiveBins      int           `json:"active_bins"`
	FullBins        int           `json:"full_bins"`
	FullBinsPercent int           `json:"full_bins_perctg"`
	FullBinHistory  []HourlyCount `json:"full_bin_history"`
	AnomalyBins     int           `json:"anomaly_bins"`
	InactiveBins    int           `json:"inactive_bins"`
	ActiveBinsGraph int           `json:"active_bins_graph"`
}

type BenchmarkMetric struct {
	ID        uint      `json:"id"`
	LatencyMs float64   `json:"latency_ms"`
	CreatedAt time.Time `json:"created_at"`
}

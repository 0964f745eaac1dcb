package database

import (
	"time"
)

// Device is the current state of one bin. FixedLatitude and FixedLongitude are
// written once, when the device is first seen.
type Device struct {
	ID       uint   `gorm:"primaryKey"`
	DeviceID string `gorm:"uniqueIndex;not null"`

	FixedLatitude  float64 `gorm:"not null"`
	FixedLongitude float64 `gorm:"not null"`

	LastSeenAt         time.Time `gorm:"not null"`
	Temperature        float64   `gorm:"not null"`
	FillLevel          float64   `gorm:"not null"`
	Humidity           float64   `gorm:"not null"`
	SmokeConcentration float64   `gorm:"not null"`
	Latitude           float64   `gorm:"not null"`
	Longitude          float64   `gorm:"not null"`
	Anomaly            string    `gorm:"not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Telemetry is an append only history row, one per accepted reading.
type Telemetry struct {
	ID                 uint      `gorm:"primaryKey"`
	DeviceID           string    `gorm:"index;not null"`
	ReceivedAt         time.Time `gorm:"index;not null"`
	Temperature        float64   `gorm:"not null"`
	FillLevel          float64   `gorm:"not null"`
	Humidity           float64   `gorm:"not null"`
	SmokeConcentration float64   `gorm:"not null"`
	Latitude           float64   `gorm:"not null"`
	Longitude          float64   `gorm:"not null"`

	CreatedAt time.Time
}

func (Telemetry) TableName() string {
	return "telemetry"
}

type BenchmarkMetric struct {
	ID        uint    `gorm:"primaryKey"`
	LatencyMs float64 `gorm:"column:metric;not null"`
	CreatedAt time.Time
}

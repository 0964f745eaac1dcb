package anomaly

import (
	"math"

	"github.com/diwise/iot-bin-telemetry/pkg/types"
)

// mean earth radius in metres (IUGG)
const earthRadius float64 = 6371008.8

// Distance returns the great-circle distance in metres between a and b.
func Distance(a, b types.Location) float64 {
	dLat := toRad(b.Latitude - a.Latitude)
	dLon := toRad(b.Longitude - a.Longitude)
	lat1 := toRad(a.Latitude)
	lat2 := toRad(b.Latitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadius * c
}

func toRad(deg float64) float64 { return deg * math.Pi / 180 }

package anomaly

import (
	"math"
	"testing"

	"github.com/diwise/iot-bin-telemetry/pkg/types"
	"github.com/matryer/is"
)

func TestDistanceToSelfIsZero(t *testing.T) {
	is := is.New(t)
	p := types.Location{Latitude: 1.370653, Longitude: 103.8268}

	is.Equal(Distance(p, p), 0.0)
}

func TestDistanceIsSymmetric(t *testing.T) {
	is := is.New(t)
	a := types.Location{Latitude: 1.370653, Longitude: 103.8268}
	b := types.Location{Latitude: 1.371038, Longitude: 103.825448}

	is.True(math.Abs(Distance(a, b)-Distance(b, a)) < 1e-9)
}

func TestDistanceBetweenSimulatedBins(t *testing.T) {
	is := is.New(t)
	a := types.Location{Latitude: 1.370653, Longitude: 103.8268}
	b := types.Location{Latitude: 1.371038, Longitude: 103.825448}

	d := Distance(a, b)

	// roughly 156 m apart on the ground
	is.True(d > 150 && d < 160)
}

func TestDistanceOfOneDegreeLatitude(t *testing.T) {
	is := is.New(t)
	a := types.Location{Latitude: 0, Longitude: 0}
	b := types.Location{Latitude: 1, Longitude: 0}

	d := Distance(a, b)

	is.True(math.Abs(d-111195.08) < 1.0)
}

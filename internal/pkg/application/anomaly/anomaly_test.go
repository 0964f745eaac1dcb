package anomaly

import (
	"math"
	"testing"

	"github.com/diwise/iot-bin-telemetry/pkg/types"
	"github.com/matryer/is"
)

func TestSmokeThreshold(t *testing.T) {
	is, c := setupTest(t)

	is.True(c.Classify(types.Reading{SmokeConcentration: 50.01}, nil).Has(Smoke))
	is.True(c.Classify(types.Reading{SmokeConcentration: 99}, nil).Has(Smoke))
	is.True(!c.Classify(types.Reading{SmokeConcentration: 50}, nil).Has(Smoke))
	is.True(!c.Classify(types.Reading{SmokeConcentration: 12.5}, nil).Has(Smoke))
}

func TestTemperatureThresholdIsStrict(t *testing.T) {
	is, c := setupTest(t)

	is.True(c.Classify(types.Reading{Temperature: 35.1}, nil).Has(Temperature))
	is.True(!c.Classify(types.Reading{Temperature: 35.0}, nil).Has(Temperature))
}

func TestLocationIsTriggeredBeyond500Metres(t *testing.T) {
	is, c := setupTest(t)
	fixed := types.Location{Latitude: 1.0, Longitude: 1.0}

	far := c.Classify(types.Reading{Location: north(fixed, 501)}, &fixed)
	near := c.Classify(types.Reading{Location: north(fixed, 499)}, &fixed)

	is.True(far.Has(Location))
	is.True(!near.Has(Location))
}

func TestFirstSightingNeverYieldsLocation(t *testing.T) {
	is, c := setupTest(t)

	labels := c.Classify(types.Reading{Location: types.Location{Latitude: -45, Longitude: 170}}, nil)

	is.True(!labels.Has(Location))
	is.Equal(labels.String(), NoAnomaly)
}

func TestClassifyIsDeterministic(t *testing.T) {
	is, c := setupTest(t)
	fixed := types.Location{Latitude: 1.0, Longitude: 1.0}
	r := types.Reading{Temperature: 40, SmokeConcentration: 60, Location: north(fixed, 800)}

	first := c.Classify(r, &fixed)
	second := c.Classify(r, &fixed)

	is.Equal(first, second)
	is.Equal(first.String(), second.String())
}

func TestLabelsAreSerializedInPriorityOrder(t *testing.T) {
	is := is.New(t)

	is.Equal(NewLabels(Location, Smoke, Temperature).String(), "Smoke, Temperature, Location")
	is.Equal(NewLabels(Location, Temperature).String(), "Temperature, Location")
	is.Equal(NewLabels(Smoke).String(), "Smoke")
	is.Equal(NewLabels().String(), "No")
}

func TestParseLabels(t *testing.T) {
	is := is.New(t)

	for _, s := range []string{"No", "Smoke", "Smoke, Location", "Smoke, Temperature, Location", "Temperature"} {
		is.Equal(ParseLabels(s).String(), s)
	}

	is.True(ParseLabels("Temperature,Smoke").Has(Smoke))
	is.True(ParseLabels("").Empty())
}

func TestCustomPolicy(t *testing.T) {
	is := is.New(t)
	c := NewClassifier(Policy{SmokeThreshold: 10, TemperatureThreshold: 20, DistanceThreshold: 50})
	fixed := types.Location{Latitude: 1.0, Longitude: 1.0}

	labels := c.Classify(types.Reading{SmokeConcentration: 11, Temperature: 21, Location: north(fixed, 60)}, &fixed)

	is.Equal(labels.Strings(), []string{"Smoke", "Temperature", "Location"})
}

func setupTest(t *testing.T) (*is.I, Classifier) {
	return is.New(t), NewClassifier(DefaultPolicy())
}

// north returns the point at the given distance due north of p
func north(p types.Location, metres float64) types.Location {
	return types.Location{
		Latitude:  p.Latitude + (metres/earthRadius)*180/math.Pi,
		Longitude: p.Longitude,
	}
}

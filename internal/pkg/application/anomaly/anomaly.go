package anomaly

import (
	"strings"

	"github.com/diwise/iot-bin-telemetry/pkg/types"
)

type Label string

const (
	Smoke       Label = "Smoke"
	Temperature Label = "Temperature"
	Location    Label = "Location"
)

// NoAnomaly is stored in place of an empty label set.
const NoAnomaly string = "No"

// priority order used when serializing a label set
var labelOrder = []Label{Smoke, Temperature, Location}

type Labels struct {
	smoke, temperature, location bool
}

func NewLabels(labels ...Label) Labels {
	l := Labels{}
	for _, label := range labels {
		l.add(label)
	}
	return l
}

// ParseLabels reads a label set back from its stored form. Unknown names are ignored.
func ParseLabels(s string) Labels {
	l := Labels{}
	if s == NoAnomaly {
		return l
	}

	for _, part := range strings.Split(s, ",") {
		l.add(Label(strings.TrimSpace(part)))
	}

	return l
}

func (l *Labels) add(label Label) {
	switch label {
	case Smoke:
		l.smoke = true
	case Temperature:
		l.temperature = true
	case Location:
		l.location = true
	}
}

func (l Labels) Has(label Label) bool {
	switch label {
	case Smoke:
		return l.smoke
	case Temperature:
		return l.temperature
	case Location:
		return l.location
	}
	return false
}

func (l Labels) Empty() bool {
	return !l.smoke && !l.temperature && !l.location
}

func (l Labels) Slice() []Label {
	labels := make([]Label, 0, len(labelOrder))
	for _, label := range labelOrder {
		if l.Has(label) {
			labels = append(labels, label)
		}
	}
	return labels
}

func (l Labels) Strings() []string {
	s := make([]string, 0, len(labelOrder))
	for _, label := range l.Slice() {
		s = append(s, string(label))
	}
	return s
}

// String joins the labels in priority order, or returns NoAnomaly for an empty set.
func (l Labels) String() string {
	if l.Empty() {
		return NoAnomaly
	}
	return strings.Join(l.Strings(), ", ")
}

type Policy struct {
	SmokeThreshold       float64 `yaml:"smokeThreshold"`
	TemperatureThreshold float64 `yaml:"temperatureThreshold"`
	DistanceThreshold    float64 `yaml:"distanceThreshold"`
}

func DefaultPolicy() Policy {
	return Policy{
		SmokeThreshold:       50,
		TemperatureThreshold: 35,
		DistanceThreshold:    500,
	}
}

type Classifier interface {
	Classify(reading types.Reading, fixed *types.Location) Labels
}

type classifier struct {
	policy Policy
}

func NewClassifier(policy Policy) Classifier {
	return &classifier{policy: policy}
}

// Classify evaluates every rule against the reading. A nil fixed location means the
// device has never been seen before and the location rule is skipped.
func (c *classifier) Classify(reading types.Reading, fixed *types.Location) Labels {
	l := Labels{}

	if reading.SmokeConcentration > c.policy.SmokeThreshold {
		l.add(Smoke)
	}

	if reading.Temperature > c.policy.TemperatureThreshold {
		l.add(Temperature)
	}

	if fixed != nil && Distance(*fixed, reading.Location) > c.policy.DistanceThreshold {
		l.add(Location)
	}

	return l
}

// Package study tracks the participants of an inflammation study: patients
// with their day-ordered observation series and the doctors who follow them.
package study

import "errors"

var ErrNoObservations = errors.New("patient has no observations")

// Named carries the display name shared by study participants. Patient and
// Doctor embed it rather than deriving from a person hierarchy.
type Named struct {
	Name string `json:"name"`
}

func (n Named) String() string {
	return n.Name
}

// Observation is a single inflammation measurement for one day. It is
// never changed once recorded.
type Observation struct {
	Day   int     `json:"day"`
	Value float64 `json:"value"`
}

// Patient owns an append-only series of observations ordered by day.
type Patient struct {
	Named
	observations []Observation
}

func NewPatient(name string) *Patient {
	return &Patient{Named: Named{Name: name}}
}

// AddObservation records a measurement for the next day in the series:
// the day after the last observation, or day 0 for a fresh patient.
func (p *Patient) AddObservation(value float64) Observation {
	day := 0
	if n := len(p.observations); n > 0 {
		day = p.observations[n-1].Day + 1
	}
	return p.AddObservationAt(day, value)
}

// AddObservationAt records a measurement for an explicit day.
func (p *Patient) AddObservationAt(day int, value float64) Observation {
	obs := Observation{Day: day, Value: value}
	p.observations = append(p.observations, obs)
	return obs
}

// Observations returns a copy of the patient's series in recording order.
func (p *Patient) Observations() []Observation {
	out := make([]Observation, len(p.observations))
	copy(out, p.observations)
	return out
}

// LastObservation returns the most recently recorded observation, or
// ErrNoObservations for a patient with an empty series.
func (p *Patient) LastObservation() (Observation, error) {
	if len(p.observations) == 0 {
		return Observation{}, ErrNoObservations
	}
	return p.observations[len(p.observations)-1], nil
}

// Values returns the patient's measurement values in day order.
func (p *Patient) Values() []float64 {
	out := make([]float64, len(p.observations))
	for i, obs := range p.observations {
		out[i] = obs.Value
	}
	return out
}

// Doctor follows a set of patients, unique by name in insertion order.
type Doctor struct {
	Named
	patients []*Patient
}

func NewDoctor(name string) *Doctor {
	return &Doctor{Named: Named{Name: name}}
}

// AddPatient adds a patient to the doctor's list. Adding a patient whose
// name is already present is a no-op, even for a different instance.
func (d *Doctor) AddPatient(patient *Patient) {
	for _, existing := range d.patients {
		if existing.Name == patient.Name {
			return
		}
	}
	d.patients = append(d.patients, patient)
}

// Patients returns the doctor's patients in the order they were added.
func (d *Doctor) Patients() []*Patient {
	out := make([]*Patient, len(d.patients))
	copy(out, d.patients)
	return out
}

// Patient looks up a patient by exact name.
func (d *Doctor) Patient(name string) (*Patient, bool) {
	for _, p := range d.patients {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

package entity

import (
	"time"

	"github.com/dm/sfm-go/internal/model"
)

// Sensor reports one numeric value described by a SensorDescription. It is
// available while the account is reachable.
type Sensor struct {
	base
	desc  model.SensorDescription
	value any
}

var _ Entity = (*Sensor)(nil)

// NewSensor creates a sensor, writes its initial state and subscribes it to
// src.
func NewSensor(uniqueID, username string, desc model.SensorDescription, src Source, sink StateWriter) *Sensor {
	data := src.Data()
	value, _ := desc.ResolveValue(data)

	s := &Sensor{
		base: base{
			uniqueID:  uniqueID,
			entityID:  GenerateEntityID(PlatformSensor, username, desc.Key),
			name:      desc.Name,
			available: data.State,
			sink:      sink,
		},
		desc:  desc,
		value: value,
	}
	s.write()
	s.attach(src, s)
	return s
}

// Handle applies a snapshot. Nothing is written when neither the value nor
// the availability changed.
func (s *Sensor) Handle(snap model.Snapshot) bool {
	value, _ := s.desc.ResolveValue(snap)

	s.mu.Lock()
	if s.value == value && s.available == snap.State {
		s.mu.Unlock()
		return false
	}
	s.value = value
	s.available = snap.State
	s.mu.Unlock()

	s.write()
	return true
}

// State returns the current state.
func (s *Sensor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		EntityID:    s.entityID,
		UniqueID:    s.uniqueID,
		Name:        s.name,
		Value:       s.value,
		Available:   s.available,
		Icon:        s.desc.Icon,
		Unit:        s.desc.Unit,
		StateClass:  s.desc.StateClass,
		Category:    s.desc.Category,
		Attribution: model.Attribution,
		Device:      s.desc.Device,
		UpdatedAt:   time.Now(),
	}
}

// Description returns the descriptor the sensor was built from.
func (s *Sensor) Description() model.SensorDescription { return s.desc }

func (s *Sensor) write() {
	if s.sink != nil {
		s.sink.WriteState(s.State())
	}
}

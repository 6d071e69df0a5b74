package entity

import (
	"time"

	"github.com/dm/sfm-go/internal/model"
)

const (
	iconConnected    = "mdi:lan-connect"
	iconDisconnected = "mdi:lan-disconnect"
)

// BinarySensor reports whether the account is reachable. It is always
// available so that "unreachable" stays visible.
type BinarySensor struct {
	base
	device model.DeviceInfo
	isOn   bool
}

var _ Entity = (*BinarySensor)(nil)

// NewStateSensor creates the reachability sensor for one account.
func NewStateSensor(uniqueID, username string, device model.DeviceInfo, src Source, sink StateWriter) *BinarySensor {
	data := src.Data()

	b := &BinarySensor{
		base: base{
			uniqueID:  uniqueID,
			entityID:  GenerateEntityID(PlatformBinarySensor, username, model.KeyState),
			name:      "State",
			available: true,
			sink:      sink,
		},
		device: device,
		isOn:   data.State,
	}
	b.write()
	b.attach(src, b)
	return b
}

// Handle applies a snapshot and writes the state when reachability flipped.
func (b *BinarySensor) Handle(snap model.Snapshot) bool {
	b.mu.Lock()
	if b.isOn == snap.State && b.available {
		b.mu.Unlock()
		return false
	}
	b.isOn = snap.State
	b.available = true
	b.mu.Unlock()

	b.write()
	return true
}

// IsOn reports the last known reachability.
func (b *BinarySensor) IsOn() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.isOn
}

// State returns the current state.
func (b *BinarySensor) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	icon := iconDisconnected
	if b.isOn {
		icon = iconConnected
	}
	value := "off"
	if b.isOn {
		value = "on"
	}

	return State{
		EntityID:    b.entityID,
		UniqueID:    b.uniqueID,
		Name:        b.name,
		Value:       value,
		Available:   b.available,
		Icon:        icon,
		Category:    model.CategoryDiagnostic,
		Attribution: model.Attribution,
		Device:      b.device,
		UpdatedAt:   time.Now(),
	}
}

func (b *BinarySensor) write() {
	if b.sink != nil {
		b.sink.WriteState(b.State())
	}
}

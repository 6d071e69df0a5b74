// Package entity turns updater snapshots into named entity states.
package entity

import (
	"strings"
	"sync"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/dm/sfm-go/internal/model"
)

// Entity id prefixes.
const (
	PlatformSensor       = "sensor"
	PlatformBinarySensor = "binary_sensor"
)

// State is the externally visible state of one entity.
type State struct {
	EntityID    string               `json:"entity_id"`
	UniqueID    string               `json:"unique_id"`
	Name        string               `json:"name"`
	Value       any                  `json:"state"`
	Available   bool                 `json:"available"`
	Icon        string               `json:"icon,omitempty"`
	Unit        string               `json:"unit_of_measurement,omitempty"`
	StateClass  string               `json:"state_class,omitempty"`
	Category    model.EntityCategory `json:"entity_category,omitempty"`
	Attribution string               `json:"attribution"`
	Device      model.DeviceInfo     `json:"device_info"`
	UpdatedAt   time.Time            `json:"last_updated"`
}

// StateWriter receives entity states whenever they change.
type StateWriter interface {
	WriteState(State)
}

// Source is the part of an updater an entity reads from.
type Source interface {
	Data() model.Snapshot
	Subscribe(fn func(model.Snapshot)) func()
}

// Entity is the common behavior of sensors and binary sensors.
type Entity interface {
	UniqueID() string
	EntityID() string
	State() State
	// Handle applies a snapshot and reports whether the state was written.
	Handle(s model.Snapshot) bool
	Close()
}

// base holds what every entity shares. Concrete types guard it with mu.
type base struct {
	mu        sync.Mutex
	uniqueID  string
	entityID  string
	name      string
	available bool
	sink      StateWriter
	unsub     func()
}

func (b *base) UniqueID() string { return b.uniqueID }

func (b *base) EntityID() string { return b.entityID }

func (b *base) Close() {
	b.mu.Lock()
	unsub := b.unsub
	b.unsub = nil
	b.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

func (b *base) attach(src Source, e Entity) {
	unsub := src.Subscribe(func(s model.Snapshot) { e.Handle(s) })
	b.mu.Lock()
	b.unsub = unsub
	b.mu.Unlock()
}

// GenerateEntityID builds "<platform>.<slug>" from the account name and key.
func GenerateEntityID(platform, username, key string) string {
	name := model.Domain + "_" + username
	if key != "" {
		name += "_" + key
	}
	return platform + "." + Slugify(strings.ToLower(name))
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify lowercases s, folds accents and collapses every run of other
// characters into a single "_".
func Slugify(s string) string {
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	sep := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if sep && b.Len() > 0 {
				b.WriteByte('_')
			}
			sep = false
			b.WriteRune(r)
			continue
		}
		sep = true
	}
	if b.Len() == 0 {
		return "unknown"
	}
	return b.String()
}

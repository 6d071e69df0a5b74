package entity

import (
	"sort"
	"sync"

	"github.com/dm/sfm-go/internal/engine"
	"github.com/dm/sfm-go/internal/model"
)

// Platform owns the entities of one account: the reachability sensor plus
// one sensor per descriptor. Sensors discovered later are added as they are
// announced.
type Platform struct {
	entryID string
	updater *engine.Updater
	sink    StateWriter

	mu       sync.Mutex
	entities map[string]Entity
	unsub    func()
}

// NewPlatform creates an empty platform. Call Start to create entities.
func NewPlatform(entryID string, u *engine.Updater, sink StateWriter) *Platform {
	return &Platform{
		entryID:  entryID,
		updater:  u,
		sink:     sink,
		entities: make(map[string]Entity),
	}
}

// Start creates the entities known so far and subscribes to new sensors.
func (p *Platform) Start() {
	p.add(NewStateSensor(p.uniqueID(model.KeyState), p.updater.Username(), p.updater.DeviceInfo(), p.updater, p.sink))

	unsub := p.updater.OnNewSensor(p.addSensor)
	for _, desc := range p.updater.Sensors().All() {
		p.addSensor(desc)
	}

	p.mu.Lock()
	p.unsub = unsub
	p.mu.Unlock()
}

// Stop unsubscribes the platform and all of its entities.
func (p *Platform) Stop() {
	p.mu.Lock()
	unsub := p.unsub
	p.unsub = nil
	entities := make([]Entity, 0, len(p.entities))
	for _, e := range p.entities {
		entities = append(entities, e)
	}
	p.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	for _, e := range entities {
		e.Close()
	}
}

// Entities returns the entities sorted by entity id.
func (p *Platform) Entities() []Entity {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Entity, 0, len(p.entities))
	for _, e := range p.entities {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntityID() < out[j].EntityID() })
	return out
}

func (p *Platform) addSensor(desc model.SensorDescription) {
	uid := p.uniqueID(desc.Key)
	p.mu.Lock()
	_, exists := p.entities[uid]
	p.mu.Unlock()
	if exists {
		return
	}
	p.add(NewSensor(uid, p.updater.Username(), desc, p.updater, p.sink))
}

func (p *Platform) add(e Entity) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.entities[e.UniqueID()]; exists {
		e.Close()
		return
	}
	p.entities[e.UniqueID()] = e
}

func (p *Platform) uniqueID(key string) string {
	return p.entryID + "-" + key
}

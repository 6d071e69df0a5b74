package entity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dm/sfm-go/internal/client"
	"github.com/dm/sfm-go/internal/client/clienttest"
	"github.com/dm/sfm-go/internal/engine"
	"github.com/dm/sfm-go/internal/model"
)

// fakeSource is a Source whose snapshot tests set directly.
type fakeSource struct {
	data model.Snapshot
	fns  []func(model.Snapshot)
}

func (f *fakeSource) Data() model.Snapshot { return f.data.Clone() }

func (f *fakeSource) Subscribe(fn func(model.Snapshot)) func() {
	f.fns = append(f.fns, fn)
	idx := len(f.fns) - 1
	return func() { f.fns[idx] = nil }
}

func (f *fakeSource) publish(s model.Snapshot) {
	f.data = s
	for _, fn := range f.fns {
		if fn != nil {
			fn(s.Clone())
		}
	}
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"seafile_alice_space_total":        "seafile_alice_space_total",
		"seafile_user@example.com_u1_used": "seafile_user_example_com_u1_used",
		"Seafile  Ünïcödé--name":           "seafile_unicode_name",
		"__leading and trailing__":         "leading_and_trailing",
		"!!!":                              "unknown",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestGenerateEntityID(t *testing.T) {
	assert.Equal(t, "sensor.seafile_alice_example_com_space_total",
		GenerateEntityID(PlatformSensor, "Alice@Example.com", "space_total"))
	assert.Equal(t, "binary_sensor.seafile_alice_state",
		GenerateEntityID(PlatformBinarySensor, "alice", "state"))
	assert.Equal(t, "sensor.seafile_alice", GenerateEntityID(PlatformSensor, "alice", ""))
}

func TestSensor_InitialStateAndSuppression(t *testing.T) {
	snap := model.NewSnapshot()
	snap.State = true
	snap.Space[model.KeySpaceTotal] = 100
	src := &fakeSource{data: snap}
	sink := NewStates()

	desc := model.SensorDescription{Key: model.KeySpaceTotal, Name: "Space total", Unit: "B"}
	s := NewSensor("entry-space_total", "alice", desc, src, sink)

	st, ok := sink.Get("sensor.seafile_alice_space_total")
	require.True(t, ok)
	assert.EqualValues(t, 100, st.Value)
	assert.True(t, st.Available)
	assert.Equal(t, "entry-space_total", st.UniqueID)
	assert.Equal(t, model.Attribution, st.Attribution)
	assert.Equal(t, 1, sink.Writes())

	src.publish(snap.Clone())
	assert.Equal(t, 1, sink.Writes(), "identical snapshot must not write")

	next := snap.Clone()
	next.Space[model.KeySpaceTotal] = 200
	src.publish(next)
	assert.Equal(t, 2, sink.Writes())
	assert.EqualValues(t, 200, s.State().Value)

	down := next.Clone()
	down.State = false
	src.publish(down)
	assert.Equal(t, 3, sink.Writes())
	assert.False(t, s.State().Available)
	assert.EqualValues(t, 200, s.State().Value, "last value is kept while unavailable")
}

func TestSensor_RepositoryValue(t *testing.T) {
	snap := model.NewSnapshot()
	src := &fakeSource{data: snap}
	desc := model.SensorDescription{Key: "u1_used", RepositoryCode: "u1", CustomKey: model.KeySize}

	s := NewSensor("e-u1_used", "alice", desc, src, nil)
	assert.Nil(t, s.State().Value)

	next := snap.Clone()
	next.State = true
	next.Repositories["u1"] = model.Repository{Size: 10, Name: "A"}
	assert.True(t, s.Handle(next))
	assert.EqualValues(t, 10, s.State().Value)
	assert.False(t, s.Handle(next))
}

func TestSensor_CloseUnsubscribes(t *testing.T) {
	src := &fakeSource{data: model.NewSnapshot()}
	sink := NewStates()
	s := NewSensor("e-k", "alice", model.SensorDescription{Key: model.KeySpaceUsage}, src, sink)
	s.Close()

	next := model.NewSnapshot()
	next.State = true
	src.publish(next)
	assert.Equal(t, 1, sink.Writes())
}

func TestBinarySensor_AlwaysAvailable(t *testing.T) {
	src := &fakeSource{data: model.NewSnapshot()}
	sink := NewStates()
	b := NewStateSensor("entry-state", "alice", model.NewDeviceInfo("alice", "http://s", ""), src, sink)

	st := b.State()
	assert.True(t, st.Available)
	assert.Equal(t, "off", st.Value)
	assert.Equal(t, "mdi:lan-disconnect", st.Icon)
	assert.Equal(t, "binary_sensor.seafile_alice_state", st.EntityID)
	assert.Equal(t, model.CategoryDiagnostic, st.Category)

	up := model.NewSnapshot()
	up.State = true
	src.publish(up)
	assert.True(t, b.IsOn())
	assert.Equal(t, "mdi:lan-connect", b.State().Icon)
	assert.Equal(t, 2, sink.Writes())

	src.publish(up)
	assert.Equal(t, 2, sink.Writes())
}

func TestPlatform_CreatesEntitiesAsDiscovered(t *testing.T) {
	mc := &clienttest.MockClient{
		AccountFn: func(context.Context) (*client.AccountInfo, error) {
			return &client.AccountInfo{Total: clienttest.Size(100)}, nil
		},
	}
	u, err := engine.NewUpdater(engine.UpdaterConfig{URL: "http://s", Username: "alice", Client: mc})
	require.NoError(t, err)

	sink := NewStates()
	p := NewPlatform("entry", u, sink)
	p.Start()
	defer p.Stop()

	require.Len(t, p.Entities(), 1, "only the reachability sensor exists before the first cycle")

	u.Refresh(context.Background())
	ents := p.Entities()
	require.Len(t, ents, 2)
	assert.Equal(t, "binary_sensor.seafile_alice_state", ents[0].EntityID())
	assert.Equal(t, "sensor.seafile_alice_space_total", ents[1].EntityID())

	st, ok := sink.Get("sensor.seafile_alice_space_total")
	require.True(t, ok)
	assert.EqualValues(t, 100, st.Value)
	assert.True(t, st.Available)

	reach, ok := sink.Get("binary_sensor.seafile_alice_state")
	require.True(t, ok)
	assert.Equal(t, "on", reach.Value)

	mc.LibrariesFn = func(context.Context) ([]client.Library, error) {
		return []client.Library{{ID: "u1", Name: "A", Size: 10}}, nil
	}
	u.Refresh(context.Background())
	assert.Len(t, p.Entities(), 3)
	lib, ok := sink.Get("sensor.seafile_alice_u1_used")
	require.True(t, ok)
	assert.EqualValues(t, 10, lib.Value)
	assert.Equal(t, "entry-u1_used", lib.UniqueID)
}

func TestPlatform_StartAfterDiscovery(t *testing.T) {
	mc := &clienttest.MockClient{
		LibrariesFn: func(context.Context) ([]client.Library, error) {
			return []client.Library{{ID: "u1", Name: "A", Size: 10}}, nil
		},
	}
	u, err := engine.NewUpdater(engine.UpdaterConfig{URL: "http://s", Username: "alice", Client: mc})
	require.NoError(t, err)
	u.Refresh(context.Background())

	p := NewPlatform("entry", u, NewStates())
	p.Start()
	defer p.Stop()
	assert.Len(t, p.Entities(), 2)
}

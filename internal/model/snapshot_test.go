package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_CloneIsDeep(t *testing.T) {
	s := NewSnapshot()
	s.Space[KeySpaceTotal] = 100
	s.Repositories["u1"] = Repository{Size: 10, Name: "A"}

	c := s.Clone()
	c.Space[KeySpaceTotal] = 1
	c.Repositories["u2"] = Repository{Size: 20, Name: "B"}

	assert.EqualValues(t, 100, s.Space[KeySpaceTotal])
	assert.Len(t, s.Repositories, 1)
}

func TestSnapshot_CloneZeroValue(t *testing.T) {
	c := Snapshot{}.Clone()
	require.NotNil(t, c.Space)
	require.NotNil(t, c.Repositories)
}

func TestSnapshot_Value(t *testing.T) {
	s := NewSnapshot()
	_, ok := s.Value(KeyVersion)
	assert.False(t, ok)
	_, ok = s.Value(KeySpaceUsage)
	assert.False(t, ok)

	s.State = true
	s.Version = "9.0.2"
	s.Space[KeySpaceUsage] = 50

	v, ok := s.Value(KeyState)
	assert.True(t, ok)
	assert.Equal(t, true, v)
	v, _ = s.Value(KeyVersion)
	assert.Equal(t, "9.0.2", v)
	v, _ = s.Value(KeySpaceUsage)
	assert.EqualValues(t, 50, v)
}

func TestSnapshot_Map(t *testing.T) {
	s := NewSnapshot()
	s.State = true
	s.AvatarURL = "http://a"
	s.Space[KeySpaceTotal] = 100
	s.Repositories["u1"] = Repository{Size: 10, Name: "A"}

	m := s.Map()
	assert.Equal(t, true, m[KeyState])
	assert.Equal(t, "http://a", m[KeyAvatarURL])
	assert.EqualValues(t, 100, m[KeySpaceTotal])
	assert.NotContains(t, m, KeyVersion)
	repos := m[KeyRepositories].(map[string]any)
	assert.Equal(t, map[string]any{KeySize: int64(10), KeyName: "A"}, repos["u1"])
}

func TestSensorDescription_ResolveValue(t *testing.T) {
	s := NewSnapshot()
	s.Space[KeySpaceTotal] = 100
	s.Repositories["u1"] = Repository{Size: 10, Name: "A"}

	space := SensorDescription{Key: KeySpaceTotal}
	v, ok := space.ResolveValue(s)
	require.True(t, ok)
	assert.EqualValues(t, 100, v)

	lib := SensorDescription{Key: "u1_used", RepositoryCode: "u1", CustomKey: KeySize}
	v, ok = lib.ResolveValue(s)
	require.True(t, ok)
	assert.EqualValues(t, 10, v)

	missing := SensorDescription{Key: "u9_used", RepositoryCode: "u9", CustomKey: KeySize}
	_, ok = missing.ResolveValue(s)
	assert.False(t, ok)
}

func TestNewDeviceInfo(t *testing.T) {
	d := NewDeviceInfo("alice", "http://seafile.local", "9.0.2")
	assert.Equal(t, "service", d.EntryType)
	assert.Equal(t, [][2]string{{"seafile", "alice"}}, d.Identifiers)
	assert.Equal(t, "Seafile Ltd.", d.Manufacturer)
	assert.Equal(t, "http://seafile.local", d.ConfigurationURL)
}

package diagnostics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dm/sfm-go/internal/client"
	"github.com/dm/sfm-go/internal/client/clienttest"
	"github.com/dm/sfm-go/internal/engine"
	"github.com/dm/sfm-go/internal/host"
)

func TestRedact(t *testing.T) {
	in := map[string]any{
		"url":      "http://seafile.local",
		"password": "secret",
		"email":    "",
		"token":    nil,
		"title":    "keep",
		"nested": map[string]any{
			"owner": "alice@example.com",
			"size":  float64(10),
		},
		"list": []any{
			map[string]any{"modifier_email": "bob@example.com", "name": "a.jpg"},
			"plain",
		},
	}

	got := Redact(in).(map[string]any)

	assert.Equal(t, Redacted, got["url"])
	assert.Equal(t, Redacted, got["password"])
	assert.Equal(t, "", got["email"])
	assert.Nil(t, got["token"])
	assert.Equal(t, "keep", got["title"])
	assert.Equal(t, Redacted, got["nested"].(map[string]any)["owner"])
	assert.Equal(t, float64(10), got["nested"].(map[string]any)["size"])
	list := got["list"].([]any)
	assert.Equal(t, Redacted, list[0].(map[string]any)["modifier_email"])
	assert.Equal(t, "a.jpg", list[0].(map[string]any)["name"])
	assert.Equal(t, "plain", list[1])

	assert.Equal(t, "secret", in["password"], "input is not modified")
}

func TestRedact_RedactsWholeSubtree(t *testing.T) {
	got := Redact(map[string]any{"owner": map[string]any{"name": "x"}}).(map[string]any)
	assert.Equal(t, Redacted, got["owner"])
}

func TestExport(t *testing.T) {
	mc := &clienttest.MockClient{
		AccountFn: func(context.Context) (*client.AccountInfo, error) {
			return &client.AccountInfo{Total: clienttest.Size(100), AvatarURL: clienttest.Str("http://s/a.png")}, nil
		},
		LibrariesFn: func(context.Context) ([]client.Library, error) {
			return []client.Library{{ID: "u1", Name: "A", Size: 10}}, nil
		},
	}
	u, err := engine.NewUpdater(engine.UpdaterConfig{URL: "http://s", Username: "alice", Client: mc})
	require.NoError(t, err)
	u.Refresh(context.Background())

	acc := &host.Account{
		EntryID: "e1",
		Updater: u,
		Config: map[string]any{
			"url":           "http://s",
			"username":      "alice",
			"password":      "pw",
			"scan_interval": 7,
		},
	}

	out, err := Export(acc)
	require.NoError(t, err)

	config := out["config_entry"].(map[string]any)
	assert.Equal(t, Redacted, config["url"])
	assert.Equal(t, Redacted, config["username"])
	assert.Equal(t, Redacted, config["password"])
	assert.Equal(t, float64(7), config["scan_interval"])

	data := out["data"].(map[string]any)
	assert.Equal(t, true, data["state"])
	assert.Equal(t, Redacted, data["avatar_url"])
	assert.Equal(t, float64(100), data["space_total"])

	requests := out["requests"].(map[string]any)
	assert.Contains(t, requests, "server-info")

	assert.Equal(t, []string{"space_total", "u1_used"}, out["sensors"])
}

func TestExport_EmptySections(t *testing.T) {
	mc := &clienttest.MockClient{}
	u, err := engine.NewUpdater(engine.UpdaterConfig{URL: "http://s", Username: "alice", Client: mc})
	require.NoError(t, err)

	out, err := Export(&host.Account{EntryID: "e1", Updater: u})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{}, out["config_entry"])
	assert.NotContains(t, out, "sensors")
	assert.Equal(t, false, out["data"].(map[string]any)["state"])
}

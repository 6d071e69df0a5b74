package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dm/sfm-go/internal/client"
	"github.com/dm/sfm-go/internal/client/clienttest"
	"github.com/dm/sfm-go/internal/engine"
	"github.com/dm/sfm-go/internal/entity"
	"github.com/dm/sfm-go/internal/host"
)

const repoID = "4d2b7a66-8e2c-4d3f-9b1a-2f6c7e9d0a11"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mc := &clienttest.MockClient{
		ServerFn: func(context.Context) (*client.ServerInfo, error) {
			return &client.ServerInfo{Version: clienttest.Str("9.0.2")}, nil
		},
		AccountFn: func(context.Context) (*client.AccountInfo, error) {
			return &client.AccountInfo{Total: clienttest.Size(100), Usage: clienttest.Size(40)}, nil
		},
		LibrariesFn: func(context.Context) ([]client.Library, error) {
			return []client.Library{{ID: repoID, Name: "Photos", Size: 40}}, nil
		},
		DirectoriesFn: func(context.Context, string, string) ([]client.DirEntry, error) {
			return []client.DirEntry{
				{Type: "dir", Name: "Trips"},
				{Type: "file", Name: "a.jpg", MTime: 1},
			}, nil
		},
	}
	u, err := engine.NewUpdater(engine.UpdaterConfig{URL: "http://s", Username: "alice", Client: mc})
	require.NoError(t, err)

	states := entity.NewStates()
	platform := entity.NewPlatform("e1", u, states)
	platform.Start()
	u.Refresh(context.Background())

	accounts := host.NewRegistry()
	require.NoError(t, accounts.Add(&host.Account{
		EntryID:  "e1",
		Updater:  u,
		Platform: platform,
		Config:   map[string]any{"url": "http://s", "username": "alice"},
	}))

	s := New(Options{Accounts: accounts, States: states, ExternalURL: "http://local", Version: "1.0.0"})
	srv := httptest.NewServer(s.Router())
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url) //nolint:noctx
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if out != nil {
		require.NoError(t, json.Unmarshal(body, out), string(body))
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	var info map[string]string
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/seafile/health", &info))
	assert.Equal(t, "1.0.0", info["component_version"])
	assert.Equal(t, "9.0.2", info["version"])
	assert.Equal(t, "ok", info["alice"])
}

func TestBrowseRootAndLibrary(t *testing.T) {
	srv := newTestServer(t)

	var root map[string]any
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/seafile/media", &root))
	assert.Equal(t, "Seafile", root["title"])

	var lib map[string]any
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/seafile/media/e1/"+repoID, &lib))
	assert.Equal(t, "Photos", lib["title"])
	children := lib["children"].([]any)
	require.Len(t, children, 2)
	assert.Equal(t, "e1/"+repoID+"/Trips", children[0].(map[string]any)["media_content_id"])
	assert.Equal(t, "http://local/api/seafile/thumbnail/e1/"+repoID+"/256/a.jpg", children[1].(map[string]any)["thumbnail"])
}

func TestBrowseErrors(t *testing.T) {
	srv := newTestServer(t)

	var body map[string]string
	assert.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+"/api/seafile/media/e1/bad", &body))
	assert.Equal(t, "Unable to find library with id: bad", body["error"])

	assert.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+"/api/seafile/media/missing", &body))
	assert.Equal(t, "Unable to find entry with id: missing", body["error"])
}

func TestResolve(t *testing.T) {
	srv := newTestServer(t)

	var play map[string]string
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/seafile/resolve/e1/"+repoID+"/Music/song.mp3", &play))
	assert.Equal(t, "http://mock/files//Music/song.mp3", play["url"])
	assert.Equal(t, "audio/mpeg", play["mime_type"])
}

func TestDiagnostics(t *testing.T) {
	srv := newTestServer(t)

	var out map[string]any
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/seafile/diagnostics/e1", &out))
	assert.Equal(t, "**REDACTED**", out["config_entry"].(map[string]any)["url"])
	assert.Len(t, out["sensors"], 3)

	assert.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+"/api/seafile/diagnostics/missing", nil))
}

func TestStates(t *testing.T) {
	srv := newTestServer(t)

	var states []entity.State
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/seafile/states", &states))
	require.Len(t, states, 4)
	ids := make([]string, 0, len(states))
	for _, st := range states {
		ids = append(ids, st.EntityID)
	}
	assert.Contains(t, ids, "binary_sensor.seafile_alice_state")
}

func TestThumbnailRouteMounted(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/seafile/thumbnail/e1/" + repoID + "/256/a.jpg") //nolint:noctx
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/jpeg", resp.Header.Get("Content-Type"))
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/metrics") //nolint:noctx
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "seafile_updater_cycles_total")
}

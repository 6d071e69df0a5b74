package engine

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dm/sfm-go/internal/client"
	"github.com/dm/sfm-go/internal/client/clienttest"
	"github.com/dm/sfm-go/internal/model"
)

func newTestUpdater(t *testing.T, mc *clienttest.MockClient) *Updater {
	t.Helper()
	u, err := NewUpdater(UpdaterConfig{
		URL:      "http://seafile.local/",
		Username: "alice",
		Client:   mc,
	})
	require.NoError(t, err)
	return u
}

// fullAccount returns a mock that answers every stage the way a healthy
// server with two libraries would.
func fullAccount() *clienttest.MockClient {
	return &clienttest.MockClient{
		ServerFn: func(context.Context) (*client.ServerInfo, error) {
			return &client.ServerInfo{Version: clienttest.Str("9.0.2")}, nil
		},
		AccountFn: func(context.Context) (*client.AccountInfo, error) {
			return &client.AccountInfo{
				Total:     clienttest.Size(100),
				Usage:     clienttest.Size(50),
				AvatarURL: clienttest.Str("http://seafile.local/avatar.png"),
			}, nil
		},
		LibrariesFn: func(context.Context) ([]client.Library, error) {
			return []client.Library{
				{ID: "u1", Name: "A", Size: 10},
				{ID: "u2", Name: "B", Size: 20},
			}, nil
		},
	}
}

func TestNewUpdater_Defaults(t *testing.T) {
	u := newTestUpdater(t, &clienttest.MockClient{})

	assert.Equal(t, "http://seafile.local", u.URL())
	assert.Equal(t, DefaultScanInterval, u.Interval())
	assert.Equal(t, http.StatusBadGateway, u.Code())
	assert.False(t, u.Data().State)
	assert.Empty(t, u.Data().Repositories)
}

func TestRefresh_FirstCycle(t *testing.T) {
	mc := fullAccount()
	u := newTestUpdater(t, mc)

	code := u.Refresh(context.Background())
	require.Equal(t, http.StatusOK, code)

	data := u.Data()
	assert.True(t, data.State)
	assert.Equal(t, "9.0.2", data.Version)
	assert.Equal(t, "http://seafile.local/avatar.png", data.AvatarURL)
	assert.EqualValues(t, 100, data.Space[model.KeySpaceTotal])
	assert.EqualValues(t, 50, data.Space[model.KeySpaceUsage])
	assert.Equal(t, map[string]model.Repository{
		"u1": {Size: 10, Name: "A"},
		"u2": {Size: 20, Name: "B"},
	}, data.Repositories)

	assert.Equal(t, []string{"space_total", "space_usage", "u1_used", "u2_used"}, u.Sensors().Keys())
	assert.Equal(t, 1, mc.Calls("Login"))

	total, ok := u.Sensors().Get("space_total")
	require.True(t, ok)
	assert.Equal(t, "Space total", total.Name)
	assert.Equal(t, model.CategoryDiagnostic, total.Category)
	assert.Equal(t, "mdi:harddisk", total.Icon)
	assert.Equal(t, "B", total.Unit)
	assert.Equal(t, "total", total.StateClass)
	assert.Equal(t, "9.0.2", total.Device.SWVersion)

	lib, ok := u.Sensors().Get("u1_used")
	require.True(t, ok)
	assert.Equal(t, "A used", lib.Name)
	assert.Equal(t, "u1", lib.RepositoryCode)
	assert.Equal(t, model.KeySize, lib.CustomKey)
	assert.Equal(t, model.CategoryNone, lib.Category)
}

func TestRefresh_SkipsLoginWhenAuthenticated(t *testing.T) {
	mc := fullAccount()
	u := newTestUpdater(t, mc)

	u.Refresh(context.Background())
	u.Refresh(context.Background())
	assert.Equal(t, 1, mc.Calls("Login"))
	assert.Equal(t, 2, mc.Calls("Server"))
}

func TestRefresh_LoginRequestError(t *testing.T) {
	mc := fullAccount()
	mc.LoginFn = func(context.Context) error {
		return &client.RequestError{Message: "non_field_errors: bad creds"}
	}
	u := newTestUpdater(t, mc)

	assert.Equal(t, http.StatusForbidden, u.Refresh(context.Background()))
	assert.False(t, u.Data().State)
	assert.Zero(t, mc.Calls("Server"), "stages must not run after a failed login")

	u.Refresh(context.Background())
	assert.Equal(t, 2, mc.Calls("Login"))
}

func TestRefresh_LoginConnectionError(t *testing.T) {
	mc := fullAccount()
	mc.LoginFn = func(context.Context) error {
		return &client.ConnectionError{Err: errors.New("refused")}
	}
	u := newTestUpdater(t, mc)

	assert.Equal(t, http.StatusNotFound, u.Refresh(context.Background()))
	assert.False(t, u.Data().State)
}

func TestRefresh_LibrariesFailureKeepsEarlierStages(t *testing.T) {
	mc := fullAccount()
	u := newTestUpdater(t, mc)
	require.Equal(t, http.StatusOK, u.Refresh(context.Background()))

	mc.ServerFn = func(context.Context) (*client.ServerInfo, error) {
		return &client.ServerInfo{Version: clienttest.Str("9.0.3")}, nil
	}
	mc.LibrariesFn = func(context.Context) ([]client.Library, error) {
		return nil, &client.ConnectionError{Err: errors.New("timeout")}
	}

	assert.Equal(t, http.StatusNotFound, u.Refresh(context.Background()))
	data := u.Data()
	assert.False(t, data.State)
	assert.Equal(t, "9.0.3", data.Version, "server stage result of the failed cycle is kept")
	assert.Len(t, data.Repositories, 2, "repositories from earlier cycles are kept")

	mc.LibrariesFn = nil
	u.Refresh(context.Background())
	assert.Equal(t, 2, mc.Calls("Login"), "the cycle after a failure logs in again")
}

func TestRefresh_UnclassifiedErrorCountsAsConnectionError(t *testing.T) {
	mc := fullAccount()
	mc.AccountFn = func(context.Context) (*client.AccountInfo, error) {
		return nil, clienttest.ErrMockFailure
	}
	u := newTestUpdater(t, mc)

	assert.Equal(t, http.StatusNotFound, u.Refresh(context.Background()))
}

func TestRefresh_RepositoriesNeverShrink(t *testing.T) {
	mc := fullAccount()
	u := newTestUpdater(t, mc)
	u.Refresh(context.Background())

	mc.LibrariesFn = func(context.Context) ([]client.Library, error) {
		return []client.Library{{ID: "u2", Name: "B", Size: 25}}, nil
	}
	u.Refresh(context.Background())

	data := u.Data()
	assert.Len(t, data.Repositories, 2)
	assert.EqualValues(t, 25, data.Repositories["u2"].Size)
	assert.EqualValues(t, 10, data.Repositories["u1"].Size)
}

func TestRefresh_NegativeSpaceIsSkipped(t *testing.T) {
	mc := fullAccount()
	mc.AccountFn = func(context.Context) (*client.AccountInfo, error) {
		return &client.AccountInfo{Total: clienttest.Size(-2), Usage: clienttest.Size(7)}, nil
	}
	u := newTestUpdater(t, mc)
	u.Refresh(context.Background())

	data := u.Data()
	assert.NotContains(t, data.Space, model.KeySpaceTotal)
	assert.EqualValues(t, 7, data.Space[model.KeySpaceUsage])
	_, ok := u.Sensors().Get("space_total")
	assert.False(t, ok)
}

func TestRefresh_OnlyCheckRunsServerStage(t *testing.T) {
	mc := fullAccount()
	u, err := NewUpdater(UpdaterConfig{URL: "http://s", Username: "alice", Client: mc, OnlyCheck: true})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, u.Refresh(context.Background()))
	assert.Zero(t, mc.Calls("Account"))
	assert.Zero(t, mc.Calls("Libraries"))
	assert.Zero(t, u.Sensors().Len())
	assert.Equal(t, "9.0.2", u.Data().Version)
}

func TestSensors_AnnouncedOnce(t *testing.T) {
	u := newTestUpdater(t, fullAccount())

	var mu sync.Mutex
	var announced []string
	unsub := u.OnNewSensor(func(d model.SensorDescription) {
		mu.Lock()
		announced = append(announced, d.Key)
		mu.Unlock()
	})
	defer unsub()

	u.Refresh(context.Background())
	u.Refresh(context.Background())

	assert.Equal(t, []string{"space_total", "space_usage", "u1_used", "u2_used"}, announced)
}

func TestSensors_NoListenerStillRegisters(t *testing.T) {
	u := newTestUpdater(t, fullAccount())
	u.Refresh(context.Background())
	assert.Equal(t, 4, u.Sensors().Len())
}

func TestSubscribe_ReceivesSnapshots(t *testing.T) {
	mc := fullAccount()
	u := newTestUpdater(t, mc)

	var states []bool
	unsub := u.Subscribe(func(s model.Snapshot) { states = append(states, s.State) })

	u.Refresh(context.Background())
	mc.ServerFn = func(context.Context) (*client.ServerInfo, error) {
		return nil, &client.ConnectionError{}
	}
	u.Refresh(context.Background())
	unsub()
	u.Refresh(context.Background())

	assert.Equal(t, []bool{true, false}, states)
}

func TestStop_DropsListeners(t *testing.T) {
	u := newTestUpdater(t, fullAccount())

	calls := 0
	u.Subscribe(func(model.Snapshot) { calls++ })
	u.OnNewSensor(func(model.SensorDescription) { calls++ })
	u.Stop()

	u.Refresh(context.Background())
	assert.Zero(t, calls)
}

func TestRefresh_SingleFlight(t *testing.T) {
	release := make(chan struct{})
	var serverCalls atomic.Int32

	mc := fullAccount()
	mc.ServerFn = func(context.Context) (*client.ServerInfo, error) {
		serverCalls.Add(1)
		<-release
		return &client.ServerInfo{}, nil
	}
	u := newTestUpdater(t, mc)

	var wg sync.WaitGroup
	codes := make([]int, 5)
	for i := range codes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			codes[i] = u.Refresh(context.Background())
		}()
	}

	require.Eventually(t, func() bool { return serverCalls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, serverCalls.Load())
	for _, c := range codes {
		assert.Equal(t, http.StatusOK, c)
	}
}

func TestRefresh_CallerCancelDoesNotFailSharedCycle(t *testing.T) {
	var gate atomic.Pointer[chan struct{}]
	mc := fullAccount()
	mc.ServerFn = func(ctx context.Context) (*client.ServerInfo, error) {
		if ch := gate.Load(); ch != nil {
			<-*ch
		}
		if err := ctx.Err(); err != nil {
			return nil, &client.ConnectionError{Err: err}
		}
		return &client.ServerInfo{Version: clienttest.Str("9.0.2")}, nil
	}
	u := newTestUpdater(t, mc)
	require.Equal(t, http.StatusOK, u.Refresh(context.Background()))

	release := make(chan struct{})
	gate.Store(&release)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	var cancelled, background int
	wg.Add(2)
	go func() {
		defer wg.Done()
		cancelled = u.Refresh(ctx)
	}()
	require.Eventually(t, func() bool { return mc.Calls("Server") == 2 }, time.Second, 5*time.Millisecond)
	go func() {
		defer wg.Done()
		background = u.Refresh(context.Background())
	}()

	cancel()
	close(release)
	wg.Wait()

	assert.Equal(t, http.StatusOK, cancelled)
	assert.Equal(t, http.StatusOK, background)
	assert.True(t, u.Data().State)
	assert.Equal(t, http.StatusOK, u.Code())
	assert.Equal(t, 1, mc.Calls("Login"), "no re-login after a cancelled caller")
}

func TestUsageHistory_PushedOnSuccess(t *testing.T) {
	mc := fullAccount()
	u := newTestUpdater(t, mc)
	u.Refresh(context.Background())

	mc.ServerFn = func(context.Context) (*client.ServerInfo, error) {
		return nil, &client.ConnectionError{}
	}
	u.Refresh(context.Background())

	assert.Equal(t, []float64{50}, u.UsageValues("usage"))
	assert.Equal(t, []float64{50}, u.UsageValues("percent"))
}

func TestDeviceInfo(t *testing.T) {
	u := newTestUpdater(t, fullAccount())
	u.Refresh(context.Background())

	d := u.DeviceInfo()
	assert.Equal(t, "alice", d.Name)
	assert.Equal(t, "9.0.2", d.SWVersion)
	assert.Equal(t, "http://seafile.local", d.ConfigurationURL)
}

func TestRun_StopsOnCancel(t *testing.T) {
	mc := fullAccount()
	u, err := NewUpdater(UpdaterConfig{URL: "http://s", Username: "alice", Client: mc, ScanInterval: 10 * time.Millisecond})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- u.Run(ctx) }()

	require.Eventually(t, func() bool { return mc.Calls("Server") >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

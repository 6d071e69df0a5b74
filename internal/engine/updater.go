package engine

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/dm/sfm-go/internal/client"
	"github.com/dm/sfm-go/internal/logging"
	"github.com/dm/sfm-go/internal/metrics"
	"github.com/dm/sfm-go/internal/model"
)

// DefaultScanInterval is the default polling period and also the smallest
// one accepted by configuration.
const DefaultScanInterval = 7 * time.Second

const (
	sizeIcon       = "mdi:harddisk"
	sizeUnit       = "B"
	sizeStateClass = "total"
)

// UpdaterConfig holds configuration for an Updater.
type UpdaterConfig struct {
	URL          string
	Username     string
	Password     string
	ScanInterval time.Duration
	Timeout      time.Duration
	// InsecureSkipVerify disables TLS certificate checks for self-signed
	// servers.
	InsecureSkipVerify bool
	// OnlyCheck runs just the server stage. Used to verify credentials.
	OnlyCheck bool
	// Client overrides the API client built from URL and credentials.
	Client client.SeafileClient
}

// Updater polls one Seafile account and publishes a Snapshot after every
// cycle. Concurrent Refresh calls share a single in-flight cycle.
type Updater struct {
	client    client.SeafileClient
	url       string
	username  string
	interval  time.Duration
	onlyCheck bool
	log       zerolog.Logger

	flight singleflight.Group

	// Only touched from inside a cycle; singleflight serializes cycles.
	needsLogin bool
	firstCycle bool

	mu      sync.RWMutex
	data    model.Snapshot
	code    int
	history *model.UsageHistory

	sensors *Registry

	listenersMu sync.Mutex
	listeners   map[int]func(model.Snapshot)
	nextID      int
}

// NewUpdater constructs an Updater. The trailing "/" of the URL is dropped.
func NewUpdater(cfg UpdaterConfig) (*Updater, error) {
	cfg.URL = strings.TrimSuffix(cfg.URL, "/")
	if cfg.ScanInterval <= 0 {
		cfg.ScanInterval = DefaultScanInterval
	}

	c := cfg.Client
	if c == nil {
		dc, err := client.NewDefaultClient(client.ClientConfig{
			URL:      cfg.URL,
			Username: cfg.Username,
			Password: cfg.Password,
			Timeout:  cfg.Timeout,

			InsecureSkipVerify: cfg.InsecureSkipVerify,
		})
		if err != nil {
			return nil, fmt.Errorf("NewUpdater: %w", err)
		}
		c = dc
	}

	return &Updater{
		client:     c,
		url:        cfg.URL,
		username:   cfg.Username,
		interval:   cfg.ScanInterval,
		onlyCheck:  cfg.OnlyCheck,
		log:        logging.With().Str("component", "updater").Str("account", cfg.Username).Logger(),
		needsLogin: true,
		firstCycle: true,
		data:       model.NewSnapshot(),
		code:       http.StatusBadGateway,
		history:    model.NewUsageHistory(0),
		sensors:    NewRegistry(),
		listeners:  make(map[int]func(model.Snapshot)),
	}, nil
}

// Client returns the API client owned by the updater.
func (u *Updater) Client() client.SeafileClient { return u.client }

// Username returns the account name.
func (u *Updater) Username() string { return u.username }

// URL returns the server URL without a trailing slash.
func (u *Updater) URL() string { return u.url }

// Interval returns the polling period.
func (u *Updater) Interval() time.Duration { return u.interval }

// Sensors returns the descriptor registry.
func (u *Updater) Sensors() *Registry { return u.sensors }

// Data returns a copy of the latest snapshot.
func (u *Updater) Data() model.Snapshot {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.data.Clone()
}

// Code returns the outcome of the last cycle: 200, 403 or 404. Before the
// first cycle it is 502.
func (u *Updater) Code() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.code
}

// UsageValues returns the named usage series, oldest first.
func (u *Updater) UsageValues(field string) []float64 {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.history.Values(field)
}

// DeviceInfo describes the account using the latest known server version.
func (u *Updater) DeviceInfo() model.DeviceInfo {
	u.mu.RLock()
	version := u.data.Version
	u.mu.RUnlock()
	return model.NewDeviceInfo(u.username, u.url, version)
}

// Subscribe registers fn to receive every published snapshot and returns a
// function that removes it.
func (u *Updater) Subscribe(fn func(model.Snapshot)) func() {
	u.listenersMu.Lock()
	defer u.listenersMu.Unlock()
	id := u.nextID
	u.nextID++
	u.listeners[id] = fn
	return func() {
		u.listenersMu.Lock()
		defer u.listenersMu.Unlock()
		delete(u.listeners, id)
	}
}

// OnNewSensor registers fn for descriptors created from now on.
func (u *Updater) OnNewSensor(fn func(model.SensorDescription)) func() {
	return u.sensors.Subscribe(fn)
}

// Stop drops every listener. The updater can still be refreshed.
func (u *Updater) Stop() {
	u.listenersMu.Lock()
	clear(u.listeners)
	u.listenersMu.Unlock()
	u.sensors.clearListeners()
}

// Run refreshes immediately and then once per scan interval until ctx is
// done.
func (u *Updater) Run(ctx context.Context) error {
	u.Refresh(ctx)

	ticker := time.NewTicker(u.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			u.Refresh(ctx)
		}
	}
}

// Refresh runs one update cycle, or waits for the one already running, and
// returns its outcome code. The cycle is shared, so it ignores the caller's
// cancellation; each request is still bounded by the client timeout.
func (u *Updater) Refresh(ctx context.Context) int {
	cycleCtx := context.WithoutCancel(ctx)
	v, _, _ := u.flight.Do("refresh", func() (any, error) {
		return u.cycle(cycleCtx), nil
	})
	return v.(int)
}

func (u *Updater) cycle(ctx context.Context) int {
	start := time.Now()

	next := u.Data()
	var added []model.SensorDescription

	code := http.StatusOK
	err := u.runStages(ctx, &next, &added)
	switch {
	case err == nil:
		u.needsLogin = false
		u.firstCycle = false
	case client.IsRequestError(err):
		code = http.StatusForbidden
		u.needsLogin = true
	default:
		code = http.StatusNotFound
		u.needsLogin = true
	}

	next.State = code >= 200 && code < 300
	next.UpdatedAt = time.Now()

	u.mu.Lock()
	u.data = next
	u.code = code
	if next.State {
		if total, ok := next.Space[model.KeySpaceTotal]; ok {
			u.history.Push(model.UsagePoint{
				Timestamp: next.UpdatedAt,
				Usage:     next.Space[model.KeySpaceUsage],
				Total:     total,
			})
		}
	}
	u.mu.Unlock()

	metrics.ObserveCycle(u.username, code, next.State, time.Since(start))
	metrics.RegisteredSensors.WithLabelValues(u.username).Set(float64(u.sensors.Len()))

	if err != nil {
		u.log.Warn().Err(err).Int("code", code).Msg("update failed")
	} else {
		u.log.Debug().Int("repositories", len(next.Repositories)).Dur("took", time.Since(start)).Msg("update finished")
	}

	u.sensors.announce(added)
	u.notify(next)

	return code
}

func (u *Updater) notify(s model.Snapshot) {
	u.listenersMu.Lock()
	fns := make([]func(model.Snapshot), 0, len(u.listeners))
	for _, fn := range u.listeners {
		fns = append(fns, fn)
	}
	u.listenersMu.Unlock()

	for _, fn := range fns {
		fn(s.Clone())
	}
}

func (u *Updater) runStages(ctx context.Context, next *model.Snapshot, added *[]model.SensorDescription) error {
	if u.needsLogin || u.firstCycle {
		if err := u.client.Login(ctx); err != nil {
			return err
		}
	}

	if err := u.prepareServer(ctx, next); err != nil {
		return err
	}
	if u.onlyCheck {
		return nil
	}
	if err := u.prepareAccount(ctx, next, added); err != nil {
		return err
	}
	return u.prepareLibraries(ctx, next, added)
}

func (u *Updater) prepareServer(ctx context.Context, next *model.Snapshot) error {
	info, err := u.client.Server(ctx)
	if err != nil {
		return err
	}
	if info.Version != nil {
		next.Version = *info.Version
	}
	return nil
}

func (u *Updater) prepareAccount(ctx context.Context, next *model.Snapshot, added *[]model.SensorDescription) error {
	info, err := u.client.Account(ctx)
	if err != nil {
		return err
	}
	if info.AvatarURL != nil {
		next.AvatarURL = *info.AvatarURL
	}

	for _, field := range []struct {
		code  string
		value *client.Bytes
	}{
		{"total", info.Total},
		{"usage", info.Usage},
	} {
		if field.value == nil || *field.value < 0 {
			continue
		}
		key := "space_" + field.code
		next.Space[key] = int64(*field.value)
		u.addSizeSensor(next, added, model.SensorDescription{
			Key:      key,
			Name:     "Space " + field.code,
			Category: model.CategoryDiagnostic,
		})
	}
	return nil
}

func (u *Updater) prepareLibraries(ctx context.Context, next *model.Snapshot, added *[]model.SensorDescription) error {
	libs, err := u.client.Libraries(ctx)
	if err != nil {
		return err
	}
	for _, lib := range libs {
		next.Repositories[lib.ID] = model.Repository{Size: int64(lib.Size), Name: lib.Name}
		u.addSizeSensor(next, added, model.SensorDescription{
			Key:            lib.ID + "_used",
			Name:           lib.Name + " used",
			RepositoryCode: lib.ID,
			CustomKey:      model.KeySize,
		})
	}
	return nil
}

// addSizeSensor registers a byte-count sensor the first time its key is
// seen. The device info captures the server version known at that moment.
func (u *Updater) addSizeSensor(next *model.Snapshot, added *[]model.SensorDescription, desc model.SensorDescription) {
	if _, ok := u.sensors.Get(desc.Key); ok {
		return
	}
	desc.Icon = sizeIcon
	desc.Unit = sizeUnit
	desc.StateClass = sizeStateClass
	desc.EnabledByDefault = true
	desc.Device = model.NewDeviceInfo(u.username, u.url, next.Version)

	if u.sensors.Add(desc) {
		*added = append(*added, desc)
	}
}

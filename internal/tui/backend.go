package tui

import (
	"context"
	"time"

	"github.com/dm/sfm-go/internal/format"
	"github.com/dm/sfm-go/internal/host"
	"github.com/dm/sfm-go/internal/media"
	"github.com/dm/sfm-go/internal/model"
)

// Backend is everything the dashboard reads from or triggers.
type Backend interface {
	Accounts() []AccountView
	Refresh(ctx context.Context, entryID string) int
	Browse(ctx context.Context, identifier string) (*media.BrowseMedia, error)
	Resolve(ctx context.Context, identifier string) (*media.PlayMedia, error)
}

// AccountView is a copy of one account's state taken for rendering.
type AccountView struct {
	EntryID  string
	Username string
	URL      string
	Code     int
	Interval time.Duration
	Data     model.Snapshot
	// Usage holds space usage percentages, oldest first.
	Usage   []float64
	Sensors []SensorRow
}

// Reachable reports whether the last cycle succeeded.
func (a AccountView) Reachable() bool { return a.Data.State }

// SensorRow is one line of the sensor table.
type SensorRow struct {
	EntityID  string
	Name      string
	Value     string
	Raw       float64
	Category  string
	Available bool
}

// HostBackend reads accounts from a host registry.
type HostBackend struct {
	accounts *host.Registry
	media    *media.Source
}

// NewHostBackend returns a Backend over accounts. Media requests go
// through src.
func NewHostBackend(accounts *host.Registry, src *media.Source) *HostBackend {
	return &HostBackend{accounts: accounts, media: src}
}

// Accounts implements Backend.
func (b *HostBackend) Accounts() []AccountView {
	all := b.accounts.All()
	out := make([]AccountView, 0, len(all))
	for _, acc := range all {
		out = append(out, viewOf(acc))
	}
	return out
}

// Refresh implements Backend.
func (b *HostBackend) Refresh(ctx context.Context, entryID string) int {
	acc, ok := b.accounts.Get(entryID)
	if !ok {
		return 0
	}
	return acc.Updater.Refresh(ctx)
}

// Browse implements Backend.
func (b *HostBackend) Browse(ctx context.Context, identifier string) (*media.BrowseMedia, error) {
	return b.media.Browse(ctx, identifier)
}

// Resolve implements Backend.
func (b *HostBackend) Resolve(ctx context.Context, identifier string) (*media.PlayMedia, error) {
	return b.media.Resolve(ctx, identifier)
}

func viewOf(acc *host.Account) AccountView {
	u := acc.Updater
	v := AccountView{
		EntryID:  acc.EntryID,
		Username: u.Username(),
		URL:      u.URL(),
		Code:     u.Code(),
		Interval: u.Interval(),
		Data:     u.Data(),
		Usage:    u.UsageValues("percent"),
	}

	if acc.Platform != nil {
		for _, e := range acc.Platform.Entities() {
			st := e.State()
			v.Sensors = append(v.Sensors, SensorRow{
				EntityID:  st.EntityID,
				Name:      st.Name,
				Value:     format.FormatValue(st.Value, st.Unit),
				Raw:       rawValue(st.Value),
				Category:  string(st.Category),
				Available: st.Available,
			})
		}
		return v
	}

	for _, desc := range u.Sensors().All() {
		value, _ := desc.ResolveValue(v.Data)
		v.Sensors = append(v.Sensors, SensorRow{
			EntityID:  desc.Key,
			Name:      desc.Name,
			Value:     format.FormatValue(value, desc.Unit),
			Raw:       rawValue(value),
			Category:  string(desc.Category),
			Available: v.Data.State,
		})
	}
	return v
}

func rawValue(v any) float64 {
	switch t := v.(type) {
	case int64:
		return float64(t)
	case float64:
		return t
	case bool:
		if t {
			return 1
		}
	}
	return 0
}

// Package health reports whether each configured account is reachable.
package health

import "github.com/dm/sfm-go/internal/host"

const (
	StatusOK          = "ok"
	StatusUnreachable = "unreachable"
)

// Info returns component_version, the first known server version and one
// ok/unreachable entry per account username.
func Info(accounts *host.Registry, componentVersion string) map[string]string {
	info := map[string]string{
		"component_version": componentVersion,
		"version":           "",
	}
	for _, acc := range accounts.All() {
		data := acc.Updater.Data()
		if info["version"] == "" {
			info["version"] = data.Version
		}
		status := StatusUnreachable
		if data.State {
			status = StatusOK
		}
		info[acc.Updater.Username()] = status
	}
	return info
}

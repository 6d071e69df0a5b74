// Package diagnostics builds a redacted support dump for one account.
package diagnostics

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/dm/sfm-go/internal/host"
)

// Redacted replaces the value of every sensitive key.
const Redacted = "**REDACTED**"

// ToRedact lists the keys whose values never leave the process.
var ToRedact = map[string]struct{}{
	"token":                  {},
	"url":                    {},
	"password":               {},
	"username":               {},
	"email":                  {},
	"avatar_url":             {},
	"contact_email":          {},
	"owner":                  {},
	"owner_contact_email":    {},
	"modifier_email":         {},
	"modifier_contact_email": {},
}

// Redact returns a copy of v with sensitive values replaced. Maps and
// slices are walked recursively; nil values and empty strings are kept.
func Redact(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			switch {
			case val == nil:
				out[k] = nil
			case val == "":
				out[k] = ""
			default:
				if _, ok := ToRedact[k]; ok {
					out[k] = Redacted
				} else {
					out[k] = Redact(val)
				}
			}
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Redact(val)
		}
		return out
	}
	return v
}

// Export returns the diagnostics document of acc:
// config_entry, data, requests and sensors. Sections without content are
// left out.
func Export(acc *host.Account) (map[string]any, error) {
	config, err := generic(acc.Config)
	if err != nil {
		return nil, fmt.Errorf("Export config: %w", err)
	}
	out := map[string]any{
		"config_entry": Redact(config),
	}

	data, err := generic(acc.Updater.Data().Map())
	if err != nil {
		return nil, fmt.Errorf("Export data: %w", err)
	}
	out["data"] = Redact(data)

	if records := acc.Updater.Client().Diagnostics(); len(records) > 0 {
		requests, err := generic(records)
		if err != nil {
			return nil, fmt.Errorf("Export requests: %w", err)
		}
		out["requests"] = Redact(requests)
	}

	if keys := acc.Updater.Sensors().Keys(); len(keys) > 0 {
		out["sensors"] = keys
	}
	return out, nil
}

// generic round-trips v through JSON so that Redact sees plain maps and
// slices regardless of the Go types involved.
func generic(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

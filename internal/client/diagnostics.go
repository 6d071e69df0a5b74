package client

import (
	"maps"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

const (
	messageSuccess    = "Successful request"
	messageConnection = "Connection error"
)

// DiagnosticRecord describes the most recent request made for one path.
type DiagnosticRecord struct {
	DateTime string `json:"date_time"`
	Message  string `json:"message"`
	// Content is the decoded JSON body when it parses, otherwise its text.
	Content any `json:"content"`
}

type diagnosticsLog struct {
	mu      sync.Mutex
	records map[string]DiagnosticRecord
	now     func() time.Time
}

func newDiagnosticsLog() *diagnosticsLog {
	return &diagnosticsLog{
		records: make(map[string]DiagnosticRecord),
		now:     time.Now,
	}
}

func (d *diagnosticsLog) record(path, message string, content []byte) {
	var decoded any
	if err := json.Unmarshal(content, &decoded); err != nil {
		decoded = string(content)
	}

	rec := DiagnosticRecord{
		DateTime: d.now().Truncate(time.Second).Format("2006-01-02T15:04:05"),
		Message:  message,
		Content:  decoded,
	}

	d.mu.Lock()
	d.records[path] = rec
	d.mu.Unlock()
}

func (d *diagnosticsLog) snapshot() map[string]DiagnosticRecord {
	d.mu.Lock()
	defer d.mu.Unlock()
	return maps.Clone(d.records)
}

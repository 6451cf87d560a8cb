// Package applog writes operational events (startup, migrations, tracing,
// shutdown) as one JSON object per line. HTTP access logs live in
// middleware.Logger.
package applog

import (
	"encoding/json"
	"io"
	"log"
	"os"
	"sync"
	"time"
)

var (
	mu     sync.Mutex
	logger = log.New(os.Stdout, "", 0)
)

// SetOutput redirects all events to w.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger.SetOutput(w)
}

// Write emits data with a ts field in loc. A missing level is derived from
// status: "error" becomes level error, anything else info.
func Write(loc *time.Location, data map[string]any) {
	if loc == nil {
		loc = time.UTC
	}
	data["ts"] = time.Now().In(loc).Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		if data["status"] == "error" {
			data["level"] = "error"
		} else {
			data["level"] = "info"
		}
	}

	b, err := json.Marshal(data)
	if err != nil {
		logger.Printf(`{"level":"error","msg":"failed to marshal log entry","error":%q}`, err.Error())
		return
	}
	mu.Lock()
	defer mu.Unlock()
	logger.Println(string(b))
}

// Info emits msg at level info with optional fields.
func Info(loc *time.Location, msg string, fields map[string]any) {
	entry := map[string]any{"level": "info", "msg": msg}
	for k, v := range fields {
		entry[k] = v
	}
	Write(loc, entry)
}

// Error emits msg at level error with err's message.
func Error(loc *time.Location, msg string, err error, fields map[string]any) {
	entry := map[string]any{"level": "error", "msg": msg}
	if err != nil {
		entry["error"] = err.Error()
	}
	for k, v := range fields {
		entry[k] = v
	}
	Write(loc, entry)
}

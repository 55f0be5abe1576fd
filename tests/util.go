// Package testutil holds helpers shared by the packages' tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/trezcool/masomo-dashboard/core"
	appfs "github.com/trezcool/masomo-dashboard/fs"
)

// LogEntry is one call recorded by LoggerMock.
type LogEntry struct {
	Level string
	Msg   string
	Args  []interface{}
}

// LoggerMock records every log call.
type LoggerMock struct {
	mu      sync.Mutex
	Entries []LogEntry
}

var _ core.Logger = (*LoggerMock)(nil)

func (l *LoggerMock) log(level, msg string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Entries = append(l.Entries, LogEntry{Level: level, Msg: msg, Args: args})
}

func (l *LoggerMock) Debug(msg string, args ...interface{}) { l.log("debug", msg, args) }
func (l *LoggerMock) Info(msg string, args ...interface{})  { l.log("info", msg, args) }
func (l *LoggerMock) Warn(msg string, args ...interface{})  { l.log("warn", msg, args) }
func (l *LoggerMock) Error(msg string, args ...interface{}) { l.log("error", msg, args) }
func (l *LoggerMock) Fatal(msg string, args ...interface{}) { l.log("fatal", msg, args) }

// Levels returns the level of every recorded entry, in order.
func (l *LoggerMock) Levels() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	res := make([]string, 0, len(l.Entries))
	for _, e := range l.Entries {
		res = append(res, e.Level)
	}
	return res
}

// EmailTemplates parses the embedded email templates.
func EmailTemplates(t *testing.T, conf *core.Config) *core.EmailTemplates {
	t.Helper()
	tmpls, err := core.ParseEmailTemplates(appfs.FS, appfs.EmailTemplatesDir, conf)
	if err != nil {
		t.Fatalf("EmailTemplates() failed: %v", err)
	}
	return tmpls
}

// MarshalObj encodes obj to JSON, failing the test on error.
func MarshalObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("MarshalObj() failed: %v", err)
	}
	return data
}

// JSONDiff returns a human-readable diff of two JSON documents, empty if they are equal.
func JSONDiff(b1, b2 []byte) (string, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return "", fmt.Errorf("decoding %q: %w", b1, err)
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return "", fmt.Errorf("decoding %q: %w", b2, err)
	}
	return cmp.Diff(j1, j2), nil
}

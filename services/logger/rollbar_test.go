package logsvc

import (
	"bytes"
	"errors"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/masomo-dashboard/core"
)

func TestRollbarLogger_prepare(t *testing.T) {
	l := NewRollbarLogger(log.New(new(bytes.Buffer), "", 0), core.NewTestConfig())
	err := errors.New("boom")

	tests := []struct {
		name string
		args []interface{}
		want []interface{}
	}{
		{name: "msg only", want: []interface{}{"oops"}},
		{name: "error", args: []interface{}{err}, want: []interface{}{"oops", err}},
		{
			name: "extras",
			args: []interface{}{err, map[string]interface{}{"draft": "d1"}},
			want: []interface{}{"oops", err, map[string]interface{}{"draft": "d1"}},
		},
		{
			name: "request merged into extras",
			args: []interface{}{map[string]interface{}{"draft": "d1"}, Request{Method: "POST", Path: "/v1/drafts", ID: "r1"}},
			want: []interface{}{"oops", map[string]interface{}{
				"draft":          "d1",
				"request_method": "POST",
				"request_path":   "/v1/drafts",
				"request_id":     "r1",
			}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, l.prepare("oops", tt.args))
		})
	}
}

func TestRollbarLogger_print(t *testing.T) {
	var buf bytes.Buffer
	l := NewRollbarLogger(log.New(&buf, "", 0), core.NewTestConfig())

	l.Warn("over allocated", map[string]interface{}{"draft": "d1"})
	assert.Equal(t, "WARN: over allocated\nmap[draft:d1]\n", buf.String())
}

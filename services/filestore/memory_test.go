package filestore

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-dashboard/core"
)

func TestMemory(t *testing.T) {
	origKey := newKey
	defer func() { newKey = origKey }()
	newKey = func() string { return "k1" }

	conf := core.NewTestConfig()
	conf.APIBaseURL = "http://api.test/"
	store := NewMemory(conf, 16)
	ctx := context.Background()

	tests := []struct {
		name        string
		fileName    string
		contentType string
		content     string
		wantURL     string
		wantType    string
		wantKey     string
		wantErr     error
	}{
		{
			name: "typed", fileName: "notes.txt", contentType: "text/plain", content: "hello",
			wantURL: "http://api.test/files/k1/notes.txt", wantKey: "k1/notes.txt", wantType: "text/plain",
		},
		{
			name: "detected type, escaped name", fileName: "../my notes.html", content: "<html></html>",
			wantURL: "http://api.test/files/k1/my%20notes.html", wantKey: "k1/my notes.html", wantType: "text/html; charset=utf-8",
		},
		{name: "too large", fileName: "big.bin", content: strings.Repeat("x", 17), wantErr: ErrTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := store.Put(ctx, tt.fileName, tt.contentType, strings.NewReader(tt.content))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantURL, u)

			f, err := store.Get(tt.wantKey)
			require.NoError(t, err)
			assert.Equal(t, tt.content, string(f.Content))
			assert.Equal(t, tt.wantType, f.ContentType)
		})
	}

	_, err := store.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = store.Put(canceled, "a.txt", "", strings.NewReader("a"))
	assert.ErrorIs(t, err, context.Canceled)
}

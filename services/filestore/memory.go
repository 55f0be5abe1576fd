// Package filestore keeps the files attached to drafts.
package filestore

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-dashboard/core"
	"github.com/trezcool/masomo-dashboard/core/coursework"
)

// URLPrefix is the path files are served under.
const URLPrefix = "/files/"

var (
	ErrNotFound = errors.New("file not found")
	ErrTooLarge = errors.New("file too large")

	newKey = uuid.NewString // mockable
)

type (
	File struct {
		Name        string
		ContentType string
		Content     []byte
	}

	// Memory stores files in process memory. They do not survive a restart.
	Memory struct {
		baseURL string
		maxSize int64

		mu    sync.RWMutex
		files map[string]File
	}
)

var _ coursework.FileStore = (*Memory)(nil)

// NewMemory returns a store whose URLs are rooted at the API host; maxSize <= 0 disables the size limit.
func NewMemory(conf *core.Config, maxSize int64) *Memory {
	return &Memory{
		baseURL: strings.TrimRight(conf.APIBaseURL, "/"),
		maxSize: maxSize,
		files:   make(map[string]File),
	}
}

func (m *Memory) Put(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	lr := r
	if m.maxSize > 0 {
		lr = io.LimitReader(r, m.maxSize+1)
	}
	if _, err := buf.ReadFrom(lr); err != nil {
		return "", errors.Wrap(err, "reading file")
	}
	if m.maxSize > 0 && int64(buf.Len()) > m.maxSize {
		return "", ErrTooLarge
	}
	if contentType == "" {
		contentType = http.DetectContentType(buf.Bytes())
	}

	key := newKey() + "/" + path.Base("/"+name)

	m.mu.Lock()
	m.files[key] = File{Name: name, ContentType: contentType, Content: buf.Bytes()}
	m.mu.Unlock()

	return m.baseURL + URLPrefix + (&url.URL{Path: key}).EscapedPath(), nil
}

// Get returns the file stored under key, the part of its URL following URLPrefix.
func (m *Memory) Get(key string) (File, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	f, ok := m.files[key]
	if !ok {
		return File{}, ErrNotFound
	}
	return f, nil
}

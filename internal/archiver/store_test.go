package archiver

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/newthinker/walarchive/internal/core"
	"github.com/newthinker/walarchive/internal/storage/archive"
)

// memStore is an in-memory archive.Storage that counts remote calls and
// can be told to fail specific operations.
type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte

	exists  int
	fetches int
	deletes []string

	fetchErr  map[string]error
	uploadErr error
	deleteErr map[string]error
	listErr   error
}

var _ archive.Storage = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{
		objects:   make(map[string][]byte),
		fetchErr:  make(map[string]error),
		deleteErr: make(map[string]error),
	}
}

func (m *memStore) put(name string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[name] = data
}

func (m *memStore) get(name string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[name]
	return data, ok
}

func (m *memStore) names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var names []string
	for name := range m.objects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m *memStore) calls() (exists, fetches int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exists, m.fetches
}

func (m *memStore) Exists(ctx context.Context, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exists++
	_, ok := m.objects[name]
	return ok, nil
}

func (m *memStore) Fetch(ctx context.Context, name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetches++
	if err := m.fetchErr[name]; err != nil {
		return nil, err
	}
	data, ok := m.objects[name]
	if !ok {
		return nil, core.WrapError(core.ErrObjectNotFound, fmt.Errorf("%s", name))
	}
	return append([]byte(nil), data...), nil
}

func (m *memStore) Upload(ctx context.Context, localPath, name string) error {
	if m.uploadErr != nil {
		return m.uploadErr
	}
	data, err := os.ReadFile(localPath)
	if err != nil {
		return err
	}
	m.put(name, data)
	return nil
}

func (m *memStore) Delete(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.deleteErr[name]; err != nil {
		return err
	}
	delete(m.objects, name)
	m.deletes = append(m.deletes, name)
	return nil
}

func (m *memStore) List(ctx context.Context, prefix string) ([]string, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []string
	for _, name := range m.names() {
		if strings.HasPrefix(name, prefix) {
			out = append(out, name)
		}
	}
	return out, nil
}

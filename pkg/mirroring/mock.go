package mirroring

import (
	"context"
	"errors"
	"io"

	"github.com/warptools/zcsv/zcsvapi"
)

// MockRemote keeps objects in memory. It's intended for tests only.
type MockRemote struct {
	Objects map[string][]byte
}

var _ Remote = (*MockRemote)(nil)

func NewMockRemote() *MockRemote {
	return &MockRemote{Objects: map[string][]byte{}}
}

func (m *MockRemote) Bucket() string {
	return "mock"
}

func (m *MockRemote) Has(_ context.Context, key string) (bool, error) {
	_, exists := m.Objects[key]
	return exists, nil
}

func (m *MockRemote) Put(_ context.Context, key string, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return zcsvapi.ErrorMirror(m.Bucket(), key, err)
	}
	m.Objects[key] = data
	return nil
}

func (m *MockRemote) Get(_ context.Context, key string, w io.WriterAt) error {
	data, exists := m.Objects[key]
	if !exists {
		return zcsvapi.ErrorMirror(m.Bucket(), key, errors.New("no such object"))
	}
	if _, err := w.WriteAt(data, 0); err != nil {
		return zcsvapi.ErrorMirror(m.Bucket(), key, err)
	}
	return nil
}

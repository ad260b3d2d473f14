package mocks

import (
	"context"

	"github.com/rpggio/sitetrack/internal/domain/project"
	"github.com/stretchr/testify/mock"
)

// RemoteStore is a mock for project.RemoteStore.
type RemoteStore struct {
	mock.Mock
}

func (m *RemoteStore) GetAll(ctx context.Context) ([]project.Project, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]project.Project); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RemoteStore) Put(ctx context.Context, id string, proj project.Project) error {
	args := m.Called(ctx, id, proj)
	return args.Error(0)
}

func (m *RemoteStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// LocalCache is a mock for project.LocalCache.
type LocalCache struct {
	mock.Mock
}

func (m *LocalCache) Read(ctx context.Context) ([]project.Project, bool, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]project.Project); ok {
		return list, args.Bool(1), args.Error(2)
	}
	return nil, args.Bool(1), args.Error(2)
}

func (m *LocalCache) Write(ctx context.Context, projects []project.Project) error {
	args := m.Called(ctx, projects)
	return args.Error(0)
}

// Notifier is a mock for project.Notifier.
type Notifier struct {
	mock.Mock
}

func (m *Notifier) Notify(ctx context.Context, n project.Notice) {
	m.Called(ctx, n)
}

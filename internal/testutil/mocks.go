package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/scrapter/scrapter-front/internal/backend"
	"github.com/scrapter/scrapter-front/internal/bridge"
	"github.com/scrapter/scrapter-front/internal/session"
)

type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Login(ctx context.Context, email, password string) (*backend.LoginResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*backend.LoginResult), args.Error(1)
}

func (m *MockAuthenticator) Signup(ctx context.Context, email, password, name string) (*backend.User, error) {
	args := m.Called(ctx, email, password, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*backend.User), args.Error(1)
}

func (m *MockAuthenticator) Me(ctx context.Context, token string) (*session.Profile, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*session.Profile), args.Error(1)
}

type MockMessenger struct {
	mock.Mock
}

func (m *MockMessenger) IsAvailable() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockMessenger) Send(ctx context.Context, extensionID string, req bridge.AuthSyncRequest) (*bridge.AuthSyncAck, error) {
	args := m.Called(ctx, extensionID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bridge.AuthSyncAck), args.Error(1)
}

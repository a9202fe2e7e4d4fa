package plaid

import (
	"context"

	"github.com/ceezaa/tasteflow/internal/model"
	"github.com/ceezaa/tasteflow/internal/service"
)

// MockClient is a mock implementation of TransactionSyncer for testing.
type MockClient struct {
	// Functions that can be set by tests to control behavior
	SyncFn                func(ctx context.Context, accessToken, cursor string) (*model.SyncDelta, error)
	CreateLinkTokenFn     func(ctx context.Context, userID string) (string, error)
	ExchangePublicTokenFn func(ctx context.Context, publicToken string) (string, string, error)

	// Call tracking
	SyncCalls                []SyncCall
	CreateLinkTokenCalls     int
	ExchangePublicTokenCalls int
}

// SyncCall records the parameters of a Sync call.
type SyncCall struct {
	AccessToken string
	Cursor      string
}

// NewMockClient creates a new mock Plaid client.
func NewMockClient() *MockClient {
	return &MockClient{
		SyncCalls: []SyncCall{},
	}
}

// Sync implements TransactionSyncer.Sync.
func (m *MockClient) Sync(ctx context.Context, accessToken, cursor string) (*model.SyncDelta, error) {
	m.SyncCalls = append(m.SyncCalls, SyncCall{AccessToken: accessToken, Cursor: cursor})

	if m.SyncFn != nil {
		return m.SyncFn(ctx, accessToken, cursor)
	}

	// Default behavior: empty delta, nothing more to fetch
	return &model.SyncDelta{NextCursor: cursor}, nil
}

// CreateLinkToken mirrors Client.CreateLinkToken.
func (m *MockClient) CreateLinkToken(ctx context.Context, userID string) (string, error) {
	m.CreateLinkTokenCalls++

	if m.CreateLinkTokenFn != nil {
		return m.CreateLinkTokenFn(ctx, userID)
	}
	return "link-sandbox-mock", nil
}

// ExchangePublicToken mirrors Client.ExchangePublicToken.
func (m *MockClient) ExchangePublicToken(ctx context.Context, publicToken string) (string, string, error) {
	m.ExchangePublicTokenCalls++

	if m.ExchangePublicTokenFn != nil {
		return m.ExchangePublicTokenFn(ctx, publicToken)
	}
	return "access-sandbox-mock", "item-mock", nil
}

// Reset clears all call tracking.
func (m *MockClient) Reset() {
	m.SyncCalls = []SyncCall{}
	m.CreateLinkTokenCalls = 0
	m.ExchangePublicTokenCalls = 0
}

// Ensure MockClient implements TransactionSyncer interface.
var _ service.TransactionSyncer = (*MockClient)(nil)

package crm

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dashcrm-api/internal/domain"
	"github.com/dashcrm-api/internal/infrastructure/rediscache"
)

// --- mocks ---

type mockDirectory struct{ mock.Mock }

func (m *mockDirectory) Get(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if a, _ := args.Get(0).(*domain.Account); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockClient struct{ mock.Mock }

func (m *mockClient) GetPanels(ctx context.Context, credential string) (*domain.PanelsPage, error) {
	args := m.Called(ctx, credential)
	if p, _ := args.Get(0).(*domain.PanelsPage); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockClient) GetPanelByID(ctx context.Context, credential, panelID string) (*domain.Panel, error) {
	args := m.Called(ctx, credential, panelID)
	if p, _ := args.Get(0).(*domain.Panel); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockClient) GetCards(ctx context.Context, credential string, filters domain.CardFilters) (*domain.CardsPage, error) {
	args := m.Called(ctx, credential, filters)
	if p, _ := args.Get(0).(*domain.CardsPage); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockClient) GetCardByID(ctx context.Context, credential, cardID string) (*domain.Card, error) {
	args := m.Called(ctx, credential, cardID)
	if c, _ := args.Get(0).(*domain.Card); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

// --- helpers ---

func newTestService(t *testing.T) (*mockDirectory, *mockClient, *Service) {
	t.Helper()
	mr := miniredis.RunT(t)
	cache := rediscache.NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)
	dir := &mockDirectory{}
	client := &mockClient{}
	return dir, client, NewService(dir, client, cache)
}

func activeAccount() *domain.Account {
	return &domain.Account{AccountID: "acc1", Name: "Alice", HelenaToken: "cred-1", Active: true}
}

// --- tests ---

func TestPanels_FetchesWithStoredCredential(t *testing.T) {
	dir, client, svc := newTestService(t)

	dir.On("Get", mock.Anything, "acc1").Return(activeAccount(), nil)
	client.On("GetPanels", mock.Anything, "cred-1").
		Return(&domain.PanelsPage{Items: []domain.Panel{{ID: "p1", Name: "Vendas"}}}, nil)

	page, err := svc.Panels(context.Background(), "acc1")
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, 1, page.TotalItems)
}

func TestPanels_SecondCallServedFromCache(t *testing.T) {
	dir, client, svc := newTestService(t)

	dir.On("Get", mock.Anything, "acc1").Return(activeAccount(), nil)
	client.On("GetPanels", mock.Anything, "cred-1").
		Return(&domain.PanelsPage{Items: []domain.Panel{{ID: "p1"}}}, nil)

	_, err := svc.Panels(context.Background(), "acc1")
	require.NoError(t, err)
	_, err = svc.Panels(context.Background(), "acc1")
	require.NoError(t, err)

	client.AssertNumberOfCalls(t, "GetPanels", 1)
	dir.AssertNumberOfCalls(t, "Get", 1)
}

func TestPanels_AccountGone_Unauthorized(t *testing.T) {
	dir, _, svc := newTestService(t)

	dir.On("Get", mock.Anything, "acc1").Return(nil, domain.ErrNotFound)

	_, err := svc.Panels(context.Background(), "acc1")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestPanels_InactiveAccount_Unauthorized(t *testing.T) {
	dir, _, svc := newTestService(t)
	account := activeAccount()
	account.Active = false

	dir.On("Get", mock.Anything, "acc1").Return(account, nil)

	_, err := svc.Panels(context.Background(), "acc1")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestCards_NormalizesPagination(t *testing.T) {
	dir, client, svc := newTestService(t)

	dir.On("Get", mock.Anything, "acc1").Return(activeAccount(), nil)
	client.On("GetCards", mock.Anything, "cred-1", mock.Anything).
		Return(&domain.CardsPage{Items: []domain.Card{{ID: "c1"}, {ID: "c2"}}}, nil)

	page, err := svc.Cards(context.Background(), "acc1", domain.CardFilters{PanelID: "p1"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalItems)
	assert.Equal(t, 1, page.PageNumber)
	assert.Equal(t, defaultPageSize, page.PageSize)
	assert.Equal(t, 1, page.TotalPages)
}

func TestCards_CacheKeyedByFilters(t *testing.T) {
	dir, client, svc := newTestService(t)

	dir.On("Get", mock.Anything, "acc1").Return(activeAccount(), nil)
	client.On("GetCards", mock.Anything, "cred-1", mock.Anything).
		Return(&domain.CardsPage{Items: []domain.Card{}}, nil)

	_, err := svc.Cards(context.Background(), "acc1", domain.CardFilters{PanelID: "p1"})
	require.NoError(t, err)
	_, err = svc.Cards(context.Background(), "acc1", domain.CardFilters{PanelID: "p2"})
	require.NoError(t, err)
	_, err = svc.Cards(context.Background(), "acc1", domain.CardFilters{PanelID: "p1"})
	require.NoError(t, err)

	client.AssertNumberOfCalls(t, "GetCards", 2)
}

func TestCards_UpstreamError_NotCached(t *testing.T) {
	dir, client, svc := newTestService(t)

	dir.On("Get", mock.Anything, "acc1").Return(activeAccount(), nil)
	client.On("GetCards", mock.Anything, "cred-1", mock.Anything).
		Return(nil, domain.ErrUpstream).Once()
	client.On("GetCards", mock.Anything, "cred-1", mock.Anything).
		Return(&domain.CardsPage{Items: []domain.Card{{ID: "c1"}}}, nil).Once()

	_, err := svc.Cards(context.Background(), "acc1", domain.CardFilters{PanelID: "p1"})
	assert.ErrorIs(t, err, domain.ErrUpstream)

	page, err := svc.Cards(context.Background(), "acc1", domain.CardFilters{PanelID: "p1"})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
}

func TestAgentsByPanel_DedupesAndSorts(t *testing.T) {
	dir, client, svc := newTestService(t)

	bob := &domain.CrmUser{ID: "u2", Name: "Bob"}
	ana := &domain.CrmUser{ID: "u1", Name: "Ana"}
	dir.On("Get", mock.Anything, "acc1").Return(activeAccount(), nil)
	client.On("GetCards", mock.Anything, "cred-1", mock.Anything).
		Return(&domain.CardsPage{Items: []domain.Card{
			{ID: "c1", ResponsibleUserID: "u2", ResponsibleUser: bob},
			{ID: "c2", ResponsibleUserID: "u1", ResponsibleUser: ana},
			{ID: "c3", ResponsibleUserID: "u2", ResponsibleUser: bob},
			{ID: "c4"}, // unassigned
		}}, nil)

	page, err := svc.AgentsByPanel(context.Background(), "acc1", "p1")
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Ana", page.Items[0].Name)
	assert.Equal(t, "Bob", page.Items[1].Name)
}

// Package crm proxies Helena panel/card/agent reads for authenticated
// accounts, with a short-TTL read-through cache on the list endpoints.
package crm

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/dashcrm-api/internal/domain"
	"github.com/dashcrm-api/internal/infrastructure/rediscache"
)

const defaultPageSize = 100

// Directory supplies the caller's account record; the stored Helena token is
// looked up per request rather than embedded in the session token.
type Directory interface {
	Get(ctx context.Context, accountID string) (*domain.Account, error)
}

// Client is the Helena read surface this proxy forwards to.
type Client interface {
	GetPanels(ctx context.Context, credential string) (*domain.PanelsPage, error)
	GetPanelByID(ctx context.Context, credential, panelID string) (*domain.Panel, error)
	GetCards(ctx context.Context, credential string, filters domain.CardFilters) (*domain.CardsPage, error)
	GetCardByID(ctx context.Context, credential, cardID string) (*domain.Card, error)
}

type Service struct {
	directory Directory
	client    Client
	cache     *rediscache.Cache
}

func NewService(directory Directory, client Client, cache *rediscache.Cache) *Service {
	return &Service{directory: directory, client: client, cache: cache}
}

func (s *Service) Panels(ctx context.Context, accountID string) (*domain.PanelsPage, error) {
	key := "crm:panels:" + accountID
	var cached domain.PanelsPage
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	credential, err := s.credential(ctx, accountID)
	if err != nil {
		return nil, err
	}
	page, err := s.client.GetPanels(ctx, credential)
	if err != nil {
		return nil, err
	}
	if page.Items == nil {
		page.Items = []domain.Panel{}
	}
	if page.TotalItems == 0 {
		page.TotalItems = len(page.Items)
	}

	s.cache.Set(ctx, key, page)
	return page, nil
}

func (s *Service) PanelByID(ctx context.Context, accountID, panelID string) (*domain.Panel, error) {
	credential, err := s.credential(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return s.client.GetPanelByID(ctx, credential, panelID)
}

func (s *Service) Cards(ctx context.Context, accountID string, filters domain.CardFilters) (*domain.CardsPage, error) {
	key := cardsCacheKey(accountID, filters)
	var cached domain.CardsPage
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	credential, err := s.credential(ctx, accountID)
	if err != nil {
		return nil, err
	}
	page, err := s.client.GetCards(ctx, credential, filters)
	if err != nil {
		return nil, err
	}
	normalizeCardsPage(page, filters)

	s.cache.Set(ctx, key, page)
	return page, nil
}

func (s *Service) CardByID(ctx context.Context, accountID, cardID string) (*domain.Card, error) {
	credential, err := s.credential(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return s.client.GetCardByID(ctx, credential, cardID)
}

// AgentsByPanel derives the unique responsible users across a panel's cards.
// Helena has no direct agent-listing endpoint on this API surface.
func (s *Service) AgentsByPanel(ctx context.Context, accountID, panelID string) (*domain.AgentsPage, error) {
	page, err := s.Cards(ctx, accountID, domain.CardFilters{PanelID: panelID})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]domain.CrmUser)
	for _, card := range page.Items {
		if card.ResponsibleUserID == "" || card.ResponsibleUser == nil {
			continue
		}
		if _, ok := seen[card.ResponsibleUserID]; !ok {
			seen[card.ResponsibleUserID] = *card.ResponsibleUser
		}
	}

	agents := make([]domain.CrmUser, 0, len(seen))
	for _, u := range seen {
		agents = append(agents, u)
	}
	sort.Slice(agents, func(i, j int) bool { return agents[i].Name < agents[j].Name })

	return &domain.AgentsPage{Items: agents, TotalItems: len(agents)}, nil
}

func (s *Service) credential(ctx context.Context, accountID string) (string, error) {
	account, err := s.directory.Get(ctx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", fmt.Errorf("account gone: %w", domain.ErrUnauthorized)
		}
		return "", err
	}
	if !account.Active {
		return "", fmt.Errorf("account inactive: %w", domain.ErrUnauthorized)
	}
	return account.HelenaToken, nil
}

func normalizeCardsPage(page *domain.CardsPage, filters domain.CardFilters) {
	if page.Items == nil {
		page.Items = []domain.Card{}
	}
	if page.TotalItems == 0 {
		page.TotalItems = len(page.Items)
	}
	if page.PageSize == 0 {
		page.PageSize = filters.PageSize
		if page.PageSize == 0 {
			page.PageSize = defaultPageSize
		}
	}
	if page.PageNumber == 0 {
		page.PageNumber = filters.Page
		if page.PageNumber == 0 {
			page.PageNumber = 1
		}
	}
	if page.TotalPages == 0 && page.PageSize > 0 {
		page.TotalPages = (page.TotalItems + page.PageSize - 1) / page.PageSize
	}
}

func cardsCacheKey(accountID string, f domain.CardFilters) string {
	return fmt.Sprintf("crm:cards:%s:%s:%s:%s:%s:%s:%s:%d:%d",
		accountID, f.PanelID, f.StartDate, f.EndDate, f.UserID, f.ChannelID, f.StepID, f.Page, f.PageSize)
}

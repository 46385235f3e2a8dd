package http

import (
	"context"
	"time"

	"github.com/dashcrm-api/internal/domain"
)

// AccountDirectory is the minimal interface the router requires from the
// account store.
type AccountDirectory interface {
	Get(ctx context.Context, accountID string) (*domain.Account, error)
	FindByPhone(ctx context.Context, normalizedPhone string) (*domain.Account, error)
	FindByEmail(ctx context.Context, normalizedEmail string) (*domain.Account, error)
	UpdateOtpState(ctx context.Context, accountID string, otp *domain.PendingOtp) error
}

// CrmClient is the minimal interface the router requires from the Helena API
// client: the credential exchange plus the read surface the proxy forwards.
type CrmClient interface {
	AuthenticateExternal(ctx context.Context, phoneNumber, email, credential string) (*domain.ExternalSession, error)
	GetPanels(ctx context.Context, credential string) (*domain.PanelsPage, error)
	GetPanelByID(ctx context.Context, credential, panelID string) (*domain.Panel, error)
	GetCards(ctx context.Context, credential string, filters domain.CardFilters) (*domain.CardsPage, error)
	GetCardByID(ctx context.Context, credential, cardID string) (*domain.Card, error)
}

// CodeSender delivers one-time codes over whichever channel is configured.
type CodeSender interface {
	SendCode(ctx context.Context, email, phone, userName, userID, code string, expiresAt time.Time, identifierType string) error
}

// TaskDispatcher runs fire-and-forget work off the request path.
type TaskDispatcher interface {
	Go(name string, fn func(ctx context.Context) error)
}

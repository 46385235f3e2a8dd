// Package helena is the typed HTTP client for the Helena CRM platform.
package helena

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dashcrm-api/internal/domain"
)

// Upstream is slow under load; a single bounded attempt, never retried here.
const requestTimeout = 30 * time.Second

// Client talks to the Helena API. The bearer credential is supplied per call
// because every account carries its own token.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

type authRequest struct {
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Email       string `json:"email,omitempty"`
}

// errorBody is the shape Helena uses for error responses. Anything else is
// treated as an opaque message.
type errorBody struct {
	Message string `json:"message"`
}

// AuthenticateExternal exchanges the account's stored credential plus its
// phone/email for a Helena session. At least one identifier must be set.
//
// Failure classification:
//
//	401                      → domain.ErrCredentialInvalid
//	404                      → domain.ErrUpstreamNotFound
//	other non-2xx / bad body → domain.ErrUpstream (carries upstream message)
//	no response at all       → domain.ErrUpstreamUnavailable
func (c *Client) AuthenticateExternal(ctx context.Context, phoneNumber, email, credential string) (*domain.ExternalSession, error) {
	if phoneNumber == "" && email == "" {
		return nil, fmt.Errorf("phone or email required: %w", domain.ErrInvalidInput)
	}

	body, err := json.Marshal(authRequest{PhoneNumber: phoneNumber, Email: email})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/auth/v1/login/authenticate/external", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+credential)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error("helena authenticate: no response", "err", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := upstreamMessage(resp.Body)
		slog.Error("helena authenticate failed",
			"status", resp.StatusCode, "message", msg, "phone", phoneNumber, "email", email)
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return nil, domain.ErrCredentialInvalid
		case http.StatusNotFound:
			return nil, domain.ErrUpstreamNotFound
		default:
			return nil, fmt.Errorf("%w: %s", domain.ErrUpstream, msg)
		}
	}

	var session domain.ExternalSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", domain.ErrUpstream, err)
	}
	return &session, nil
}

// GetPanels lists the CRM panels visible to the credential.
func (c *Client) GetPanels(ctx context.Context, credential string) (*domain.PanelsPage, error) {
	var page domain.PanelsPage
	if err := c.get(ctx, credential, "/crm/v1/panel", nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) GetPanelByID(ctx context.Context, credential, panelID string) (*domain.Panel, error) {
	var panel domain.Panel
	if err := c.get(ctx, credential, "/crm/v1/panel/"+url.PathEscape(panelID), nil, &panel); err != nil {
		return nil, err
	}
	return &panel, nil
}

func (c *Client) GetCards(ctx context.Context, credential string, filters domain.CardFilters) (*domain.CardsPage, error) {
	q := url.Values{}
	q.Set("panelId", filters.PanelID)
	setIfPresent(q, "startDate", filters.StartDate)
	setIfPresent(q, "endDate", filters.EndDate)
	setIfPresent(q, "userId", filters.UserID)
	setIfPresent(q, "channelId", filters.ChannelID)
	setIfPresent(q, "stepId", filters.StepID)
	if filters.Page > 0 {
		q.Set("page", strconv.Itoa(filters.Page))
	}
	if filters.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(filters.PageSize))
	}

	var page domain.CardsPage
	if err := c.get(ctx, credential, "/crm/v1/panel/card", q, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) GetCardByID(ctx context.Context, credential, cardID string) (*domain.Card, error) {
	var card domain.Card
	if err := c.get(ctx, credential, "/crm/v1/panel/card/"+url.PathEscape(cardID), nil, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

func (c *Client) get(ctx context.Context, credential, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+credential)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error("helena request: no response", "path", path, "err", err)
		return fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := upstreamMessage(resp.Body)
		slog.Error("helena request failed", "path", path, "status", resp.StatusCode, "message", msg)
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return domain.ErrCredentialInvalid
		case http.StatusNotFound:
			return domain.ErrUpstreamNotFound
		default:
			return fmt.Errorf("%w: %s", domain.ErrUpstream, msg)
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", domain.ErrUpstream, err)
	}
	return nil
}

func upstreamMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(raw) == 0 {
		return "no response body"
	}
	var eb errorBody
	if err := json.Unmarshal(raw, &eb); err == nil && eb.Message != "" {
		return eb.Message
	}
	return string(raw)
}

func setIfPresent(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

// Package webhook posts OTP codes to the delivery automation endpoint, which
// decides how to reach the user (WhatsApp, SMS or email).
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Delivery is shorter-lived than the codes themselves; a hung webhook must not
// pin dispatcher goroutines for long.
const requestTimeout = 15 * time.Second

type Notifier struct {
	url        string
	httpClient *http.Client
}

func NewNotifier(url string) *Notifier {
	return &Notifier{
		url:        url,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// payload is the contract with the delivery automation. identifierType tells
// it which channel the user logged in with.
type payload struct {
	Email          string `json:"email,omitempty"`
	Phone          string `json:"phone"`
	UserName       string `json:"userName"`
	UserID         string `json:"userId"`
	Code           string `json:"code"`
	ExpiresAt      string `json:"expiresAt"`
	IdentifierType string `json:"identifierType"`
	Type           string `json:"type"`
	Timestamp      string `json:"timestamp"`
}

// SendCode posts the code to the webhook. The response body is ignored; only
// the status matters, and only for logging by the caller.
func (n *Notifier) SendCode(ctx context.Context, email, phone, userName, userID, code string, expiresAt time.Time, identifierType string) error {
	body, err := json.Marshal(payload{
		Email:          email,
		Phone:          phone,
		UserName:       userName,
		UserID:         userID,
		Code:           code,
		ExpiresAt:      expiresAt.UTC().Format(time.RFC3339),
		IdentifierType: identifierType,
		Type:           "login_otp",
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("otp webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("otp webhook: status %d", resp.StatusCode)
	}
	return nil
}

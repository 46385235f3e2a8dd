// Package otp implements the one-time-code state machine: issuance, delivery
// hand-off, verification, attempt limiting and lockout.
package otp

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/dashcrm-api/internal/domain"
)

const (
	codeTTL     = 5 * time.Minute
	maxAttempts = 5
	lockWindow  = 15 * time.Minute
)

// AccountStore is the narrow slice of the directory this machine writes to.
type AccountStore interface {
	UpdateOtpState(ctx context.Context, accountID string, otp *domain.PendingOtp) error
}

// Sender delivers an issued code to the account's contact route.
type Sender interface {
	SendCode(ctx context.Context, email, phone, userName, userID, code string, expiresAt time.Time, identifierType string) error
}

// Dispatcher runs delivery off the request path with its own error sink.
type Dispatcher interface {
	Go(name string, fn func(ctx context.Context) error)
}

type Service struct {
	store      AccountStore
	sender     Sender
	dispatcher Dispatcher
}

func NewService(store AccountStore, sender Sender, dispatcher Dispatcher) *Service {
	return &Service{store: store, sender: sender, dispatcher: dispatcher}
}

// Issue generates a fresh code, persists it (resetting attempts and clearing
// any lock) and hands delivery to the dispatcher. Returns once the write is
// durable: a client calling verify-code right after login must find the code.
// Delivery failures never surface here.
func (s *Service) Issue(ctx context.Context, account *domain.Account, identifierType string) error {
	code, err := generateCode()
	if err != nil {
		return err
	}
	expiresAt := time.Now().Add(codeTTL)

	state := &domain.PendingOtp{
		Code:      code,
		ExpiresAt: expiresAt,
		Attempts:  0,
	}
	if err := s.store.UpdateOtpState(ctx, account.AccountID, state); err != nil {
		return fmt.Errorf("persist otp: %w", err)
	}

	email, phone, name, accountID := account.Email, account.Phone, account.Name, account.AccountID
	s.dispatcher.Go("otp-delivery", func(ctx context.Context) error {
		return s.sender.SendCode(ctx, email, phone, name, accountID, code, expiresAt, identifierType)
	})
	return nil
}

// Verify runs the state machine against the account's pending code.
//
//	locked            → *domain.LockedError (minutes remaining, rounded up)
//	absent            → domain.ErrInvalidCode
//	expired           → clears the sub-state, domain.ErrInvalidCode
//	mismatch          → bumps attempts (locking at the limit), domain.ErrInvalidCode
//	match             → clears the sub-state, nil
//
// A lockout response is indistinguishable from a plain mismatch; only the
// next attempt while locked reveals it.
func (s *Service) Verify(ctx context.Context, account *domain.Account, submitted string) error {
	now := time.Now()
	state := account.Otp

	if state != nil && state.Locked(now) {
		minutes := int((time.Until(*state.LockedUntil) + time.Minute - 1) / time.Minute)
		return &domain.LockedError{MinutesLeft: minutes}
	}

	if state == nil || state.Code == "" {
		return domain.ErrInvalidCode
	}

	if state.Expired(now) {
		if err := s.store.UpdateOtpState(ctx, account.AccountID, nil); err != nil {
			slog.Warn("failed to clear expired otp", "account_id", account.AccountID, "err", err)
		}
		return domain.ErrInvalidCode
	}

	if state.Code != submitted {
		// Last-write-wins on the counter: concurrent mismatches may lose an
		// increment, which at worst delays the lockout by one attempt. The
		// code comparison itself is always exact.
		updated := *state
		updated.Attempts++
		if updated.Attempts >= maxAttempts {
			lockedUntil := now.Add(lockWindow)
			updated.LockedUntil = &lockedUntil
		}
		if err := s.store.UpdateOtpState(ctx, account.AccountID, &updated); err != nil {
			slog.Warn("failed to persist otp attempt", "account_id", account.AccountID, "err", err)
		}
		return domain.ErrInvalidCode
	}

	// Codes are single-use: if the clear fails, fail the verification rather
	// than leave a replayable code behind.
	if err := s.store.UpdateOtpState(ctx, account.AccountID, nil); err != nil {
		return fmt.Errorf("clear otp: %w", err)
	}
	return nil
}

// generateCode draws a uniform 6-digit code. The range excludes values below
// 100000, so the string form never needs left-padding.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", n.Int64()+100000), nil
}

// Package auth composes identity resolution, the Helena exchange, session
// token issuance and the OTP machine into the two login operations.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/dashcrm-api/internal/domain"
	"github.com/dashcrm-api/internal/pkg/phone"
)

var codePattern = regexp.MustCompile(`^[0-9]{6}$`)

// Directory is the slice of the account directory the login flow reads.
type Directory interface {
	FindByPhone(ctx context.Context, normalizedPhone string) (*domain.Account, error)
	FindByEmail(ctx context.Context, normalizedEmail string) (*domain.Account, error)
}

// Exchanger trades an account's stored credential for a Helena session.
type Exchanger interface {
	AuthenticateExternal(ctx context.Context, phoneNumber, email, credential string) (*domain.ExternalSession, error)
}

// TokenSigner mints the internal session token.
type TokenSigner interface {
	Sign(userID, name, phone, helenaUserID, tenantID, role string) (string, error)
}

// OtpMachine issues and verifies one-time codes.
type OtpMachine interface {
	Issue(ctx context.Context, account *domain.Account, identifierType string) error
	Verify(ctx context.Context, account *domain.Account, code string) error
}

type Service interface {
	Login(ctx context.Context, rawPhone, rawEmail string) (*domain.LoginResult, error)
	VerifyCode(ctx context.Context, rawPhone, rawEmail, code string) (*domain.LoginResult, error)
}

type service struct {
	directory Directory
	exchanger Exchanger
	signer    TokenSigner
	otp       OtpMachine
}

func NewService(directory Directory, exchanger Exchanger, signer TokenSigner, otp OtpMachine) Service {
	return &service{directory: directory, exchanger: exchanger, signer: signer, otp: otp}
}

// Login is phase 1: resolve the account, exchange its credential with Helena,
// mint a session token, and kick off OTP issuance. The OTP write is awaited
// (a verify-code call may arrive immediately) but its outcome never affects
// the response, and delivery runs fully in the background.
func (s *service) Login(ctx context.Context, rawPhone, rawEmail string) (*domain.LoginResult, error) {
	account, err := s.resolveAccount(ctx, rawPhone, rawEmail)
	if err != nil {
		return nil, err
	}

	result, err := s.authenticate(ctx, account, rawPhone, rawEmail)
	if err != nil {
		return nil, err
	}

	identifierType := otpIdentifierType(rawEmail)
	if err := s.otp.Issue(ctx, account, identifierType); err != nil {
		slog.Error("otp issuance failed after login", "account_id", account.AccountID, "err", err)
	}

	return result, nil
}

// VerifyCode is phase 2: check the submitted code against the account's
// pending OTP, then re-run the Helena exchange (the phase-1 descriptor was
// never persisted) and mint a fresh token.
func (s *service) VerifyCode(ctx context.Context, rawPhone, rawEmail, code string) (*domain.LoginResult, error) {
	if !codePattern.MatchString(code) {
		return nil, fmt.Errorf("code must be 6 digits: %w", domain.ErrInvalidInput)
	}

	account, err := s.resolveAccount(ctx, rawPhone, rawEmail)
	if err != nil {
		return nil, err
	}

	if err := s.otp.Verify(ctx, account, code); err != nil {
		return nil, err
	}

	return s.authenticate(ctx, account, account.Phone, account.Email)
}

// authenticate runs the Helena exchange for the account and signs the internal
// session token. Identifiers submitted by the caller win over the stored ones,
// mirroring what the account actually logged in with.
func (s *service) authenticate(ctx context.Context, account *domain.Account, rawPhone, rawEmail string) (*domain.LoginResult, error) {
	exchangePhone := rawPhone
	if exchangePhone == "" {
		exchangePhone = account.Phone
	}
	if exchangePhone != "" {
		exchangePhone = phone.Normalize(exchangePhone)
	}
	exchangeEmail := rawEmail
	if exchangeEmail == "" {
		exchangeEmail = account.Email
	}
	exchangeEmail = strings.ToLower(strings.TrimSpace(exchangeEmail))

	helenaAuth, err := s.exchanger.AuthenticateExternal(ctx, exchangePhone, exchangeEmail, account.HelenaToken)
	if err != nil {
		return nil, err
	}

	token, err := s.signer.Sign(account.AccountID, account.Name, account.Phone,
		helenaAuth.UserID, helenaAuth.TenantID, domain.RoleClient)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}

	return &domain.LoginResult{
		Token:  token,
		Helena: helenaAuth,
		User:   account.Summary(),
	}, nil
}

// resolveAccount finds the active account for the given identifiers. Email
// wins when both are present. Phone lookups tolerate historically-inconsistent
// storage: a miss on the normalized number is retried once with the country
// prefix toggled. Not-found and inactive both collapse to ErrUnauthorized so
// responses can't be used to enumerate accounts.
func (s *service) resolveAccount(ctx context.Context, rawPhone, rawEmail string) (*domain.Account, error) {
	rawPhone = strings.TrimSpace(rawPhone)
	rawEmail = strings.TrimSpace(rawEmail)

	if rawEmail != "" {
		account, err := s.directory.FindByEmail(ctx, strings.ToLower(rawEmail))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("email not registered: %w", domain.ErrUnauthorized)
			}
			return nil, err
		}
		return activeOnly(account)
	}

	if rawPhone == "" {
		return nil, fmt.Errorf("phone or email required: %w", domain.ErrInvalidInput)
	}

	normalized := phone.Normalize(rawPhone)
	account, err := s.directory.FindByPhone(ctx, normalized)
	if errors.Is(err, domain.ErrNotFound) {
		account, err = s.directory.FindByPhone(ctx, phone.TogglePrefix(normalized))
	}
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("phone not registered: %w", domain.ErrUnauthorized)
		}
		return nil, err
	}
	return activeOnly(account)
}

func activeOnly(account *domain.Account) (*domain.Account, error) {
	if !account.Active {
		return nil, fmt.Errorf("account inactive: %w", domain.ErrUnauthorized)
	}
	return account, nil
}

func otpIdentifierType(rawEmail string) string {
	if strings.TrimSpace(rawEmail) != "" {
		return "email"
	}
	return "phone"
}

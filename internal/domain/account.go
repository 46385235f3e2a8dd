package domain

import "time"

// Account is a directory record for a dashboard user. Accounts are created and
// deactivated outside this service; we only read them and mutate the OTP
// sub-state.
type Account struct {
	AccountID   string      `json:"id" dynamodbav:"account_id"`
	Name        string      `json:"name" dynamodbav:"name"`
	Phone       string      `json:"phone" dynamodbav:"phone"`
	Email       string      `json:"email,omitempty" dynamodbav:"email"`
	HelenaToken string      `json:"-" dynamodbav:"helena_token"`
	Active      bool        `json:"active" dynamodbav:"active"`
	Otp         *PendingOtp `json:"-" dynamodbav:"pending_otp"`
	CreatedAt   time.Time   `json:"created" dynamodbav:"created_at"`
	UpdatedAt   time.Time   `json:"updated" dynamodbav:"updated_at"`
}

// PendingOtp is the one active verification code for an account. It is
// replaced or removed wholesale so code and expiry are never observable
// half-set.
type PendingOtp struct {
	Code        string     `dynamodbav:"code"`
	ExpiresAt   time.Time  `dynamodbav:"expires_at"`
	Attempts    int        `dynamodbav:"attempts"`
	LockedUntil *time.Time `dynamodbav:"locked_until"`
}

// Expired reports whether the code's validity window has passed.
func (o *PendingOtp) Expired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}

// Locked reports whether verification is locked out at the given instant.
func (o *PendingOtp) Locked(now time.Time) bool {
	return o.LockedUntil != nil && o.LockedUntil.After(now)
}

// AccountSummary is the caller-visible projection of an account, returned by
// the login endpoints.
type AccountSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`
}

// Summary builds the public projection of the account.
func (a *Account) Summary() AccountSummary {
	return AccountSummary{ID: a.AccountID, Name: a.Name, Phone: a.Phone, Email: a.Email}
}

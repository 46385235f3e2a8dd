package domain

// ExternalSession is the token bundle returned by Helena's
// /auth/v1/login/authenticate/external endpoint. It is never persisted here;
// everything beyond userId/accessToken/tenantId is opaque pass-through.
type ExternalSession struct {
	UserID       string `json:"userId"`
	AccessToken  string `json:"accessToken"`
	ExpiresIn    string `json:"expiresIn"`
	RefreshToken string `json:"refreshToken"`
	TenantID     string `json:"tenantId"`
	URLRedirect  string `json:"urlRedirect"`
}

// LoginResult is the response body of both login phases.
type LoginResult struct {
	Token  string           `json:"token"`
	Helena *ExternalSession `json:"helena"`
	User   AccountSummary   `json:"user"`
}

// RoleClient is the only role issued by the login flow.
const RoleClient = "client"

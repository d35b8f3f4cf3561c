package authsdk

// ============================================================================
// Error Types
// ============================================================================

// ErrorResponse represents a standard OAuth2 error response per RFC 6749.
// Client code should use the OAuth2Error type from errors.go instead.
type ErrorResponse struct {
	// Error is the OAuth2 error code (e.g., "invalid_request", "invalid_grant")
	Error string `json:"error" example:"invalid_grant"`

	// ErrorDescription is a human-readable description of the error
	ErrorDescription string `json:"error_description" example:"invalid credentials"`
}

// ============================================================================
// Token Types
// ============================================================================

// TokenType is the only token_type the service hands out.
const TokenType = "bearer"

// ClientService and App name the product family every session belongs to.
// Game builds compare them verbatim.
const (
	ClientService = "ut"
	App           = "ut"
)

// TokenResponse is the body of POST /account/api/oauth/token. It follows the
// field names game builds parse, so it mixes snake_case with displayName.
//
// Timestamps are RFC3339 with millisecond precision in UTC.
type TokenResponse struct {
	AccessToken string `json:"access_token" example:"Nq3bZ7cK..."`
	ExpiresIn   int    `json:"expires_in" example:"7200"`
	ExpiresAt   string `json:"expires_at" example:"2024-01-01T14:00:00.000Z"`
	TokenType   string `json:"token_type" example:"bearer"`

	RefreshToken     string `json:"refresh_token" example:"dA9xLw4q..."`
	RefreshExpires   int    `json:"refresh_expires" example:"28800"`
	RefreshExpiresAt string `json:"refresh_expires_at" example:"2024-01-01T20:00:00.000Z"`

	// AccountID is empty for client_credentials sessions.
	AccountID      string `json:"account_id,omitempty" example:"0b0f09b400854b9b98932dd9e5abe7c5"`
	ClientID       string `json:"client_id" example:"1252412dc7704a9690f6ea4611bc81ee"`
	InternalClient bool   `json:"internal_client" example:"true"`
	ClientService  string `json:"client_service" example:"ut"`
	DisplayName    string `json:"displayName,omitempty" example:"player1"`
	App            string `json:"app" example:"ut"`
	InAppID        string `json:"in_app_id,omitempty" example:"0b0f09b400854b9b98932dd9e5abe7c5"`
}

// VerifyResponse is the body of GET /account/api/oauth/verify. It describes
// the session behind the presented access token.
type VerifyResponse struct {
	Token          string `json:"token"`
	SessionID      string `json:"session_id"`
	TokenType      string `json:"token_type"`
	ClientID       string `json:"client_id"`
	InternalClient bool   `json:"internal_client"`
	ClientService  string `json:"client_service"`
	AccountID      string `json:"account_id,omitempty"`
	ExpiresIn      int    `json:"expires_in"`
	ExpiresAt      string `json:"expires_at"`
	AuthMethod     string `json:"auth_method"`
	DisplayName    string `json:"displayName,omitempty"`
	App            string `json:"app"`
	InAppID        string `json:"in_app_id,omitempty"`
}

// ExchangeCodeResponse is the body of GET /account/api/oauth/exchange.
type ExchangeCodeResponse struct {
	ExpiresInSeconds int    `json:"expiresInSeconds" example:"300"`
	Code             string `json:"code"`
	CreatingClientID string `json:"creatingClientId"`
}

// AuthorizationCodeResponse is the body of GET /account/api/oauth/auth.
type AuthorizationCodeResponse struct {
	AuthorizationCode string `json:"authorizationCode"`
	// SessionID is the id of the session that requested the code.
	SessionID string `json:"sid"`
}

// ============================================================================
// Account Types
// ============================================================================

// AccountResponse is the full account view returned by
// GET /account/api/public/account/{id}. Fields game builds expect but the
// service does not track are filled with fixed values.
type AccountResponse struct {
	ID                         string `json:"id"`
	DisplayName                string `json:"displayName"`
	Name                       string `json:"name"`
	Email                      string `json:"email"`
	FailedLoginAttempts        int    `json:"failedLoginAttempts"`
	LastLogin                  string `json:"lastLogin"`
	NumberOfDisplayNameChanges int    `json:"numberOfDisplayNameChanges"`
	AgeGroup                   string `json:"ageGroup"`
	Headless                   bool   `json:"headless"`
	Country                    string `json:"country"`
	LastName                   string `json:"lastName"`
	PreferredLanguage          string `json:"preferredLanguage"`
	CanUpdateDisplayName       bool   `json:"canUpdateDisplayName"`
	TFAEnabled                 bool   `json:"tfaEnabled"`
	EmailVerified              bool   `json:"emailVerified"`
	MinorVerified              bool   `json:"minorVerified"`
	MinorExpected              bool   `json:"minorExpected"`
	MinorStatus                string `json:"minorStatus"`
	CabinedMode                bool   `json:"cabinedMode"`
	HasHashedEmail             bool   `json:"hasHashedEmail"`
}

// AccountSummary is one element of GET /account/api/public/account.
type AccountSummary struct {
	ID            string         `json:"id"`
	DisplayName   string         `json:"displayName"`
	MinorVerified bool           `json:"minorVerified"`
	MinorStatus   string         `json:"minorStatus"`
	CabinedMode   bool           `json:"cabinedMode"`
	ExternalAuths map[string]any `json:"externalAuths"`
}

// CreateAccountRequest holds the form fields of POST /account/api/create/account.
type CreateAccountRequest struct {
	Username string
	Password string
	Email    string
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains readiness check results (only for /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks represents the status of critical service dependencies.
type HealthChecks struct {
	// Database indicates the store connection status
	Database string `json:"database"`
}

package authsdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/ut4master/pkg/httpx"
)

// Error codes carried in the "error" member of a failed response. The first
// group comes from RFC 6749 and RFC 6750; the rest are account API codes.
const (
	ErrorCodeInvalidRequest         = "invalid_request"
	ErrorCodeInvalidClient          = "invalid_client"
	ErrorCodeInvalidGrant           = "invalid_grant"
	ErrorCodeUnsupportedGrantType   = "unsupported_grant_type"
	ErrorCodeServerError            = "server_error"
	ErrorCodeTemporarilyUnavailable = "temporarily_unavailable"
	ErrorCodeInvalidToken           = "invalid_token"
	ErrorCodeAccessDenied           = "access_denied"

	ErrorCodeNotFound      = "not_found"
	ErrorCodeAccountExists = "account_exists"
	ErrorCodeRateLimited   = "rate_limit_exceeded"
)

// OAuth2Error is a failed response. The server writes it and the SDK returns
// it, so both sides compare errors the same way.
type OAuth2Error struct {
	StatusCode  int    `json:"-"`
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (e *OAuth2Error) Error() string {
	return e.Code + ": " + e.Description
}

// Is matches any OAuth2Error with the same code, so errors.Is(err,
// authsdk.ErrInvalidGrant) holds for errors parsed off the wire.
func (e *OAuth2Error) Is(target error) bool {
	t, ok := target.(*OAuth2Error)
	return ok && t.Code == e.Code
}

// WriteError writes e as a JSON body with its status code.
func (e *OAuth2Error) WriteError(w http.ResponseWriter) {
	httpx.WriteJSON(w, e.StatusCode, ErrorResponse{
		Error:            e.Code,
		ErrorDescription: e.Description,
	})
}

// NewOAuth2Error returns an error with a custom description.
func NewOAuth2Error(statusCode int, code, description string) *OAuth2Error {
	return &OAuth2Error{StatusCode: statusCode, Code: code, Description: description}
}

var (
	// ErrInvalidRequest: a parameter is missing or malformed.
	ErrInvalidRequest = NewOAuth2Error(http.StatusBadRequest, ErrorCodeInvalidRequest,
		"the request is malformed or missing required parameters")

	ErrInvalidContentType = NewOAuth2Error(http.StatusBadRequest, ErrorCodeInvalidRequest,
		"content-type must be application/x-www-form-urlencoded")

	ErrInvalidFormBody = NewOAuth2Error(http.StatusBadRequest, ErrorCodeInvalidRequest,
		"invalid form body")

	// ErrInvalidClient: client authentication failed.
	ErrInvalidClient = NewOAuth2Error(http.StatusUnauthorized, ErrorCodeInvalidClient,
		"invalid client")

	// ErrInvalidGrant covers wrong credentials and unknown, expired, consumed
	// or foreign codes and refresh tokens. The description never says which.
	ErrInvalidGrant = NewOAuth2Error(http.StatusBadRequest, ErrorCodeInvalidGrant,
		"invalid credentials")

	ErrUnsupportedGrantType = NewOAuth2Error(http.StatusBadRequest, ErrorCodeUnsupportedGrantType,
		"grant type not supported")

	// ErrInvalidToken: the bearer token is missing, unknown or expired.
	ErrInvalidToken = NewOAuth2Error(http.StatusUnauthorized, ErrorCodeInvalidToken,
		"the access token is missing, invalid or expired")

	ErrAccessDenied = NewOAuth2Error(http.StatusForbidden, ErrorCodeAccessDenied,
		"access denied")

	ErrNotFound = NewOAuth2Error(http.StatusNotFound, ErrorCodeNotFound,
		"resource not found")

	ErrAccountExists = NewOAuth2Error(http.StatusConflict, ErrorCodeAccountExists,
		"username or email is already taken")

	ErrRateLimited = NewOAuth2Error(http.StatusTooManyRequests, ErrorCodeRateLimited,
		"too many requests")

	ErrServerError = NewOAuth2Error(http.StatusInternalServerError, ErrorCodeServerError,
		"internal server error")

	// ErrTemporarilyUnavailable: the store did not answer. Retrying may help.
	ErrTemporarilyUnavailable = NewOAuth2Error(http.StatusServiceUnavailable, ErrorCodeTemporarilyUnavailable,
		"the service is temporarily unavailable, retry later")
)

// parseErrorResponse decodes a failed response. Bodies that are not OAuth2
// errors become a server_error that keeps the status.
func parseErrorResponse(status int, body []byte) error {
	var er ErrorResponse
	if json.Unmarshal(body, &er) == nil && er.Error != "" {
		return NewOAuth2Error(status, er.Error, er.ErrorDescription)
	}
	return NewOAuth2Error(status, ErrorCodeServerError,
		fmt.Sprintf("HTTP %d: %s", status, http.StatusText(status)))
}

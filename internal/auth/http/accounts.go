package http

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/ut4master/internal/auth/domain"
	"github.com/aussiebroadwan/ut4master/internal/auth/service"
	"github.com/aussiebroadwan/ut4master/pkg/authsdk"
	"github.com/aussiebroadwan/ut4master/pkg/httpx"
	"github.com/aussiebroadwan/ut4master/pkg/idx"
)

// AccountsHandler serves registration and the public account lookups.
type AccountsHandler struct {
	Authenticator *service.Authenticator
	Accounts      *service.AccountService
}

// HandleCreate godoc
//
//	@Summary		Register an account
//	@Description	Creates an account. No authentication is required.
//	@Tags			Accounts
//	@Accept			application/x-www-form-urlencoded
//	@Param			username	formData	string	true	"3 to 32 characters, no spaces or @"
//	@Param			password	formData	string	true	"At least 8 characters"
//	@Param			email		formData	string	false	"Optional, unique when set"
//	@Success		204
//	@Failure		400	{object}	authsdk.ErrorResponse	"invalid_request"
//	@Failure		409	{object}	authsdk.ErrorResponse	"account_exists"
//	@Router			/account/api/create/account [post]
func (h *AccountsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if !httpx.IsFormContentType(r.Header.Get("Content-Type")) {
		authsdk.ErrInvalidContentType.WriteError(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		authsdk.ErrInvalidFormBody.WriteError(w)
		return
	}

	_, err := h.Accounts.CreateAccount(r.Context(),
		r.PostForm.Get("username"),
		r.PostForm.Get("email"),
		r.PostForm.Get("password"),
	)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleGet godoc
//
//	@Summary		Get one account
//	@Description	Returns the public view of an account. The real email address is only shown to the account itself.
//	@Tags			Accounts
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string	true	"Account id"
//	@Success		200	{object}	authsdk.AccountResponse
//	@Failure		401	{object}	authsdk.ErrorResponse	"invalid_token"
//	@Failure		404	{object}	authsdk.ErrorResponse	"not_found"
//	@Router			/account/api/public/account/{id} [get]
func (h *AccountsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	p, ok := authenticate(w, r, h.Authenticator)
	if !ok {
		return
	}

	id, err := idx.Parse(r.PathValue("id"))
	if err != nil {
		authsdk.ErrNotFound.WriteError(w)
		return
	}

	account, found, err := h.Accounts.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !found {
		authsdk.ErrNotFound.WriteError(w)
		return
	}

	self := p.HasAccount() && p.AccountID == account.ID
	httpx.WriteJSON(w, http.StatusOK, accountResponse(account, self, r.Host))
}

// HandleList godoc
//
//	@Summary		Look up several accounts
//	@Description	Returns summaries for up to 100 account ids. Unknown and malformed ids are left out.
//	@Tags			Accounts
//	@Security		BearerAuth
//	@Produce		json
//	@Param			accountId	query		[]string	true	"Account ids"	collectionFormat(multi)
//	@Success		200			{array}		authsdk.AccountSummary
//	@Failure		400			{object}	authsdk.ErrorResponse	"invalid_request"
//	@Failure		401			{object}	authsdk.ErrorResponse	"invalid_token"
//	@Router			/account/api/public/account [get]
func (h *AccountsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if _, ok := authenticate(w, r, h.Authenticator); !ok {
		return
	}

	raw := r.URL.Query()["accountId"]
	ids := make([]idx.ID, 0, len(raw))
	for _, s := range raw {
		if id, err := idx.Parse(s); err == nil {
			ids = append(ids, id)
		}
	}

	accounts, err := h.Accounts.ListAccounts(r.Context(), ids)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]authsdk.AccountSummary, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, authsdk.AccountSummary{
			ID:            a.ID.String(),
			DisplayName:   a.Username,
			MinorStatus:   "UNKNOWN",
			ExternalAuths: map[string]any{},
		})
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleMetadata serves GET /account/api/accounts/{id}/metadata. Game builds
// request it after login; nothing is stored, so the body is always empty.
func (h *AccountsHandler) HandleMetadata(w http.ResponseWriter, r *http.Request) {
	if _, ok := authenticate(w, r, h.Authenticator); !ok {
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{})
}

// HandleExternalAuths serves GET /account/api/public/account/{id}/externalAuths.
// Linked third-party logins are not supported.
func (h *AccountsHandler) HandleExternalAuths(w http.ResponseWriter, r *http.Request) {
	if _, ok := authenticate(w, r, h.Authenticator); !ok {
		return
	}
	httpx.WriteJSON(w, http.StatusOK, []any{})
}

// SSODomainsHandler serves GET /account/api/epicdomains/ssodomains.
func SSODomainsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, []string{})
	}
}

func accountResponse(a domain.Account, self bool, host string) authsdk.AccountResponse {
	email := a.ID.String() + "@" + strings.TrimSpace(host)
	if self && a.Email != "" {
		email = a.Email
	}

	lastLogin := a.CreatedAt
	if a.LastLoginAt != nil {
		lastLogin = *a.LastLoginAt
	}

	return authsdk.AccountResponse{
		ID:                   a.ID.String(),
		DisplayName:          a.Username,
		Name:                 a.Username,
		Email:                email,
		LastLogin:            formatTime(lastLogin),
		AgeGroup:             "UNKNOWN",
		Country:              "US",
		LastName:             a.Username,
		PreferredLanguage:    "en",
		CanUpdateDisplayName: true,
		EmailVerified:        true,
		MinorStatus:          "UNKNOWN",
	}
}

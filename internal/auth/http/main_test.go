package http_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/ut4master/internal/auth/domain"
	authhttp "github.com/aussiebroadwan/ut4master/internal/auth/http"
	"github.com/aussiebroadwan/ut4master/internal/auth/service"
	"github.com/aussiebroadwan/ut4master/internal/auth/store"
	"github.com/aussiebroadwan/ut4master/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/ut4master/pkg/authsdk"
	"github.com/aussiebroadwan/ut4master/pkg/cryptox"
	"github.com/aussiebroadwan/ut4master/pkg/httpx"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "ut4master-http")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	// Every test request comes from 127.0.0.1; lift the limits so only the
	// rate limit test itself can trip them.
	relaxed := httpx.RateLimitConfig{RequestsPerWindow: 10000, Window: time.Minute, Burst: 10000}
	httpx.StrictLimit = relaxed
	httpx.ModerateLimit = relaxed
	httpx.LenientLimit = relaxed
	httpx.PublicLimit = relaxed

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

var base = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

// testServer runs the full router over an in-memory store with a settable
// clock.
type testServer struct {
	*httptest.Server
	store store.Store

	mu  sync.Mutex
	now time.Time

	accounts *service.AccountService
	clients  *service.ClientService
	sessions *service.SessionService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	s := &testServer{store: st, now: base}
	clock := service.Clock(s.clock)
	lifetimes := service.DefaultLifetimes()

	s.sessions = &service.SessionService{Store: st, Lifetimes: lifetimes, Clock: clock}
	codes := &service.CodeService{Store: st, Lifetimes: lifetimes, Clock: clock}
	s.accounts = &service.AccountService{Store: st, Clock: clock}
	s.clients = &service.ClientService{Store: st, Clock: clock}

	router := authhttp.NewRouter("test", st, clock, slog.New(slog.DiscardHandler))
	router.SessionService = s.sessions
	router.CodeService = codes
	router.AccountService = s.accounts
	router.TokenService = &service.TokenService{
		Sessions: s.sessions,
		Codes:    codes,
		Accounts: s.accounts,
		Clients:  s.clients,
		Clock:    clock,
	}
	router.Authenticator = &service.Authenticator{Sessions: s.sessions, Clients: s.clients, Clock: clock}
	router.ApplyRoutes()

	s.Server = httptest.NewServer(router)
	t.Cleanup(s.Close)
	return s
}

func (s *testServer) clock() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

func (s *testServer) advance(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = s.now.Add(d)
}

// sdk registers a confidential client and returns an SDK client for it.
func (s *testServer) sdk(t *testing.T, name string) (*authsdk.SDKClient, domain.Client) {
	t.Helper()
	c, secret, err := s.clients.CreateClient(context.Background(), service.NewClient{Name: name, Confidential: true})
	require.NoError(t, err)
	return authsdk.NewSDKClient(s.URL, c.ID.String(), secret), c
}

func (s *testServer) account(t *testing.T, username, email, password string) domain.Account {
	t.Helper()
	a, err := s.accounts.CreateAccount(context.Background(), username, email, password)
	require.NoError(t, err)
	return a
}

// do sends a raw request and returns the response with its body read.
func (s *testServer) do(t *testing.T, method, path string, form url.Values, header http.Header) (*http.Response, string) {
	t.Helper()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(t.Context(), method, s.URL+path, body)
	require.NoError(t, err)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for k, v := range header {
		req.Header[k] = v
	}

	resp, err := s.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(b)
}

func bearer(token string) http.Header {
	return http.Header{"Authorization": {"bearer " + token}}
}

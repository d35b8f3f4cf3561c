package httpx_test

import (
	"encoding/base64"
	"net/http/httptest"
	"testing"

	"github.com/aussiebroadwan/ut4master/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func TestParseAuthorization(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		scheme httpx.Scheme
		creds  string
	}{
		{"absent", "", httpx.SchemeNone, ""},
		{"bearer", "Bearer abc", httpx.SchemeBearer, "abc"},
		{"bearer lower case", "bearer abc", httpx.SchemeBearer, "abc"},
		{"bearer upper case", "BEARER abc", httpx.SchemeBearer, "abc"},
		{"bearer without token", "Bearer", httpx.SchemeBearer, ""},
		{"basic", "Basic Zm9vOmJhcg==", httpx.SchemeBasic, "Zm9vOmJhcg=="},
		{"basic mixed case", "bAsIc Zm9vOmJhcg==", httpx.SchemeBasic, "Zm9vOmJhcg=="},
		{"unknown scheme", "Digest username=x", httpx.SchemeNone, ""},
		{"scheme prefix only", "Bearerabc", httpx.SchemeNone, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a := httpx.ParseAuthorization(tt.header)
			require.Equal(t, tt.scheme, a.Scheme)
			require.Equal(t, tt.creds, a.Credentials)
		})
	}
}

func TestBasicCredentials(t *testing.T) {
	t.Parallel()

	enc := func(s string) string { return "Basic " + base64.StdEncoding.EncodeToString([]byte(s)) }

	id, secret, err := httpx.ParseAuthorization(enc("client:se:cret")).BasicCredentials()
	require.NoError(t, err)
	require.Equal(t, "client", id)
	require.Equal(t, "se:cret", secret)

	id, secret, err = httpx.ParseAuthorization(enc("public:")).BasicCredentials()
	require.NoError(t, err)
	require.Equal(t, "public", id)
	require.Empty(t, secret)

	for _, h := range []string{enc("nocolon"), enc(":secret"), "Basic !!!", "Bearer abc"} {
		_, _, err := httpx.ParseAuthorization(h).BasicCredentials()
		require.ErrorIs(t, err, httpx.ErrMalformedBasic, h)
	}
}

func TestChallenges(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	httpx.SetBearerChallenge(rec, "invalid_token", "expired")
	require.Equal(t, `Bearer realm="ut4master", error="invalid_token", error_description="expired"`,
		rec.Header().Get("WWW-Authenticate"))

	rec = httptest.NewRecorder()
	httpx.SetBasicChallenge(rec)
	require.Contains(t, rec.Header().Get("WWW-Authenticate"), "Basic realm=")
}

package cryptox

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/argon2"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "cryptox")
	if err != nil {
		panic(err)
	}
	SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func TestHashAndVerify(t *testing.T) {
	t.Parallel()

	secrets := map[string]string{
		"account password": "correct-horse",
		"client secret":    MustGenerateToken(TokenSize256),
		"unicode":          "pässwörd-密码",
		"empty":            "",
	}
	for name, secret := range secrets {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			h, err := HashPassword(secret)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(h, fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$", memory, iterations, parallelism)))

			require.NoError(t, VerifyPassword(secret, h))
			require.ErrorIs(t, VerifyPassword(secret+"x", h), ErrPasswordMismatch)
		})
	}
}

func TestHashUsesFreshSalt(t *testing.T) {
	t.Parallel()
	a, err := HashPassword("same")
	require.NoError(t, err)
	b, err := HashPassword("same")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestVerifyHonoursStoredParameters(t *testing.T) {
	t.Parallel()

	// A hash written with weaker parameters than the current defaults still
	// verifies.
	salt := []byte("0123456789abcdef")
	key := argon2.IDKey([]byte("legacy"+GetPepper()), salt, 1, 8*1024, 1, 16)
	h := fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s", 8*1024, 1, 1,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key))

	require.NoError(t, VerifyPassword("legacy", h))
	require.ErrorIs(t, VerifyPassword("other", h), ErrPasswordMismatch)
}

func TestVerifyMalformedHash(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"empty":         "",
		"bcrypt":        "$2a$10$abcdefghijklmnopqrstuv",
		"argon2i":       "$argon2i$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		"old version":   "$argon2id$v=16$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		"bad params":    "$argon2id$v=19$m=x,t=2,p=1$c2FsdA$aGFzaA",
		"bad salt":      "$argon2id$v=19$m=19456,t=2,p=1$!!!$aGFzaA",
		"bad key":       "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$!!!",
		"missing parts": "$argon2id$v=19$m=19456,t=2,p=1",
	}
	for name, h := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			err := VerifyPassword("pw", h)
			require.ErrorIs(t, err, ErrMalformedHash)
			require.NotErrorIs(t, err, ErrPasswordMismatch)
		})
	}
}

func TestDummyHash(t *testing.T) {
	t.Parallel()
	h := DummyHash()
	require.Equal(t, h, DummyHash(), "computed once")
	require.ErrorIs(t, VerifyPassword("anything", h), ErrPasswordMismatch)
}

func TestPepperPersistsAcrossReload(t *testing.T) {
	before := GetPepper()
	require.NotEmpty(t, before)

	h, err := HashPassword("correct-horse")
	require.NoError(t, err)

	require.NoError(t, ReloadPepper())
	require.Equal(t, before, GetPepper())
	require.NoError(t, VerifyPassword("correct-horse", h), "hashes survive a restart")
}

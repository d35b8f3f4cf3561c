package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

var (
	pepperMu   sync.RWMutex
	pepper     string
	pepperFile = "pepper"
)

// SetPepperPath sets the file the pepper is loaded from (or written to on
// first use) and forgets any pepper already loaded.
func SetPepperPath(file string) {
	pepperMu.Lock()
	defer pepperMu.Unlock()
	pepperFile = file
	pepper = ""
}

// GetPepper returns the process-wide pepper appended to every password before
// hashing. A pepper that cannot be loaded or created is fatal: hashing
// without it would produce hashes that never verify again.
func GetPepper() string {
	pepperMu.RLock()
	p := pepper
	pepperMu.RUnlock()
	if p != "" {
		return p
	}

	pepperMu.Lock()
	defer pepperMu.Unlock()
	if pepper != "" {
		return pepper
	}

	var err error
	pepper, err = loadOrGeneratePepper(pepperFile)
	if err != nil {
		slog.Error("failed to load or generate pepper", slog.Any("err", err))
		panic(err)
	}
	return pepper
}

// ReloadPepper re-reads the pepper file, for instance after a restore.
func ReloadPepper() error {
	pepperMu.Lock()
	defer pepperMu.Unlock()

	p, err := loadOrGeneratePepper(pepperFile)
	if err != nil {
		slog.Error("failed to load or generate pepper", slog.Any("err", err))
		return err
	}
	pepper = p
	return nil
}

// loadOrGeneratePepper reads file, creating it with a fresh random pepper
// when it does not exist. Creation is exclusive so two processes starting on
// an empty volume agree on one pepper.
func loadOrGeneratePepper(file string) (string, error) {
	file = filepath.Clean(file)
	if err := os.MkdirAll(filepath.Dir(file), 0o750); err != nil {
		return "", fmt.Errorf("pepper dir: %w", err)
	}

	for range 2 {
		b, err := os.ReadFile(file)
		switch {
		case err == nil && len(b) == 0:
			return "", fmt.Errorf("pepper file %s is empty", file)
		case err == nil:
			return string(b), nil
		case !errors.Is(err, fs.ErrNotExist):
			return "", fmt.Errorf("read pepper: %w", err)
		}

		p, err := createPepper(file)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		return p, err
	}
	return "", fmt.Errorf("pepper file %s vanished while loading", file)
}

func createPepper(file string) (string, error) {
	raw := make([]byte, keyLength)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate pepper: %w", err)
	}
	p := base64.RawURLEncoding.EncodeToString(raw)

	f, err := os.OpenFile(file, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", err
	}
	if _, err := f.WriteString(p); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write pepper: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("write pepper: %w", err)
	}
	return p, nil
}

package domain

import (
	"time"

	"github.com/aussiebroadwan/ut4master/pkg/idx"
)

type Account struct {
	ID           idx.ID
	Username     string
	Email        string // optional, unique when set
	PasswordHash string // argon2id, PHC encoded
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}

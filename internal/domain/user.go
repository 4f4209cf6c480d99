package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is an account holder. PasswordHash is a bcrypt hash and never leaves
// the service layer.
type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Identity is the authenticated caller of an operation. It is passed
// explicitly to every service method; nothing reads it from globals.
type Identity struct {
	UserID uuid.UUID
}

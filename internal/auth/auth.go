package auth

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/DoyleJ11/quiz-buzzer-backend/internal/engine"
)

type Credential struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// Credentials holds the two shared role logins. A password may be stored as
// a bcrypt hash or in plain text.
type Credentials struct {
	Host   Credential
	Player Credential
}

// Check resolves a login to a role. The host wins if both pairs match.
func (c Credentials) Check(username, password string) (engine.Role, bool) {
	if c.Host.matches(username, password) {
		return engine.RoleHost, true
	}
	if c.Player.matches(username, password) {
		return engine.RolePlayer, true
	}
	return engine.RoleNone, false
}

func (c Credential) matches(username, password string) bool {
	if c.Username == "" {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(c.Username), []byte(username)) == 1
	return passwordMatches(c.Password, password) && userOK
}

func passwordMatches(stored, given string) bool {
	if IsHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}

func IsHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}

// HashPassword is used by the hash-password subcommand.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

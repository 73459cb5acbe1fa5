package session

import (
	"strings"

	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/shared"
)

// SignupForm is the account creation form.
type SignupForm struct {
	Username        string
	Password        string
	ConfirmPassword string
}

// Validate requires every field and matching passwords.
func (f SignupForm) Validate() error {
	if strings.TrimSpace(f.Username) == "" || f.Password == "" || f.ConfirmPassword == "" {
		return shared.Invalid("form", "All fields are required.")
	}
	if f.Password != f.ConfirmPassword {
		return shared.Invalid("confirm_password", "Passwords do not match.")
	}
	return nil
}

// ValidateLogin requires both credentials.
func ValidateLogin(username, password string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		return shared.Invalid("form", "Username and password are required.")
	}
	return nil
}

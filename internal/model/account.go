package model

import (
	"fmt"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"catalogapi/internal/apperror"
)

// Account is a registered API user. PasswordHash never leaves the service layer.
type Account struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Email        string    `json:"email"`
	CreatedAt    time.Time `json:"created_at"`
}

// TokenPair is the credential set handed out on login and registration.
type TokenPair struct {
	Access           string    `json:"access"`
	Refresh          string    `json:"refresh"`
	AccountID        int64     `json:"-"`
	IssuedAt         time.Time `json:"-"`
	ExpiresAt        time.Time `json:"-"`
	RefreshExpiresAt time.Time `json:"-"`
}

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// Registration is the input of account registration.
type Registration struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

func (r *Registration) Validate() error {
	return apperror.FromValidation(validation.ValidateStruct(r,
		validation.Field(&r.Username,
			validation.Required,
			validation.RuneLength(1, 150),
			validation.Match(usernamePattern).Error("may contain only letters, digits and @/./+/-/_"),
		),
		validation.Field(&r.Password, passwordRules...),
		validation.Field(&r.Email, is.Email),
	))
}

// Credentials is the input of login.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (c *Credentials) Validate() error {
	return apperror.FromValidation(validation.ValidateStruct(c,
		validation.Field(&c.Username, validation.Required),
		validation.Field(&c.Password, validation.Required),
	))
}

// PasswordChange is the input of a password change.
type PasswordChange struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

func (p *PasswordChange) Validate() error {
	return apperror.FromValidation(validation.ValidateStruct(p,
		validation.Field(&p.OldPassword, validation.Required),
		validation.Field(&p.NewPassword, passwordRules...),
	))
}

var passwordRules = []validation.Rule{
	validation.Required,
	validation.By(maxBytes(MaxPasswordBytes)),
}

// maxBytes bounds the encoded length; validation.Length counts runes.
func maxBytes(n int) validation.RuleFunc {
	return func(value interface{}) error {
		if s, _ := value.(string); len(s) > n {
			return fmt.Errorf("must be at most %d bytes", n)
		}
		return nil
	}
}

package security

import (
	"fmt"
	"unicode"

	"github.com/nbutton23/zxcvbn-go"
)

// PasswordRule validates a single aspect of a candidate password.
type PasswordRule interface {
	Validate(password string) error
}

// PasswordRuleFunc adapts a plain function to the PasswordRule interface.
type PasswordRuleFunc func(password string) error

func (f PasswordRuleFunc) Validate(password string) error {
	return f(password)
}

// PasswordValidator runs each rule in order and reports the first violation.
type PasswordValidator struct {
	rules []PasswordRule
}

func NewPasswordValidator(rules ...PasswordRule) *PasswordValidator {
	return &PasswordValidator{rules: rules}
}

func (v *PasswordValidator) Validate(password string) error {
	for _, rule := range v.rules {
		if err := rule.Validate(password); err != nil {
			return err
		}
	}
	return nil
}

// DefaultPasswordValidator matches the registration password policy: minimum
// length, mixed character classes, and a zxcvbn strength floor.
func DefaultPasswordValidator() *PasswordValidator {
	return NewPasswordValidator(
		MinLengthRule(8),
		RequireCharacterClassesRule(),
		MinStrengthScoreRule(2),
	)
}

// MinLengthRule requires the password to contain at least n characters.
func MinLengthRule(n int) PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		if len(password) < n {
			return fmt.Errorf("password must contain at least %d characters", n)
		}
		return nil
	})
}

// RequireCharacterClassesRule requires at least one uppercase letter, one
// lowercase letter, one digit, and one special character.
func RequireCharacterClassesRule() PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		var hasUpper, hasLower, hasDigit, hasSpecial bool
		for _, r := range password {
			switch {
			case unicode.IsUpper(r):
				hasUpper = true
			case unicode.IsLower(r):
				hasLower = true
			case unicode.IsDigit(r):
				hasDigit = true
			case unicode.IsPunct(r) || unicode.IsSymbol(r):
				hasSpecial = true
			}
		}

		switch {
		case !hasUpper:
			return fmt.Errorf("password must contain at least one uppercase letter")
		case !hasLower:
			return fmt.Errorf("password must contain at least one lowercase letter")
		case !hasDigit:
			return fmt.Errorf("password must contain at least one digit")
		case !hasSpecial:
			return fmt.Errorf("password must contain at least one special character")
		}
		return nil
	})
}

// MinStrengthScoreRule rejects passwords scoring below the given zxcvbn
// score. Scores range from 0 (guessable) to 4 (strong).
func MinStrengthScoreRule(minScore int) PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		result := zxcvbn.PasswordStrength(password, nil)
		if result.Score < minScore {
			return fmt.Errorf("password is too weak")
		}
		return nil
	})
}

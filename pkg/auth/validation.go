package auth

import (
	"errors"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// bcrypt ignores everything past 72 bytes, so longer passwords are refused
// up front instead of failing inside the hasher.
const maxPasswordBytes = 72

var (
	reLower = regexp.MustCompile(`[a-z]`)
	reUpper = regexp.MustCompile(`[A-Z]`)
	reDigit = regexp.MustCompile(`[0-9]`)
)

const passwordComplexityMsg = "Password must contain at least one lowercase letter, one uppercase letter, and one number"

// fieldOrder keeps joined messages stable and in form order.
var fieldOrder = []string{"name", "email", "currentPassword", "password", "passwordConfirm"}

type SignupInput struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

func (in *SignupInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = NormalizeEmail(in.Email)
}

func (in SignupInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name,
			validation.Required.Error("Name is required"),
			validation.RuneLength(2, 50).Error("Name must be between 2 and 50 characters"),
		),
		validation.Field(&in.Email,
			validation.Required.Error("Email is required"),
			is.EmailFormat.Error("Please provide a valid email"),
		),
		validation.Field(&in.Password, passwordRules()...),
		validation.Field(&in.PasswordConfirm, confirmRules(in.Password)...),
	)
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

func (in ChangePasswordInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.CurrentPassword, validation.Required.Error("Current password is required")),
		validation.Field(&in.Password, passwordRules()...),
		validation.Field(&in.PasswordConfirm, confirmRules(in.Password)...),
	)
}

func passwordRules() []validation.Rule {
	return []validation.Rule{
		validation.Required.Error("Password is required"),
		validation.Length(8, 0).Error("Password must be at least 8 characters long"),
		validation.Length(0, maxPasswordBytes).Error("Password must be at most 72 bytes long"),
		validation.Match(reLower).Error(passwordComplexityMsg),
		validation.Match(reUpper).Error(passwordComplexityMsg),
		validation.Match(reDigit).Error(passwordComplexityMsg),
	}
}

func confirmRules(password string) []validation.Rule {
	return []validation.Rule{
		validation.Required.Error("Please confirm your password"),
		validation.By(func(v any) error {
			if s, _ := v.(string); s != password {
				return errors.New("Passwords are not the same")
			}
			return nil
		}),
	}
}

// asValidationError turns ozzo field errors into a KindValidation *Error.
// Anything else is an internal failure of the validator itself.
func asValidationError(err error) error {
	if err == nil {
		return nil
	}
	var fields validation.Errors
	if !errors.As(err, &fields) {
		return internal(err)
	}
	messages := make([]string, 0, len(fields))
	for _, name := range fieldOrder {
		if fe, ok := fields[name]; ok && fe != nil {
			messages = append(messages, fe.Error())
		}
	}
	return validationError(messages...)
}

package validation

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// MaxImageSize is the largest accepted profile photo (1 MiB).
const MaxImageSize = 1024 * 1024

// Password length bounds, counted in characters.
const (
	MinPasswordLength = 12
	MaxPasswordLength = 64
)

var (
	phonePattern = regexp.MustCompile(`^0?9[0-9]{9}$`)

	imageMagic = map[string][]byte{
		"image/jpeg": {0xff, 0xd8, 0xff, 0xe0},
		"image/png":  {0x89, 0x50, 0x4e, 0x47},
	}

	validate = newValidator()
)

// ValidationError describes the first field that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Registration holds the text fields of a registration form.
type Registration struct {
	Name     string `validate:"not_blank"`
	Email    string `validate:"required,email"`
	Password string `validate:"strong_password"`
	Phone    string `validate:"ph_mobile"`
}

var fieldMessages = map[string]string{
	"Name":     "Invalid name. Name must not be an empty string or whitespaces.",
	"Email":    "Invalid email format. Please enter a valid email address.",
	"Password": "Invalid password. Password must be at least 12 characters long and include at least one lowercase letter, one uppercase letter, one number, and one special character.",
	"Phone":    "Invalid phone number.",
}

func newValidator() *validator.Validate {
	v := validator.New()
	must(v.RegisterValidation("not_blank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}))
	must(v.RegisterValidation("strong_password", func(fl validator.FieldLevel) bool {
		return IsStrongPassword(fl.Field().String())
	}))
	must(v.RegisterValidation("ph_mobile", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	}))
	return v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// ValidateRegistration checks name, email, password and phone in that order
// and returns a *ValidationError for the first one that fails.
func ValidateRegistration(r Registration) error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		field := fieldErrs[0].Field()
		return &ValidationError{Field: strings.ToLower(field), Message: fieldMessages[field]}
	}
	return err
}

// ValidateName rejects empty and whitespace-only names.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Field: "name", Message: fieldMessages["Name"]}
	}
	return nil
}

// ValidateEmail checks the address format.
func ValidateEmail(email string) error {
	if err := validate.Var(email, "required,email"); err != nil {
		return &ValidationError{Field: "email", Message: fieldMessages["Email"]}
	}
	return nil
}

// ValidatePassword enforces the strong password policy.
func ValidatePassword(password string) error {
	if !IsStrongPassword(password) {
		return &ValidationError{Field: "password", Message: fieldMessages["Password"]}
	}
	return nil
}

// ValidatePhone accepts mobile numbers of the form 9XXXXXXXXX with an optional
// leading zero.
func ValidatePhone(phone string) error {
	if !phonePattern.MatchString(phone) {
		return &ValidationError{Field: "phone", Message: fieldMessages["Phone"]}
	}
	return nil
}

// NormalizePhone drops leading zeros, the format phones are stored in.
func NormalizePhone(phone string) string {
	trimmed := strings.TrimLeft(phone, "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}

// IsStrongPassword reports whether password is 12 to 64 characters on a single
// line and contains a lowercase letter, an uppercase letter, a digit and a
// character outside [A-Za-z0-9].
func IsStrongPassword(password string) bool {
	if strings.ContainsAny(password, "\r\n") {
		return false
	}
	n := utf8.RuneCountInString(password)
	if n < MinPasswordLength || n > MaxPasswordLength {
		return false
	}

	var lower, upper, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			special = true
		}
	}
	return lower && upper && digit && special
}

// ValidateImage checks a profile photo: the declared content type must be JPEG
// or PNG, the data must begin with that type's magic number, and the upload
// must not exceed MaxImageSize.
func ValidateImage(contentType string, data []byte, size int64) error {
	if contentType == "" || len(data) == 0 {
		return &ValidationError{Field: "image", Message: "Invalid image file."}
	}

	magic, ok := imageMagic[contentType]
	if !ok {
		return &ValidationError{Field: "image", Message: "Invalid image file. Upload a JPG/JPEG or PNG file."}
	}
	if len(data) < len(magic) {
		return &ValidationError{Field: "image", Message: "Invalid image file."}
	}
	if !bytes.Equal(data[:len(magic)], magic) {
		return &ValidationError{Field: "image", Message: "Invalid image file. Upload a JPG/JPEG or PNG file."}
	}

	if size > MaxImageSize {
		return ImageTooLarge()
	}
	return nil
}

// ImageTooLarge is the error for a photo over MaxImageSize.
func ImageTooLarge() *ValidationError {
	return &ValidationError{Field: "image", Message: "Invalid image size. Please upload an image with size less than or equal to 1MB."}
}

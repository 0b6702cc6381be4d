// Package validation проверяет входящие формы и чистит пользовательский текст.
package validation

import (
	"errors"
	"fmt"
	"html"
	"reflect"
	"sort"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/xela07ax/hospital-console/internal/domain"
)

// MinPhoneDigits — минимальное число цифр в телефоне, разделители не считаются.
const MinPhoneDigits = 10

// Error — ошибки по полям (ключ — json-имя поля).
type Error struct {
	Fields map[string]string `json:"fields"`
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *Error) Unwrap() error { return domain.ErrInvalidInput }

// Validator оборачивает go-playground/validator и политику bluemonday.
type Validator struct {
	v      *validator.Validate
	policy *bluemonday.Policy
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// В ошибках используем json-имена, их видит клиент
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return ValidPhone(fl.Field().String())
	})
	_ = v.RegisterValidation("slot", func(fl validator.FieldLevel) bool {
		return domain.IsAvailableTime(fl.Field().String())
	})

	return &Validator{v: v, policy: bluemonday.StrictPolicy()}
}

// Struct проверяет структуру по тегам validate.
func (v *Validator) Struct(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	out := &Error{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		out.Fields[fe.Field()] = message(fe)
	}
	return out
}

// Sanitize удаляет любую разметку и пробелы по краям и возвращает обычный
// текст без HTML-сущностей. Экранирует его шаблон при выводе.
func (v *Validator) Sanitize(s string) string {
	return strings.TrimSpace(html.UnescapeString(v.policy.Sanitize(s)))
}

// ValidPhone считает только цифры, допускает +, пробелы, дефисы и скобки.
func ValidPhone(s string) bool {
	digits := 0
	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == '+' || r == ' ' || r == '-' || r == '(' || r == ')':
		default:
			return false
		}
	}
	return digits >= MinPhoneDigits && digits <= 15
}

// Fields собирает ошибку из произвольных сообщений (для проверок вне тегов).
func Fields(kv ...string) error {
	out := &Error{Fields: make(map[string]string, len(kv)/2)}
	for i := 0; i+1 < len(kv); i += 2 {
		out.Fields[kv[i]] = kv[i+1]
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "uuid":
		return "must be a valid id"
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "phone":
		return fmt.Sprintf("must contain at least %d digits", MinPhoneDigits)
	case "slot":
		return "is not an available time slot"
	default:
		return "is invalid"
	}
}

// Package validation wraps go-playground/validator with English messages
// and the custom tags used by program data.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	Validate   *validator.Validate
	Translator ut.Translator

	// ErrInvalid is wrapped by every *Error.
	ErrInvalid = errors.New("validation failed")

	// custom validation tags
	notBlankTag = "notblank"
	weekdayTag  = "weekday"
	clockTag    = "clock"

	clockRegex = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

	weekdays = map[string]bool{
		"Monday": true, "Tuesday": true, "Wednesday": true, "Thursday": true,
		"Friday": true, "Saturday": true, "Sunday": true,
	}
)

func init() {
	Validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	Translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(Validate, Translator)

	// Use JSON tag names for errors instead of Go struct names.
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = Validate.RegisterValidation(notBlankTag, notBlankValidation)
	_ = Validate.RegisterValidation(weekdayTag, weekdayValidation)
	_ = Validate.RegisterValidation(clockTag, clockValidation)

	registerFn := func(ut.Translator) error { return nil }
	for _, tag := range []string{notBlankTag, weekdayTag, clockTag} {
		_ = Validate.RegisterTranslation(tag, Translator, registerFn, translateCustom)
	}
}

func translateCustom(_ ut.Translator, fe validator.FieldError) string {
	switch fe.Tag() {
	case notBlankTag:
		return fe.Field() + " cannot be blank"
	case weekdayTag:
		return fe.Field() + " must be a day of the week"
	case clockTag:
		return fe.Field() + " must be a time in HH:MM format"
	default:
		return ""
	}
}

func notBlankValidation(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return fl.Field().Kind() == reflect.String && strings.TrimSpace(fl.Field().String()) != ""
}

func weekdayValidation(fl validator.FieldLevel) bool {
	return weekdays[fl.Field().String()]
}

func clockValidation(fl validator.FieldLevel) bool {
	return clockRegex.MatchString(fl.Field().String())
}

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

// Error reports one or more invalid fields.
type Error struct {
	Fields []FieldError
}

// NewError builds a validation error from explicit field errors.
func NewError(flds ...FieldError) error {
	return &Error{Fields: flds}
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return ErrInvalid.Error()
	}
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Error
	}
	return strings.Join(parts, "; ")
}

func (e *Error) Unwrap() error {
	return ErrInvalid
}

// Field returns the message recorded for name, if any.
func (e *Error) Field(name string) (string, bool) {
	for _, f := range e.Fields {
		if f.Field == name {
			return f.Error, true
		}
	}
	return "", false
}

// Struct validates v and converts failures into an *Error with English messages.
func Struct(v any) error {
	err := Validate.Struct(v)
	if err == nil {
		return nil
	}

	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return err
	}

	flds := make([]FieldError, 0, len(vErrs))
	for _, vErr := range vErrs {
		flds = append(flds, FieldError{
			Field: fieldPath(vErr),
			Error: vErr.Translate(Translator),
		})
	}
	sort.SliceStable(flds, func(i, j int) bool { return flds[i].Field < flds[j].Field })
	return &Error{Fields: flds}
}

// fieldPath strips the top-level struct name from a namespace like "Resource.tags[0]".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

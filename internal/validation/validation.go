package validation

import (
	"errors"
	"fmt"
	"log"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	validate *validator.Validate
	trans    ut.Translator
)

// FieldErrors maps a request field (its json name) to a readable message
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, e[f])
	}
	return strings.Join(parts, "; ")
}

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	english := en.New()
	uni := ut.New(english, english)
	var found bool
	trans, found = uni.GetTranslator("en")
	if !found {
		log.Fatal("translator not found")
	}
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		log.Fatalf("Failed to register validation translations: %v", err)
	}

	// Profile names are map keys and URL segments
	if err := validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		name := strings.TrimSpace(fl.Field().String())
		return name != "" && !strings.ContainsAny(name, "/\\?#")
	}); err != nil {
		log.Fatalf("Failed to register username validation: %v", err)
	}
	_ = validate.RegisterTranslation("username", trans, func(ut ut.Translator) error {
		return ut.Add("username", "{0} must be a non-empty name without / \\ ? or #", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("username", fe.Field())
		return t
	})
}

// Struct validates a request body according to its validate tags
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	return translate(err)
}

func translate(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validation failed: %w", err)
	}
	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fe.Translate(trans)
	}
	return out
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return FieldErrors{"email": "email is required"}
	}
	if strings.ContainsAny(email, " \t") || validate.Var(email, "email") != nil {
		return FieldErrors{"email": "invalid email format"}
	}
	return nil
}

// ValidateName checks a profile name
func ValidateName(name string) error {
	if err := validate.Var(name, "username,max=40"); err != nil {
		return FieldErrors{"name": "name must be 1-40 characters without / \\ ? or #"}
	}
	return nil
}

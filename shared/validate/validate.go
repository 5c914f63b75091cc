package validate

import (
	"errors"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
)

// Validator wraps go-playground/validator with English messages.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// New creates a Validator with the English translations registered.
func New() (*Validator, error) {
	english := en.New()
	uni := ut.New(english, english)

	translator, found := uni.GetTranslator("en")
	if !found {
		return nil, errors.New("english translator not found")
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	if err := entranslations.RegisterDefaultTranslations(v, translator); err != nil {
		return nil, err
	}

	return &Validator{validate: v, translator: translator}, nil
}

// Struct validates s. The returned error carries a human readable message per failed field.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, fe.Translate(v.translator))
	}

	return &Error{Messages: messages}
}

// Error is returned by Struct when one or more fields fail validation.
type Error struct {
	Messages []string
}

func (e *Error) Error() string {
	return strings.Join(e.Messages, "; ")
}

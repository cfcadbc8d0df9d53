package rekuest

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	esTranslations "github.com/go-playground/validator/v10/translations/es"
	frTranslations "github.com/go-playground/validator/v10/translations/fr"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"properly.homes/backend/internal/pkg/prerr"
	"properly.homes/backend/internal/util"
	"properly.homes/backend/internal/util/i18n"
)

var Validate = util.NewValidator()

type registerFunc func(v *validator.Validate, trans ut.Translator) error

// customMessages are the messages of the validations registered in util.NewValidator.
var customMessages = map[string]map[string]string{
	"en": {
		"billingcycle": "{0} must be either monthly or annual",
		"propertytype": "{0} is not a supported property type",
		"sitelanguage": "{0} must be one of en, fr, es",
	},
	"fr": {
		"billingcycle": "{0} doit être monthly ou annual",
		"propertytype": "{0} n'est pas un type de bien pris en charge",
		"sitelanguage": "{0} doit être en, fr ou es",
	},
	"es": {
		"billingcycle": "{0} debe ser monthly o annual",
		"propertytype": "{0} no es un tipo de propiedad admitido",
		"sitelanguage": "{0} debe ser en, fr o es",
	},
}

func init() {
	defaults := map[string]registerFunc{
		"en": enTranslations.RegisterDefaultTranslations,
		"fr": frTranslations.RegisterDefaultTranslations,
		"es": esTranslations.RegisterDefaultTranslations,
	}

	for locale, register := range defaults {
		tr, _ := i18n.UT.GetTranslator(locale)
		if err := register(Validate, tr); err != nil {
			log.Warn().Err(err).Str("locale", locale).Msg("could not register translation")
		}

		err := Validate.RegisterTranslation("caseinsensitiveoneof", tr, func(ut ut.Translator) error {
			return nil
		}, func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T("oneof", fe.Field(), fe.Param())
			return t
		})
		if err != nil {
			log.Warn().Err(err).Str("locale", locale).Msg("could not register translation for function caseinsensitiveoneof")
		}

		for tag, message := range customMessages[locale] {
			tag, message := tag, message
			err := Validate.RegisterTranslation(tag, tr, func(ut ut.Translator) error {
				return ut.Add(tag, message, true)
			}, func(ut ut.Translator, fe validator.FieldError) string {
				t, _ := ut.T(tag, fe.Field())
				return t
			})
			if err != nil {
				log.Warn().Err(err).Str("locale", locale).Str("tag", tag).Msg("could not register custom translation")
			}
		}
	}
}

type ErrorResponse struct {
	Field     string `json:"field,omitempty"`
	Violation string `json:"violation"`
	Message   string `json:"message"`
}

// translate translates errors into ErrorResponses
func translate(utt ut.Translator, ve validator.ValidationErrors) []*ErrorResponse {
	trans := make([]*ErrorResponse, 0, len(ve))

	for _, fe := range ve {
		trans = append(trans, &ErrorResponse{
			Field:     fe.Field(),
			Violation: fe.Tag(),
			Message:   fe.Translate(utt),
		})
	}

	return trans
}

func validateVar(ctx *fiber.Ctx, s any, tag string) []*ErrorResponse {
	err := Validate.Var(s, tag)
	if err != nil {
		errs := err.(validator.ValidationErrors)
		return translate(TranslatorFromCtx(ctx), errs)
	}
	return nil
}

func validateStruct(ctx *fiber.Ctx, s any) []*ErrorResponse {
	err := Validate.Struct(s)
	if err != nil {
		errs, ok := err.(validator.ValidationErrors)
		if !ok {
			panic(err)
		}
		return translate(TranslatorFromCtx(ctx), errs)
	}
	return nil
}

// ValidBody will get the body from *fiber.Ctx using fiber#BodyParser(),
// and validate it using the validator singleton. If the validation passed it will write the unmarshalled body
// to dest and return a nil, otherwise it will return an error. Notice that dest shall
// always be a pointer.
func ValidBody(ctx *fiber.Ctx, dest any) error {
	if err := ctx.BodyParser(dest); err != nil {
		return prerr.ErrInvalidReq.Msg("invalid request: %s", err)
	}

	return ValidStruct(ctx, dest)
}

// ValidQuery is ValidBody for the query string.
func ValidQuery(ctx *fiber.Ctx, dest any) error {
	if err := ctx.QueryParser(dest); err != nil {
		return prerr.ErrInvalidReq.Msg("invalid query: %s", err)
	}

	return ValidStruct(ctx, dest)
}

func ValidStruct(ctx *fiber.Ctx, dest any) error {
	if err := validateStruct(ctx, dest); err != nil {
		return prerr.NewInvalidViolations(err)
	}

	return nil
}

func ValidVar(ctx *fiber.Ctx, field any, tag string) error {
	if err := validateVar(ctx, field, tag); err != nil {
		return prerr.NewInvalidViolations(err)
	}

	return nil
}

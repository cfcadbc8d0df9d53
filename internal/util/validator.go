package util

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"gopkg.in/guregu/null.v3"

	"properly.homes/backend/internal/constant"
)

var propertyTypes = []string{"villa", "apartment", "penthouse", "house", "estate", "chalet", "land"}

func NewValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(jsonTagName)
	validate.RegisterValidation("caseinsensitiveoneof", caseInsensitiveOneOf)
	validate.RegisterValidation("billingcycle", billingCycle)
	validate.RegisterValidation("propertytype", propertyType)
	validate.RegisterValidation("sitelanguage", siteLanguage)
	validate.RegisterCustomTypeFunc(nullIntValuer, null.Int{})
	validate.RegisterCustomTypeFunc(nullStringValuer, null.String{})
	validate.RegisterCustomTypeFunc(nullBoolValuer, null.Bool{})
	validate.RegisterCustomTypeFunc(nullFloatValuer, null.Float{})

	return validate
}

// jsonTagName reports violations with the field names clients send.
func jsonTagName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "query", "params"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

func caseInsensitiveOneOf(fl validator.FieldLevel) bool {
	val := strings.ToLower(fl.Field().String())
	candidates := strings.Split(strings.ToLower(fl.Param()), " ")
	return lo.Contains(candidates, val)
}

func billingCycle(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	return val == constant.BillingCycleMonthly || val == constant.BillingCycleAnnual
}

func propertyType(fl validator.FieldLevel) bool {
	return IsPropertyType(fl.Field().String())
}

func IsPropertyType(s string) bool {
	return lo.Contains(propertyTypes, s)
}

func siteLanguage(fl validator.FieldLevel) bool {
	return lo.Contains(constant.SupportedLanguages, fl.Field().String())
}

func nullIntValuer(field reflect.Value) any {
	if valuer, ok := field.Interface().(null.Int); ok {
		return valuer.Int64
	}

	return nil
}

func nullStringValuer(field reflect.Value) any {
	if valuer, ok := field.Interface().(null.String); ok {
		return valuer.String
	}

	return nil
}

func nullBoolValuer(field reflect.Value) any {
	if valuer, ok := field.Interface().(null.Bool); ok {
		return valuer.Bool
	}

	return nil
}

func nullFloatValuer(field reflect.Value) any {
	if valuer, ok := field.Interface().(null.Float); ok {
		return valuer.Float64
	}

	return nil
}

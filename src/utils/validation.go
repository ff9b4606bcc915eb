package utils

import (
	"cinco/src/types"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
	mobileRegexp = regexp.MustCompile(`^\+?[0-9][0-9 ()-]{6,19}$`)
)

var mobileValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	v, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return mobileRegexp.MatchString(v)
}

var accountTypeValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case string(types.ACCOUNT_PLAYER), string(types.ACCOUNT_SHIRT):
		return true
	}
	return false
}

// RegisterValidations adds the custom tags used by request bodies.
func RegisterValidations(v *validator.Validate) {
	v.RegisterValidation("mobile", mobileValidatorFunc)
	v.RegisterValidation("account_type", accountTypeValidatorFunc)
}

func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		RegisterValidations(validate)
	})
	return validate
}

// ValidateInto validates s and records every failure under prefix+field.
func ValidateInto(verrs types.ValidationErrors, prefix string, s any) {
	err := GetValidator().Struct(s)
	if err == nil {
		return
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		verrs.Add(strings.TrimSuffix(prefix, "."), err.Error())
		return
	}
	for _, fe := range fieldErrs {
		verrs.Add(prefix+fe.Field(), FieldMessage(fe))
	}
}

func FieldMessage(fe validator.FieldError) string {
	label := strings.ReplaceAll(fe.Field(), "_", " ")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", label)
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", label)
	case "max":
		return fmt.Sprintf("The %s may not be greater than %s characters.", label, fe.Param())
	case "min":
		return fmt.Sprintf("The %s must be at least %s.", label, fe.Param())
	case "mobile":
		return fmt.Sprintf("The %s must be a valid mobile number.", label)
	case "account_type":
		return fmt.Sprintf("The selected %s is invalid.", label)
	}
	return fmt.Sprintf("The %s is invalid.", label)
}

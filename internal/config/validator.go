package config

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

// thumbSizePattern matches the sizes PocketBase accepts for ?thumb=:
// WxH, WxHt, WxHb, WxHf, 0xH and Wx0.
var thumbSizePattern = regexp.MustCompile(`^\d+x\d+[tbf]?$`)

func newValidator() (*validator.Validate, ut.Translator, error) {
	validate := validator.New()

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, nil, fmt.Errorf("failed to register default translations: %w", err)
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := validate.RegisterValidation("thumbsize", isThumbSize); err != nil {
		return nil, nil, fmt.Errorf("failed to register thumbsize validation: %w", err)
	}
	if err := validate.RegisterTranslation("thumbsize", trans, func(ut ut.Translator) error {
		return ut.Add("thumbsize", "{0} must be a thumbnail size such as 500x0 or 100x100t", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("thumbsize", strings.TrimPrefix(fe.Namespace(), "Config."))
		return t
	}); err != nil {
		return nil, nil, fmt.Errorf("failed to register thumbsize translation: %w", err)
	}

	return validate, trans, nil
}

func isThumbSize(fl validator.FieldLevel) bool {
	size := fl.Field().String()
	if !thumbSizePattern.MatchString(size) {
		return false
	}
	return size != "0x0"
}

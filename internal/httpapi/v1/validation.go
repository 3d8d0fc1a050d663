package v1

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"

	"github.com/tinoosan/bookkeeper/internal/errs"
)

// fieldCodes maps "<json field>_<tag>" to the API error code.
var fieldCodes = map[string]string{
	"value_required":             errs.CodeInvalidValue,
	"value_numeric":              errs.CodeInvalidValue,
	"history_required":           errs.CodeMissingHistory,
	"history_nonblank":           errs.CodeMissingHistory,
	"history_max":                "history_too_long",
	"date_datetime":              errs.CodeInvalidDate,
	"debit_account_id_required":  errs.CodeMissingAccount,
	"credit_account_id_required": errs.CodeMissingAccount,
	"debit_account_id_max":       errs.CodeUnknownAccount,
	"credit_account_id_max":      errs.CodeUnknownAccount,
	"transactions_required":      "empty_batch",
	"transactions_min":           "empty_batch",
	"transactions_max":           "too_many_items",
}

func newValidator() *validator.Validate {
	v := validator.New()
	// register function to get tag name from json tags.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("nonblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// validateStruct runs the struct tags of in and returns every violation as an
// *errs.FieldError, aggregated with multierror.
func (s *Server) validateStruct(in any) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}
	var valErrs validator.ValidationErrors
	if !errors.As(err, &valErrs) {
		return fmt.Errorf("%w: %v", errs.ErrInvalid, err)
	}
	var result *multierror.Error
	for _, ve := range valErrs {
		code, ok := fieldCodes[ve.Field()+"_"+ve.Tag()]
		if !ok {
			code = "validation_error"
		}
		msg := strings.TrimSpace(fmt.Sprintf("failed %s %s", ve.Tag(), ve.Param()))
		result = multierror.Append(result, errs.Field(ve.Field(), code, msg))
	}
	return result.ErrorOrNil()
}

package route

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"isoplan/domain/core"
)

// routeValidate is the validator instance for route datatypes.
// Initialized in init() with custom validators.
var routeValidate *validator.Validate

func init() {
	routeValidate = validator.New()

	_ = routeValidate.RegisterValidation("isotope", func(fl validator.FieldLevel) bool {
		return IsIsotopeLabel(fl.Field().String())
	})
	_ = routeValidate.RegisterValidation("reaction", func(fl validator.FieldLevel) bool {
		return ReactionKind(fl.Field().String()).Valid()
	})
}

// validateStruct runs tag validation and folds the result into ErrInvalidInput.
func validateStruct(v interface{}) error {
	err := routeValidate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
		}
		return core.NewInputError("validation", strings.Join(msgs, "; "))
	}
	return core.NewInputError("validation", err.Error())
}

package validator

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/SJJP-F-2025/requests-service/internal/models"
)

// psNumberPattern matches the PS identifiers coaches and admins carry.
var psNumberPattern = regexp.MustCompile(`^PS\d+$`)

// ValidationError represents one failed field rule.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

// Validator wraps go-playground/validator with the portal's domain rules.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New()

	v.RegisterValidation("ps_number", func(fl validator.FieldLevel) bool {
		return psNumberPattern.MatchString(fl.Field().String())
	})

	v.RegisterValidation("credential", func(fl validator.FieldLevel) bool {
		return models.Credential(fl.Field().String()).Valid()
	})

	v.RegisterValidation("request_status", func(fl validator.FieldLevel) bool {
		return models.RequestStatus(fl.Field().String()).Valid()
	})

	return &Validator{validate: v}
}

// ValidPSNumber reports whether ps matches the PS identifier format.
func ValidPSNumber(ps string) bool {
	return psNumberPattern.MatchString(ps)
}

// Validate checks a struct against its validate tags and returns typed field
// errors, or nil when everything passes.
func (v *Validator) Validate(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var errs ValidationErrors
	for _, fe := range err.(validator.ValidationErrors) {
		errs = append(errs, ValidationError{
			Field:   fe.Field(),
			Message: errorMessage(fe),
			Value:   fe.Value(),
			Rule:    fe.Tag(),
		})
	}
	return errs
}

func errorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", err.Param())
	case "ps_number":
		return "must match the PS number format (PS followed by digits)"
	case "credential":
		return "must be Admin or Coach"
	case "request_status":
		return "must be a valid request status"
	default:
		return fmt.Sprintf("validation failed for rule '%s'", err.Tag())
	}
}

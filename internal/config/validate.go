package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/helio/keyword-mapper/internal/types"
)

var validate = validator.New()

// ValidateRequest checks a search request against its struct tags and
// returns a caller-friendly error for the first violation.
func ValidateRequest(req *types.SearchRequest) error {
	if req == nil {
		return fmt.Errorf("request is nil")
	}

	if err := validate.Struct(req); err != nil {
		var errs validator.ValidationErrors
		if ok := asValidationErrors(err, &errs); ok && len(errs) > 0 {
			fe := errs[0]
			switch fe.Field() {
			case "TargetRole":
				return fmt.Errorf("target_role is required")
			case "BaseLocation":
				return fmt.Errorf("base_location is required")
			case "WorkMode":
				return fmt.Errorf("work_mode must be one of onsite, hybrid, remote")
			case "DesiredCount":
				return fmt.Errorf("desired_count must be between 1 and 500")
			}
		}
		return fmt.Errorf("invalid request: %w", err)
	}

	return nil
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	errs, ok := err.(validator.ValidationErrors)
	if ok {
		*target = errs
	}
	return ok
}

package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is the singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate validates the configuration using struct tags and custom rules.
//
// Struct-tag validation covers the declarative constraints; the custom
// rules below cover cross-field conditions tags cannot express.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	return validateCustomRules(cfg)
}

// validateCustomRules performs custom validation beyond struct tags.
func validateCustomRules(cfg *Config) error {
	// A static identity directory with no entries cannot resolve any
	// owner, which makes every attribute query fail.
	if cfg.Identity.Type == "static" && len(cfg.Identity.Static) == 0 {
		return fmt.Errorf("identity: static directory configured with no principals")
	}

	if cfg.Metrics.Enabled && cfg.Metrics.Listen == "" {
		return fmt.Errorf("metrics: enabled but no listen address configured")
	}

	return nil
}

// formatValidationError converts validator errors into user-friendly
// messages.
func formatValidationError(err error) error {
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		if len(validationErrs) > 0 {
			e := validationErrs[0]
			return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
				e.Namespace(), e.Tag(), e.Value())
		}
	}
	return err
}

package validation

import (
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/conneroisu/lmscards/internal/errors"
	"github.com/conneroisu/lmscards/internal/types"
)

// EntityPolicy describes which entity identifiers a card accepts beyond the
// always-enforced non-empty rule. The zero value is the loose policy.
type EntityPolicy struct {
	// Domain is the required identifier prefix without the trailing dot,
	// for example "sensor".
	Domain string
	// Keyword must appear somewhere in the identifier.
	Keyword string
}

// Strict reports whether the policy checks more than presence.
func (p EntityPolicy) Strict() bool {
	return p.Domain != "" || p.Keyword != ""
}

// DecodeConfig decodes a raw card configuration as supplied by the host.
// Keys the card does not know about (the host's own "type" key, for
// instance) are ignored. Field types are not coerced.
func DecodeConfig(raw map[string]interface{}) (types.Config, error) {
	var cfg types.Config

	if raw == nil {
		return cfg, errors.NewValidationError(errors.ErrCodeConfigInvalid, "configuration is required")
	}

	if v, ok := raw["entity"]; ok && v != nil {
		if _, isString := v.(string); !isString {
			return cfg, errors.NewValidationError(errors.ErrCodeEntityMalformed,
				fmt.Sprintf("entity must be a string, got %T", v))
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &cfg,
		TagName: "mapstructure",
	})
	if err != nil {
		return cfg, errors.NewInternalError(errors.ErrCodeConfigInvalid, "failed to build config decoder", err)
	}

	if err := decoder.Decode(raw); err != nil {
		return types.Config{}, errors.Wrap(err, errors.ErrorTypeValidation,
			errors.ErrCodeConfigInvalid, "invalid card configuration")
	}

	return cfg, nil
}

// ValidateEntity checks cfg.Entity against policy. Loose policies only
// require a non-blank entity; strict ones also reject whitespace.
func ValidateEntity(cfg types.Config, policy EntityPolicy) error {
	entity := cfg.Entity
	if strings.TrimSpace(entity) == "" {
		return errors.ErrEntityRequired()
	}

	if !policy.Strict() {
		return nil
	}

	if strings.ContainsAny(entity, " \t\r\n") {
		return errors.NewValidationError(errors.ErrCodeEntityMalformed,
			"entity must not contain whitespace").WithEntity(entity)
	}

	if policy.Domain != "" && !strings.HasPrefix(entity, policy.Domain+".") {
		return errors.NewValidationError(errors.ErrCodeEntityDomain,
			fmt.Sprintf("entity must be in the %s domain", policy.Domain)).
			WithEntity(entity).
			WithContext("domain", policy.Domain).
			WithContext("suggestions", []string{
				fmt.Sprintf("pick an entity that starts with %q", policy.Domain+"."),
			})
	}

	if policy.Keyword != "" && !strings.Contains(entity, policy.Keyword) {
		return errors.NewValidationError(errors.ErrCodeEntityKeyword,
			fmt.Sprintf("entity must reference %q", policy.Keyword)).
			WithEntity(entity).
			WithContext("keyword", policy.Keyword).
			WithContext("suggestions", []string{
				fmt.Sprintf("pick an entity whose id contains %q", policy.Keyword),
			})
	}

	return nil
}

// ValidateConfig decodes raw and checks the entity against policy.
func ValidateConfig(raw map[string]interface{}, policy EntityPolicy) (types.Config, error) {
	cfg, err := DecodeConfig(raw)
	if err != nil {
		return types.Config{}, err
	}

	if err := ValidateEntity(cfg, policy); err != nil {
		return types.Config{}, err
	}

	return cfg, nil
}

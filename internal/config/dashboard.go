package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/conneroisu/lmscards/internal/errors"
	"github.com/conneroisu/lmscards/internal/validation"
)

// CardEntry is one card placed on a dashboard file: its type and the raw
// binding configuration handed to the card.
type CardEntry struct {
	Type   string
	Config map[string]interface{}
}

// LoadDashboard reads a dashboard file listing card configurations:
//
//	cards:
//	  - type: custom:schoology-announcements-card
//	    entity: sensor.schoology_announcements
//	  - type: custom:schoology-overdue-card
//	    entity: sensor.schoology_overdue_assignments
//	    title: Late work
//
// The configurations are returned unvalidated.
func LoadDashboard(path string) ([]CardEntry, error) {
	if err := validation.ValidateStateFile(path); err != nil {
		return nil, errors.WrapConfig(err, errors.ErrCodeConfigInvalid, "invalid dashboard path")
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.WrapIO(err, errors.ErrCodeConfigInvalid, "failed to read dashboard "+path)
	}

	raw, ok := v.Get("cards").([]interface{})
	if !ok {
		return nil, errors.NewConfigError(errors.ErrCodeConfigInvalid, "dashboard has no cards list").
			WithContext("path", path)
	}

	entries := make([]CardEntry, 0, len(raw))
	for i, item := range raw {
		fields, ok := item.(map[string]interface{})
		if !ok {
			return nil, errors.NewConfigError(errors.ErrCodeConfigInvalid,
				fmt.Sprintf("card #%d: expected a mapping, got %T", i+1, item))
		}

		cardType, _ := fields["type"].(string)
		if cardType == "" {
			return nil, errors.NewConfigError(errors.ErrCodeConfigInvalid,
				fmt.Sprintf("card #%d: missing type", i+1)).
				WithContext("suggestions", []string{"add a type such as custom:schoology-announcements-card"})
		}

		cfg := make(map[string]interface{}, len(fields))
		for k, val := range fields {
			if k != "type" {
				cfg[k] = val
			}
		}

		entries = append(entries, CardEntry{Type: cardType, Config: cfg})
	}

	return entries, nil
}

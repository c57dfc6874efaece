package validation

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/conneroisu/lmscards/internal/types"
)

// FuzzValidateEntity checks that accepted identifiers always satisfy the policy
func FuzzValidateEntity(f *testing.F) {
	f.Add("sensor.schoology_announcements")
	f.Add("sensor.announcements ")
	f.Add("binary_sensor.announcements")
	f.Add("sensor.")
	f.Add("")
	f.Add("\x00sensor.announcements")

	policy := EntityPolicy{Domain: "sensor", Keyword: "announcements"}

	f.Fuzz(func(t *testing.T, entity string) {
		err := ValidateEntity(types.Config{Entity: entity}, policy)
		if err != nil {
			return
		}
		if !strings.HasPrefix(entity, "sensor.") {
			t.Errorf("accepted entity outside the sensor domain: %q", entity)
		}
		if !strings.Contains(entity, "announcements") {
			t.Errorf("accepted entity without keyword: %q", entity)
		}
		if strings.TrimSpace(entity) == "" {
			t.Errorf("accepted blank entity: %q", entity)
		}
	})
}

// FuzzValidatePath checks that accepted paths never escape upwards
func FuzzValidatePath(f *testing.F) {
	f.Add("states.yaml")
	f.Add("../states.yaml")
	f.Add("a/../../b.json")
	f.Add("/proc/self/environ")
	f.Add("states;rm.json")

	f.Fuzz(func(t *testing.T, path string) {
		if ValidatePath(path) != nil {
			return
		}
		if strings.Contains(filepath.Clean(path), "..") {
			t.Errorf("accepted traversal: %q", path)
		}
		for _, c := range []string{";", "&", "|", "$", "`", "<", ">"} {
			if strings.Contains(path, c) {
				t.Errorf("accepted dangerous character %q in %q", c, path)
			}
		}
	})
}

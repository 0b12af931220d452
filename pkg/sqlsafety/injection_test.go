package sqlsafety

import (
	"testing"

	"github.com/google/uuid"
)

func TestCheckParameterForInjection(t *testing.T) {
	t.Run("clean identifier passes", func(t *testing.T) {
		if res := CheckParameterForInjection(1, uuid.NewString()); res != nil {
			t.Errorf("uuid flagged as injection: %+v", res)
		}
	})

	t.Run("plain name passes", func(t *testing.T) {
		if res := CheckParameterForInjection(2, "auth0|64f1c2"); res != nil {
			t.Errorf("plain actor id flagged: %+v", res)
		}
	})

	t.Run("classic injection detected", func(t *testing.T) {
		res := CheckParameterForInjection(2, "'; DROP TABLE families--")
		if res == nil {
			t.Fatal("injection payload not detected")
		}
		if res.Position != 2 {
			t.Errorf("position = %d, want 2", res.Position)
		}
		if res.Fingerprint == "" {
			t.Error("expected a libinjection fingerprint")
		}
	})

	t.Run("non-string values skipped", func(t *testing.T) {
		if res := CheckParameterForInjection(1, 42); res != nil {
			t.Errorf("integer flagged: %+v", res)
		}
		if res := CheckParameterForInjection(1, uuid.New()); res != nil {
			t.Errorf("uuid.UUID value flagged: %+v", res)
		}
	})
}

func TestCheckParameters(t *testing.T) {
	if err := CheckParameters([]any{uuid.New(), "admin-123"}); err != nil {
		t.Errorf("clean parameters rejected: %v", err)
	}

	err := CheckParameters([]any{uuid.New(), "' OR 1=1--"})
	if err == nil {
		t.Fatal("injection in second parameter not rejected")
	}
	if err.Rule != RuleParameterInjection {
		t.Errorf("rule = %q, want %q", err.Rule, RuleParameterInjection)
	}
}

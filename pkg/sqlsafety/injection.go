package sqlsafety

import (
	"fmt"

	libinjection "github.com/corazawaf/libinjection-go"
)

// InjectionCheckResult describes an injection pattern detected in a
// bound parameter value.
type InjectionCheckResult struct {
	Position    int    // 1-based positional parameter index ($1, $2, ...)
	Fingerprint string // libinjection fingerprint of the detected pattern
}

// CheckParameterForInjection runs libinjection's SQLi heuristics over a
// bound parameter value. Parameter binding already makes injection inert
// at the driver level; this check exists to surface and reject smuggling
// attempts instead of silently querying with them.
//
// Only string values are inspected. Returns nil when the value is clean.
func CheckParameterForInjection(position int, value any) *InjectionCheckResult {
	strValue, ok := value.(string)
	if !ok {
		return nil
	}

	isSQLi, fingerprint := libinjection.IsSQLi(strValue)
	if !isSQLi {
		return nil
	}

	return &InjectionCheckResult{
		Position:    position,
		Fingerprint: string(fingerprint),
	}
}

// CheckParameters validates every positional parameter value, returning
// a ValidationError for the first one that trips the heuristics.
func CheckParameters(params []any) *ValidationError {
	for i, value := range params {
		if result := CheckParameterForInjection(i+1, value); result != nil {
			return &ValidationError{
				Rule:    RuleParameterInjection,
				Message: fmt.Sprintf("Parameter $%d rejected by injection check", result.Position),
			}
		}
	}
	return nil
}

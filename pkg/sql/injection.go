package sql

import (
	"fmt"

	libinjection "github.com/corazawaf/libinjection-go"
)

// InjectionCheckResult contains the result of an injection check on a parameter value.
type InjectionCheckResult struct {
	IsSQLi      bool   // True if SQL injection pattern detected
	Fingerprint string // libinjection fingerprint of the detected pattern
	ParamName   string // Name of the parameter that failed the check
	ParamValue  string // The value that was checked
}

func (r *InjectionCheckResult) Error() string {
	return fmt.Sprintf("parameter %q rejected: SQL injection pattern detected (fingerprint %s)", r.ParamName, r.Fingerprint)
}

// CheckParameterForInjection uses libinjection to detect SQL injection patterns
// in a free-text lookup value such as a sequence name.
//
// Returns nil if no injection is detected.
//
// Example:
//
//	CheckParameterForInjection("name", "chrUn_NW_020192295v1") // nil
//	CheckParameterForInjection("name", "1' OR '1'='1")         // IsSQLi == true
func CheckParameterForInjection(paramName, value string) *InjectionCheckResult {
	isSQLi, fingerprint := libinjection.IsSQLi(value)
	if !isSQLi {
		return nil
	}
	return &InjectionCheckResult{
		IsSQLi:      true,
		Fingerprint: string(fingerprint),
		ParamName:   paramName,
		ParamValue:  value,
	}
}

// CheckAllParameters screens every named value and returns the failures,
// in no particular order. An empty result means all values are clean.
func CheckAllParameters(params map[string]string) []*InjectionCheckResult {
	var results []*InjectionCheckResult
	for name, value := range params {
		if result := CheckParameterForInjection(name, value); result != nil {
			results = append(results, result)
		}
	}
	return results
}

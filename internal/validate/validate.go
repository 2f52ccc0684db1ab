// Package validate contains request-parameter and configuration validation
// helpers.
package validate

import "github.com/tkrause/textgen-gateway/internal/config"

// Result reports the outcome of a required-parameter check.
type Result struct {
	IsValid bool
	Missing []string
}

// Params returns the subset of required names that are absent or empty in
// params. A parameter counts as missing when the key is absent, nil, an empty
// string, a numeric zero, or false. Pure; callers decide how to react.
func Params(params map[string]any, required []string) Result {
	missing := []string{}
	for _, name := range required {
		if isEmpty(params[name]) {
			missing = append(missing, name)
		}
	}
	return Result{IsValid: len(missing) == 0, Missing: missing}
}

func isEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case bool:
		return !val
	case int:
		return val == 0
	case int64:
		return val == 0
	case float64:
		return val == 0
	default:
		return false
	}
}

// Credentials reports whether the configured auth mode has the credentials it
// needs. Mode none never requires any. The check is advisory: the gateway
// starts either way and surfaces failures per request.
func Credentials(cfg config.AuthConfig) bool {
	switch cfg.Mode {
	case config.AuthModeNone:
		return true
	case config.AuthModeStatic:
		return cfg.StaticKey != ""
	case config.AuthModeJWT:
		return cfg.Issuer.URL != "" && cfg.Issuer.AnonKey != "" && cfg.Issuer.ServiceKey != ""
	default:
		return false
	}
}

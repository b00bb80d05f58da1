package config

// GetDefaults returns the default configuration values
func GetDefaults() map[string]interface{} {
	return map[string]interface{}{
		"cli_path":         "",
		"model":            "gemini-1.5-flash",
		"auto_approve":     true,
		"yes_mode":         true,
		"timeout":          180,
		"max_retries":      3,
		"retry_base_delay": 1,
		"max_retry_wait":   30,
		"no_retry":         false,
		"estimator":        "words",
		"log_level":        "info",
		"log_format":       "console",
		"model_aliases": map[string]string{
			"fast":  "gemini-1.5-flash",
			"smart": "gemini-1.5-pro",
		},
		"verbose": false,
	}
}

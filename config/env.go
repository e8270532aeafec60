package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// EnvPrefix marks environment variables that carry settings.
const EnvPrefix = "PEERLEDGER_"

// envKey maps PEERLEDGER_SECTION_NAME to the conf key section.name.
// The first underscore after the prefix separates the section; a name
// without one maps to a top-level key.
func envKey(name string) (string, bool) {
	if !strings.HasPrefix(name, EnvPrefix) {
		return "", false
	}
	rest := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	if rest == "" {
		return "", false
	}
	if section, field, ok := strings.Cut(rest, "_"); ok {
		return section + "." + field, true
	}
	return rest, true
}

// envValues converts PEERLEDGER_* variables into conf key/value pairs.
func envValues(vars map[string]string) map[string]string {
	values := make(map[string]string, len(vars))
	for name, value := range vars {
		if key, ok := envKey(name); ok {
			values[key] = value
		}
	}
	return values
}

// LoadEnvFile reads PEERLEDGER_* settings from a dotenv file. A missing
// file yields no values.
func LoadEnvFile(path string) (map[string]string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return make(map[string]string), nil
	}
	vars, err := godotenv.Read(path)
	if err != nil {
		return nil, err
	}
	return envValues(vars), nil
}

// EnvOverrides returns PEERLEDGER_* settings from the process environment.
func EnvOverrides() map[string]string {
	vars := make(map[string]string)
	for _, kv := range os.Environ() {
		if name, value, ok := strings.Cut(kv, "="); ok {
			vars[name] = value
		}
	}
	return envValues(vars)
}

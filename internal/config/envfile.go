package config

import (
	"fmt"
	"os"
	"strings"
)

// ParseEnvFile reads KEY=value pairs from a dotenv-style file. Blank
// lines and # comments are skipped, an "export " prefix is tolerated,
// and single or double quotes around values are stripped.
func ParseEnvFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading env file %s: %w", path, err)
	}
	env := map[string]string{}
	for _, line := range strings.Split(string(data), "\n") {
		s := strings.TrimSpace(line)
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		s = strings.TrimPrefix(s, "export ")
		eqIdx := strings.IndexByte(s, '=')
		if eqIdx < 0 {
			continue
		}
		env[s[:eqIdx]] = stripQuotes(s[eqIdx+1:])
	}
	return env, nil
}

// LoadSecrets puts the env file's variables into the process environment
// without clobbering values already set.
func LoadSecrets(path string) error {
	if path == "" {
		return nil
	}
	env, err := ParseEnvFile(path)
	if err != nil {
		return err
	}
	for k, v := range env {
		if os.Getenv(k) == "" {
			os.Setenv(k, v)
		}
	}
	return nil
}

func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

package util

import (
	"bufio"
	"os"
	"strconv"
	"strings"
)

// LoadEnv reads .env followed by .env.<env> and exports every KEY=VALUE
// pair that is not already present in the process environment.
func LoadEnv(env string) error {
	files := []string{".env"}
	if env != "" {
		files = append(files, ".env."+env)
	}
	var firstErr error
	loaded := false
	for _, name := range files {
		if err := loadEnvFile(name); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		loaded = true
	}
	if loaded {
		return nil
	}
	return firstErr
}

func loadEnvFile(name string) error {
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		if _, exists := os.LookupEnv(key); !exists {
			os.Setenv(key, value)
		}
	}
	return sc.Err()
}

// GetEnv returns the environment value, or the optional default when unset.
func GetEnv(key string, def ...string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	if len(def) > 0 {
		return def[0]
	}
	return ""
}

func GetIntEnv(key string, def ...int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		if len(def) > 0 {
			return def[0]
		}
		return 0
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		if len(def) > 0 {
			return def[0]
		}
		return 0
	}
	return n
}

func GetBoolEnv(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}

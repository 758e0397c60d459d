package env

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Get reads an environment variable and parses it into the type of the
// default value. Unset variables yield the default without error.
func Get[T any](key string, defaultValue T) (T, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}

	var parsed any
	var err error

	switch any(defaultValue).(type) {
	case string:
		parsed = raw
	case int:
		var v int64
		v, err = strconv.ParseInt(raw, 10, 32)
		if err == nil {
			parsed = int(v)
		}
	case int64:
		parsed, err = strconv.ParseInt(raw, 10, 64)
	case float64:
		parsed, err = strconv.ParseFloat(raw, 64)
	case bool:
		parsed, err = strconv.ParseBool(raw)
	case time.Duration:
		parsed, err = time.ParseDuration(raw)
	default:
		return defaultValue, fmt.Errorf("unsupported type for environment variable %s", key)
	}

	if err != nil {
		return defaultValue, fmt.Errorf("failed to parse environment variable %s: %w", key, err)
	}

	return parsed.(T), nil
}

func MustGet[T any](key string, defaultValue T) T {
	value, err := Get(key, defaultValue)
	if err != nil {
		panic(fmt.Sprintf("failed to get environment variable %s: %v", key, err))
	}
	return value
}

// Require reads a string variable that has no sensible default, such as a
// signing secret. It fails instead of falling back.
func Require(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("required environment variable %s is not set", key)
	}
	return value, nil
}

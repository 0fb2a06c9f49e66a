package util

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

// LoadEnv loads the .env file for the given environment. A missing file is
// not an error; deployed environments set variables directly.
func LoadEnv(env string) error {
	candidates := []string{
		fmt.Sprintf(".env.%s", env),
		".env",
	}
	for _, name := range candidates {
		if _, err := os.Stat(name); err == nil {
			return godotenv.Load(name)
		}
	}
	return nil
}

func GetEnv(key string) string {
	return os.Getenv(key)
}

// GetEnvDefault returns the value of key, or def when unset.
func GetEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func GetIntEnv(key string) int64 {
	return cast.ToInt64(os.Getenv(key))
}

func GetBoolEnv(key string) bool {
	return cast.ToBool(os.Getenv(key))
}

func GetFloatEnv(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return cast.ToFloat64(v)
}

func GetDurationEnv(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const envPrefix = "PERFUMEKEEPER_"

// parseEnv overlays PERFUMEKEEPER_* environment variables. Malformed numeric
// values are ignored and the previous value is kept.
func parseEnv(config *Config) {
	setString(&config.EndpointAddrHTTP, getenv("HTTP_ADDR"))
	setString(&config.EndpointAddrGRPC, getenv("GRPC_ADDR"))
	setString(&config.DatabaseDSN, getenv("DATABASE_DSN"))
	setString(&config.SecretKey, getenv("SECRET_KEY"))
	setString(&config.SigningAlgorithm, getenv("ALGORITHM"))
	setString(&config.LogLevel, getenv("LOG_LEVEL"))

	if v := getenv("ACCESS_TOKEN_EXPIRE_MINUTES"); v != "" {
		if minutes, err := strconv.Atoi(v); err == nil {
			config.AccessTokenValidityDuration = time.Duration(minutes) * time.Minute
		}
	}
	if v := getenv("ALLOWED_ORIGINS"); v != "" {
		config.AllowedOrigins = splitList(v)
	}
}

func getenv(key string) string {
	return strings.TrimSpace(os.Getenv(envPrefix + key))
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

package config

import (
	"log/slog"
	"os"
)

func Load() App {
	cfg := App{
		Port:           getenv("APP_PORT", "8080"),
		DatabasePath:   getenv("DATABASE_PATH", "libms.db"),
		JWTSecret:      must("JWT_SECRET"),
		Env:            getenv("APP_ENV", "dev"),
		PreorderCutoff: getenv("PREORDER_CUTOFF", "15:30"),
	}
	return cfg
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		slog.Error("required env missing", "key", k)
		panic("missing env " + k)
	}
	return v
}

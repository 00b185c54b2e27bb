// cmd/preflight/main.go
package main

import (
	"fmt"
	"os"

	"github.com/hamed0406/healthchecker/internal/config"
)

func main() {
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		os.Exit(1)
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	path := config.DefaultFile
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	cfg, err := config.Load(path)
	if err != nil {
		fail(err.Error())
	}
	ok("listen address " + cfg.Addr())

	if cfg.DefaultUsername == "admin" && cfg.DefaultPassword == "admin" {
		warn("DEFAULT_USERNAME/DEFAULT_PASSWORD are admin/admin; change the password after first login.")
	}
	if len(cfg.AdminAPIKeys) == 0 {
		warn("ADMIN_API_KEYS is empty; the API accepts browser sessions only.")
	} else {
		ok(fmt.Sprintf("%d admin API key(s)", len(cfg.AdminAPIKeys)))
	}

	if cfg.DatabaseURL == "" {
		warn("DATABASE_URL empty; services and users live in memory and vanish on restart.")
	} else {
		ok("DATABASE_URL present")
	}
	if cfg.RedisURL == "" {
		warn("REDIS_URL empty; sessions live in memory.")
	} else {
		ok("REDIS_URL present")
	}

	if len(cfg.AllowedOrigins) == 0 {
		warn("ALLOWED_ORIGINS empty; CORS allows every origin.")
	} else {
		ok(fmt.Sprintf("ALLOWED_ORIGINS=%v", cfg.AllowedOrigins))
	}
	if !cfg.SecureCookies {
		warn("SECURE_COOKIES=false; set it when serving over HTTPS.")
	}
	if cfg.TrustProxy {
		ok("TRUST_PROXY=true; client IPs come from X-Forwarded-For / X-Real-IP.")
	}
	if !cfg.PrometheusEnabled {
		warn("PROMETHEUS_ENABLED=false; /metrics is not served.")
	}

	ok("preflight passed")
}

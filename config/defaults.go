package config

import "github.com/spf13/viper"

// SetDefaults applies default configuration values to a Viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("api.url", "http://localhost:3000")
	v.SetDefault("api.timeout_seconds", 30)

	// push.url defaults to empty; derived from api.url at use time.
	v.SetDefault("push.url", "")
	v.SetDefault("push.reconnect_grace_seconds", 5)

	v.SetDefault("auth.token", "")
	v.SetDefault("log.json", false)

	// Empty disables the metrics endpoint.
	v.SetDefault("metrics.addr", "")
}

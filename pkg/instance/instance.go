package instance

import "github.com/angelmondragon/storefront-commerce/pkg/env"

// GetID identifies this API process in logs and in cross-instance signals.
func GetID() string {
	if id := env.Get("DYNO", ""); id != "" {
		return id
	}
	return env.Get("HOSTNAME", "local")
}

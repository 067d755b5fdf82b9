package instance

import "github.com/tatame/tatame-backend/pkg/env"

// GetID names the running process in logs and Sentry events: the dyno or
// Cloud Run revision when present, then the container hostname.
func GetID() string {
	if id := env.First("DYNO", "K_REVISION", "HOSTNAME"); id != "" {
		return id
	}
	return "local"
}

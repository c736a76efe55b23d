package instance

import "os"

// GetID returns the process identifier attached to log lines. Hosted dynos
// expose DYNO; containers expose HOSTNAME.
func GetID() string {
	for _, key := range []string{"EZOO_INSTANCE_ID", "DYNO", "HOSTNAME"} {
		if id := os.Getenv(key); id != "" {
			return id
		}
	}
	return "local"
}

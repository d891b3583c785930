package secrets

import (
	"os"
	"strings"
)

// machineIDPaths are tried in order for a stable host identifier.
var machineIDPaths = []string{
	"/etc/machine-id",
	"/var/lib/dbus/machine-id",
}

// InstallationID returns a stable per-installation identifier used for key
// derivation. It prefers the host machine-id and falls back to the
// hostname. The identifier is read fresh on every call and never written
// anywhere by this package.
func InstallationID() (string, error) {
	for _, path := range machineIDPaths {
		raw, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if id := strings.TrimSpace(string(raw)); id != "" {
			return id, nil
		}
	}
	host, err := os.Hostname()
	if err != nil {
		return "", err
	}
	return "host:" + host, nil
}

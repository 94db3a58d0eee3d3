// Package env identifies the host the vehicle runs on.
package env

import (
	"os"
	"strings"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

// AppID salts the machine ID so the published identity differs from the
// raw /etc/machine-id.
const AppID = "vscp"

// MachineID returns a stable identifier for the vehicle. It falls back to
// the hostname when no machine ID is available.
func MachineID() (string, error) {
	id, err := machineid.ProtectedID(AppID)
	if err == nil {
		return id[:16], nil
	}
	glog.Warningf("machine id unavailable: %v", err)
	host, herr := os.Hostname()
	if herr != nil {
		return "", err
	}
	return strings.ToLower(host), nil
}

// VehicleID returns override if set, otherwise MachineID.
func VehicleID(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	return MachineID()
}

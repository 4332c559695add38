// Package netinfo enumerates local network interfaces and the default gateway.
package netinfo

import (
	"fmt"
	"net"

	"github.com/jackpal/gateway"

	"pingtrend/internal/models"
)

// Interface is a summary of a local network interface
type Interface struct {
	Name      string
	Up        bool
	Loopback  bool
	Addresses []string
}

var discoverGateway = gateway.DiscoverGateway

// DefaultGateway returns the IP of the default route gateway.
func DefaultGateway() (net.IP, error) {
	ip, err := discoverGateway()
	if err != nil {
		return nil, fmt.Errorf("gateway discovery failed: %w", err)
	}
	return ip, nil
}

// Interfaces lists the local interfaces and their addresses.
func Interfaces() ([]Interface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("interface listing failed: %w", err)
	}

	out := make([]Interface, 0, len(ifaces))
	for _, iface := range ifaces {
		info := Interface{
			Name:     iface.Name,
			Up:       iface.Flags&net.FlagUp != 0,
			Loopback: iface.Flags&net.FlagLoopback != 0,
		}
		if addrs, err := iface.Addrs(); err == nil {
			for _, a := range addrs {
				info.Addresses = append(info.Addresses, a.String())
			}
		}
		out = append(out, info)
	}
	return out, nil
}

// DefaultTargets returns the reference targets offered when none are configured:
// the default gateway, when one can be found, and google.com.
func DefaultTargets() []models.Target {
	var defaults []models.Target
	if ip, err := DefaultGateway(); err == nil {
		defaults = append(defaults, models.Target{Name: "Gateway", Address: ip.String()})
	}
	return append(defaults, models.Target{Name: "Google", Address: "google.com"})
}

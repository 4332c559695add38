package ping

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

var ErrNoAddress = errors.New("no usable address")

var lookupIPAddr = net.DefaultResolver.LookupIPAddr

// resolve turns a hostname or IP literal into an address of an allowed family.
// IPv4 is preferred when both are allowed.
func resolve(ctx context.Context, host string, allow4, allow6 bool) (*net.IPAddr, error) {
	literal, zone, _ := strings.Cut(host, "%")
	if ip := net.ParseIP(literal); ip != nil {
		if (ip.To4() != nil && !allow4) || (ip.To4() == nil && !allow6) {
			return nil, fmt.Errorf("%w for %s", ErrNoAddress, host)
		}
		return &net.IPAddr{IP: ip, Zone: zone}, nil
	}

	addrs, err := lookup(ctx, host)
	if err != nil {
		return nil, err
	}

	if allow4 {
		for i := range addrs {
			if addrs[i].IP.To4() != nil {
				return &addrs[i], nil
			}
		}
	}
	if allow6 {
		for i := range addrs {
			if addrs[i].IP.To4() == nil {
				return &addrs[i], nil
			}
		}
	}

	return nil, fmt.Errorf("%w for %s", ErrNoAddress, host)
}

type lookupResult struct {
	addrs []net.IPAddr
	err   error
}

// lookup returns when ctx is done even if the resolver keeps hanging.
func lookup(ctx context.Context, host string) ([]net.IPAddr, error) {
	done := make(chan lookupResult, 1)
	go func() {
		addrs, err := lookupIPAddr(ctx, host)
		done <- lookupResult{addrs, err}
	}()

	select {
	case res := <-done:
		return res.addrs, res.err
	case <-ctx.Done():
		return nil, fmt.Errorf("lookup %s: %w", host, ctx.Err())
	}
}

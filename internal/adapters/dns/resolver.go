// Package dns adapts the system resolver to the Resolver port.
package dns

import (
	"context"
	"fmt"
	"net"
	"time"

	"geotrace/internal/domain"
)

// Resolver resolves hostnames to IPv4 literals through the OS resolver.
// Every call is bounded by Timeout; failures are not retried.
type Resolver struct {
	resolver *net.Resolver
	timeout  time.Duration
}

func New(timeout time.Duration) *Resolver {
	return &Resolver{resolver: net.DefaultResolver, timeout: timeout}
}

func (r *Resolver) Resolve(ctx context.Context, dom string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	addrs, err := r.resolver.LookupIP(ctx, "ip4", dom)
	if err != nil {
		return "", &domain.ResolutionError{Domain: dom, Err: err}
	}
	if len(addrs) == 0 {
		return "", &domain.ResolutionError{Domain: dom, Err: fmt.Errorf("no A records")}
	}
	return addrs[0].String(), nil
}

package domain

import "fmt"

// Failure taxonomy. Each category the caller can see has its own type so the
// HTTP adapter can map them to distinct responses without string matching.

// ValidationError means the raw input could not be normalized into a domain.
type ValidationError struct {
	Input  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid domain %q: %s", e.Input, e.Reason)
}

// ResolutionError means the system resolver could not produce an IPv4 address
// for the domain. Resolution failures are terminal for a request; the caller
// may re-submit.
type ResolutionError struct {
	Domain string
	Err    error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("could not resolve domain %s: %v", e.Domain, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// GeoErrorKind distinguishes the three enrichment failure classes.
type GeoErrorKind int

const (
	// GeoTimeout: the enrichment call exceeded its deadline.
	GeoTimeout GeoErrorKind = iota
	// GeoTransport: network failure, non-2xx status, or undecodable body.
	GeoTransport
	// GeoServiceFailure: the service answered but reported it could not
	// geolocate the IP (status "fail", e.g. reserved ranges).
	GeoServiceFailure
)

// GeoError is an enrichment failure of one of the three kinds.
type GeoError struct {
	Kind    GeoErrorKind
	IP      string
	Message string
	Err     error
}

func (e *GeoError) Error() string {
	switch e.Kind {
	case GeoTimeout:
		return fmt.Sprintf("geolocation timed out for %s", e.IP)
	case GeoServiceFailure:
		return fmt.Sprintf("geolocation failed for %s: %s", e.IP, e.Message)
	default:
		return fmt.Sprintf("geolocation transport error for %s: %v", e.IP, e.Err)
	}
}

func (e *GeoError) Unwrap() error { return e.Err }

// Package geoip adapts the ip-api.com enrichment service to the GeoLocator
// port.
package geoip

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"geotrace/internal/domain"
)

const fields = "status,message,country,regionName,city,lat,lon,isp,org,as,query"

// Client issues one bounded lookup per call against an ip-api.com compatible
// endpoint. No retries: a timeout or transport failure surfaces immediately.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// response mirrors the upstream JSON. Lat/Lon are pointers so a field the
// service omitted stays distinguishable from a genuine 0.0 coordinate.
type response struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Country string   `json:"country"`
	Region  string   `json:"regionName"`
	City    string   `json:"city"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
	ISP     string   `json:"isp"`
	Org     string   `json:"org"`
	AS      string   `json:"as"`
}

func (c *Client) Lookup(ctx context.Context, ip string) (domain.GeoAttributes, error) {
	url := fmt.Sprintf("%s/json/%s?fields=%s", c.baseURL, ip, fields)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.GeoAttributes{}, &domain.GeoError{Kind: domain.GeoTransport, IP: ip, Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		kind := domain.GeoTransport
		if isTimeout(err) {
			kind = domain.GeoTimeout
		}
		return domain.GeoAttributes{}, &domain.GeoError{Kind: kind, IP: ip, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.GeoAttributes{}, &domain.GeoError{
			Kind: domain.GeoTransport,
			IP:   ip,
			Err:  fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		kind := domain.GeoTransport
		if isTimeout(err) {
			kind = domain.GeoTimeout
		}
		return domain.GeoAttributes{}, &domain.GeoError{Kind: kind, IP: ip, Err: err}
	}

	if body.Status == "fail" {
		msg := body.Message
		if msg == "" {
			msg = "unknown error"
		}
		return domain.GeoAttributes{}, &domain.GeoError{Kind: domain.GeoServiceFailure, IP: ip, Message: msg}
	}

	return domain.GeoAttributes{
		Country: orUnknown(body.Country),
		Region:  orUnknown(body.Region),
		City:    orUnknown(body.City),
		Lat:     body.Lat,
		Lon:     body.Lon,
		ISP:     orUnknown(body.ISP),
		Org:     orUnknown(body.Org),
		ASN:     orUnknown(body.AS),
	}, nil
}

func orUnknown(s string) string {
	if s == "" {
		return domain.Unknown
	}
	return s
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var nerr interface{ Timeout() bool }
	return errors.As(err, &nerr) && nerr.Timeout()
}

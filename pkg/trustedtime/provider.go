package trustedtime

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/beevik/ntp"
)

// Sample is one measurement against an external time source. The derived
// offset corrects the local clock by half the round trip.
type Sample struct {
	SourceTime time.Time
	Latency    time.Duration
	Local      time.Time
}

// Offset returns sourceTime + latency/2 - localClockAtMeasurement.
func (s Sample) Offset() time.Duration {
	return s.SourceTime.Add(s.Latency / 2).Sub(s.Local)
}

// Provider is a single trusted time source.
type Provider interface {
	Name() string
	Sample(ctx context.Context) (Sample, error)
}

// NTPProvider queries one NTP server.
type NTPProvider struct {
	host    string
	timeout time.Duration
}

func NewNTPProvider(host string, timeout time.Duration) *NTPProvider {
	return &NTPProvider{host: host, timeout: timeout}
}

func (p *NTPProvider) Name() string { return p.host }

func (p *NTPProvider) Sample(ctx context.Context) (Sample, error) {
	local := time.Now()
	resp, err := ntp.QueryWithOptions(p.host, ntp.QueryOptions{Timeout: p.timeout})
	if err != nil {
		return Sample{}, fmt.Errorf("ntp query %s: %w", p.host, err)
	}
	if err := resp.Validate(); err != nil {
		return Sample{}, fmt.Errorf("ntp response from %s invalid: %w", p.host, err)
	}
	return Sample{
		SourceTime: resp.Time,
		Latency:    resp.RTT,
		Local:      local,
	}, nil
}

// HTTPProvider is the last-ranked fallback: a worldtimeapi-style JSON
// endpoint reachable even where UDP 123 is filtered.
type HTTPProvider struct {
	url    string
	client *http.Client
}

func NewHTTPProvider(url string, timeout time.Duration) *HTTPProvider {
	return &HTTPProvider{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (p *HTTPProvider) Name() string { return p.url }

type timeAPIResponse struct {
	UTCDateTime string `json:"utc_datetime"`
	DateTime    string `json:"datetime"`
}

func (p *HTTPProvider) Sample(ctx context.Context) (Sample, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return Sample{}, err
	}

	before := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		return Sample{}, fmt.Errorf("time api %s: %w", p.url, err)
	}
	defer resp.Body.Close()
	latency := time.Since(before)

	if resp.StatusCode != http.StatusOK {
		return Sample{}, fmt.Errorf("time api %s: unexpected status %d", p.url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8192))
	if err != nil {
		return Sample{}, fmt.Errorf("time api %s: %w", p.url, err)
	}

	var parsed timeAPIResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Sample{}, fmt.Errorf("time api %s: %w", p.url, err)
	}
	raw := parsed.UTCDateTime
	if raw == "" {
		raw = parsed.DateTime
	}
	sourceTime, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return Sample{}, fmt.Errorf("time api %s: bad timestamp %q: %w", p.url, raw, err)
	}

	return Sample{
		SourceTime: sourceTime,
		Latency:    latency,
		Local:      before,
	}, nil
}

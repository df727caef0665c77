// Package netlocation resolves the caller's public network identity and
// checks it against a center's allow-list. Physical presence at a center is
// approximated by the center's WiFi sharing one public address.
package netlocation

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"attendance-core/models"
)

// IdentityUnknown is returned when the resolver cannot determine the public
// address. It never matches a configured allow-list.
const IdentityUnknown = "0.0.0.0"

const resolveTimeout = 5 * time.Second

type Resolver struct {
	url    string
	client *http.Client
}

func NewResolver(url string) *Resolver {
	return &Resolver{
		url:    url,
		client: &http.Client{Timeout: resolveTimeout},
	}
}

type ipifyResponse struct {
	IP string `json:"ip"`
}

// Resolve looks the caller's public address up at the configured endpoint.
// Lookup failure is not an error: the sentinel IdentityUnknown is returned,
// which fails closed only for centers that restrict location.
func (r *Resolver) Resolve(ctx context.Context) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return IdentityUnknown
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return IdentityUnknown
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return IdentityUnknown
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return IdentityUnknown
	}

	var parsed ipifyResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.IP != "" {
		return parsed.IP
	}

	// Plain-text resolvers just return the address.
	if ip := strings.TrimSpace(string(body)); ip != "" {
		return ip
	}
	return IdentityUnknown
}

// IsAuthorized reports whether identity may register attendance at center.
// Centers without an allow-list accept every identity.
func IsAuthorized(center *models.Center, identity string) bool {
	if !center.Restricted() {
		return true
	}
	if identity == IdentityUnknown {
		return false
	}
	return identity == center.AuthorizedNetworkID
}

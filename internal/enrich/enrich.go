// Package enrich resolves a scan target to an IP address and looks up its
// location. Every lookup is best effort: failures degrade to placeholder
// values and never abort a scan.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"time"
)

// PlaceholderIP is reported when DNS resolution fails.
const PlaceholderIP = "192.168.1.100"

// Geo is the subset of the ipwho.is response used to steer generation.
type Geo struct {
	City       string `json:"city,omitempty"`
	Region     string `json:"region,omitempty"`
	Country    string `json:"country,omitempty"`
	Connection struct {
		ISP string `json:"isp,omitempty"`
		Org string `json:"org,omitempty"`
	} `json:"connection"`
}

// Info is what enrichment contributes to the generation prompt.
type Info struct {
	IP  string `json:"ip"`
	Geo Geo    `json:"geo"`
}

type Client struct {
	http   *http.Client
	dnsURL string
	geoURL string
}

func NewClient(dnsURL, geoURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		http:   &http.Client{Timeout: timeout},
		dnsURL: dnsURL,
		geoURL: strings.TrimRight(geoURL, "/"),
	}
}

// Lookup resolves target and, for public addresses, its geo data.
func (c *Client) Lookup(ctx context.Context, target string) Info {
	ip, err := c.resolve(ctx, target)
	if err != nil {
		slog.Warn("dns lookup failed", "target", target, "error", err)
		ip = PlaceholderIP
	}

	info := Info{IP: ip}
	if !Public(ip) {
		return info
	}

	geo, err := c.geo(ctx, ip)
	if err != nil {
		slog.Warn("geo lookup failed", "ip", ip, "error", err)
		return info
	}
	info.Geo = geo
	return info
}

type dohResponse struct {
	Status int `json:"Status"`
	Answer []struct {
		Name string `json:"name"`
		Type int    `json:"type"`
		Data string `json:"data"`
	} `json:"Answer"`
}

func (c *Client) resolve(ctx context.Context, target string) (string, error) {
	host := hostOf(target)
	if addr, err := netip.ParseAddr(host); err == nil {
		return addr.String(), nil
	}

	q := url.Values{}
	q.Set("name", host)
	q.Set("type", "A")

	var resp dohResponse
	if err := c.getJSON(ctx, c.dnsURL+"?"+q.Encode(), &resp); err != nil {
		return "", err
	}
	if len(resp.Answer) == 0 || resp.Answer[0].Data == "" {
		return "", fmt.Errorf("no A record for %s", host)
	}
	return resp.Answer[0].Data, nil
}

func (c *Client) geo(ctx context.Context, ip string) (Geo, error) {
	var geo Geo
	if err := c.getJSON(ctx, c.geoURL+"/"+url.PathEscape(ip), &geo); err != nil {
		return Geo{}, err
	}
	return geo, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", req.URL.Host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: status %d", req.URL.Host, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Host, err)
	}
	return nil
}

// Public reports whether ip is a routable address worth a geo lookup.
// Private, loopback, link-local, unspecified and unparseable values are not.
func Public(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	return !(addr.IsPrivate() || addr.IsLoopback() || addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() || addr.IsUnspecified() || addr.IsMulticast())
}

// hostOf strips a scheme, path and port so "https://example.com:8443/x"
// resolves as "example.com".
func hostOf(target string) string {
	target = strings.TrimSpace(target)
	if strings.Contains(target, "://") {
		if u, err := url.Parse(target); err == nil && u.Hostname() != "" {
			return u.Hostname()
		}
	}
	if i := strings.IndexByte(target, '/'); i >= 0 {
		target = target[:i]
	}
	if h, _, ok := strings.Cut(target, ":"); ok && strings.Count(target, ":") == 1 {
		target = h
	}
	return target
}

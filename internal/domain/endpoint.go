package domain

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// Endpoint is a broker address: protocol, host and port.
type Endpoint struct {
	Protocol string
	Host     string
	Port     int
}

var schemes = map[string]string{
	"tcp": "nats",
	"tls": "tls",
	"ws":  "ws",
	"wss": "wss",
}

// ParseEndpoint accepts "proto/host:port", "scheme://host:port" or a bare
// "host:port" (tcp).
func ParseEndpoint(raw string) (Endpoint, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Endpoint{}, fmt.Errorf("endpoint %q: empty", raw)
	}

	var proto, addr string
	switch {
	case strings.Contains(s, "://"):
		u, err := url.Parse(s)
		if err != nil {
			return Endpoint{}, fmt.Errorf("endpoint %q: %w", raw, err)
		}
		if (u.Path != "" && u.Path != "/") || u.RawQuery != "" || u.Fragment != "" {
			return Endpoint{}, fmt.Errorf("endpoint %q: unexpected path or query", raw)
		}
		proto, addr = u.Scheme, u.Host
	case strings.Contains(s, "/"):
		proto, addr, _ = strings.Cut(s, "/")
	default:
		proto, addr = "tcp", s
	}

	proto = strings.ToLower(proto)
	if proto == "nats" {
		proto = "tcp"
	}
	if _, ok := schemes[proto]; !ok {
		return Endpoint{}, fmt.Errorf("endpoint %q: unsupported protocol %q", raw, proto)
	}

	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return Endpoint{}, fmt.Errorf("endpoint %q: %w", raw, err)
	}
	if host == "" {
		return Endpoint{}, fmt.Errorf("endpoint %q: missing host", raw)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return Endpoint{}, fmt.Errorf("endpoint %q: invalid port %q", raw, portStr)
	}
	return Endpoint{Protocol: proto, Host: host, Port: port}, nil
}

// ParseEndpoints keeps every entry that parses and reports the rest.
func ParseEndpoints(raw []string) ([]Endpoint, []error) {
	var (
		out  []Endpoint
		errs []error
	)
	for _, r := range raw {
		ep, err := ParseEndpoint(r)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, ep)
	}
	return out, errs
}

func (e Endpoint) hostPort() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

// URL renders the address in the form the NATS client dials.
func (e Endpoint) URL() string {
	return schemes[e.Protocol] + "://" + e.hostPort()
}

func (e Endpoint) String() string {
	return e.Protocol + "/" + e.hostPort()
}

// SameEndpoints reports whether a and b name the same set of addresses.
func SameEndpoints(a, b []Endpoint) bool {
	seen := make(map[Endpoint]bool, len(a))
	for _, e := range a {
		seen[e] = true
	}
	other := make(map[Endpoint]bool, len(b))
	for _, e := range b {
		if !seen[e] {
			return false
		}
		other[e] = true
	}
	return len(seen) == len(other)
}

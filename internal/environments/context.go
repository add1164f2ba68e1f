package environments

import (
	"net"
	"strings"
)

// Tier names a deployment environment inferred from the page host.
type Tier string

const (
	TierLocal Tier = "local"
	TierDev   Tier = "dev"
	TierQA    Tier = "qa"
	TierUAT   Tier = "uat"
	TierProd  Tier = "prod"
)

// Context is derived, read-only state recomputed from the current host on
// every request: it is a pure function of the URL and is never persisted.
type Context struct {
	Tier       Tier
	Host       string
	Port       string
	Scheme     string
	RootDomain string
}

// Origin reconstructs the current page origin.
func (c Context) Origin() string {
	host := c.Host
	if c.Port != "" && !isDefaultPort(c.Scheme, c.Port) {
		host = net.JoinHostPort(c.Host, c.Port)
	}
	return c.Scheme + "://" + host
}

// Detect classifies a raw host (optionally host:port) into an environment
// context. "localhost", *.localhost, loopback and bare IPv4 addresses are
// local; a leading dev/qa/uat label selects that tier; anything else is prod.
// The root domain is the last two dot-separated labels, except for localhost
// and IPv4 hosts where it is the host itself.
func Detect(rawHost string) Context {
	host, port := splitHostPort(strings.ToLower(strings.TrimSpace(rawHost)))

	ctx := Context{Host: host, Port: port, Scheme: "https"}

	if isLocalHost(host) {
		ctx.Tier = TierLocal
		ctx.Scheme = "http"
		ctx.RootDomain = host
		return ctx
	}

	ctx.RootDomain = rootDomain(host)

	switch firstLabel(host) {
	case "dev":
		ctx.Tier = TierDev
	case "qa":
		ctx.Tier = TierQA
	case "uat":
		ctx.Tier = TierUAT
	default:
		ctx.Tier = TierProd
	}

	return ctx
}

// SubdomainPrefix returns the environment-specific label prepended to the
// companion host: empty for prod, "<tier>." otherwise.
func (c Context) SubdomainPrefix() string {
	switch c.Tier {
	case TierProd, TierLocal:
		return ""
	default:
		return string(c.Tier) + "."
	}
}

func splitHostPort(raw string) (string, string) {
	if host, port, err := net.SplitHostPort(raw); err == nil {
		return host, port
	}
	return raw, ""
}

func isLocalHost(host string) bool {
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return true
	}
	if ip := net.ParseIP(host); ip != nil {
		return true
	}
	return false
}

func rootDomain(host string) string {
	labels := strings.Split(host, ".")
	if len(labels) < 2 {
		return host
	}
	return strings.Join(labels[len(labels)-2:], ".")
}

func firstLabel(host string) string {
	if idx := strings.Index(host, "."); idx != -1 {
		return host[:idx]
	}
	return host
}

func isDefaultPort(scheme, port string) bool {
	switch {
	case scheme == "http" && port == "80":
		return true
	case scheme == "https" && port == "443":
		return true
	}
	return false
}

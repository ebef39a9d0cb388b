package dnsx

import (
	"fmt"
	"net"
	"strings"
	"time"

	mdns "github.com/miekg/dns"
)

// Resolver answers the handful of query types the enrichment pass needs. It
// talks to the system resolver directly and falls back to the net package
// when that fails.
type Resolver struct {
	client *mdns.Client
	server string
}

func NewResolver() *Resolver {
	server := "8.8.8.8:53"
	if conf, err := mdns.ClientConfigFromFile("/etc/resolv.conf"); err == nil && len(conf.Servers) > 0 {
		server = net.JoinHostPort(conf.Servers[0], conf.Port)
	}
	return &Resolver{
		client: &mdns.Client{Timeout: 5 * time.Second},
		server: server,
	}
}

// LookupA returns the IPv4 addresses of a name.
func (r *Resolver) LookupA(name string) ([]string, error) {
	msg := new(mdns.Msg)
	msg.SetQuestion(mdns.Fqdn(name), mdns.TypeA)

	resp, _, err := r.client.Exchange(msg, r.server)
	if err != nil {
		return lookupAFallback(name)
	}
	var ips []string
	for _, ans := range resp.Answer {
		if a, ok := ans.(*mdns.A); ok {
			ips = append(ips, a.A.String())
		}
	}
	if len(ips) == 0 {
		return nil, fmt.Errorf("no A records for %s", name)
	}
	return ips, nil
}

func lookupAFallback(name string) ([]string, error) {
	addrs, err := net.LookupHost(name)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", name, err)
	}
	var ips []string
	for _, a := range addrs {
		if ip := net.ParseIP(a); ip != nil && ip.To4() != nil {
			ips = append(ips, a)
		}
	}
	if len(ips) == 0 {
		return nil, fmt.Errorf("no IPv4 addresses for %s", name)
	}
	return ips, nil
}

// LookupMX returns mail exchangers formatted as "preference host".
func (r *Resolver) LookupMX(name string) ([]string, error) {
	msg := new(mdns.Msg)
	msg.SetQuestion(mdns.Fqdn(name), mdns.TypeMX)

	resp, _, err := r.client.Exchange(msg, r.server)
	if err != nil {
		return lookupMXFallback(name)
	}
	var records []string
	for _, ans := range resp.Answer {
		if mx, ok := ans.(*mdns.MX); ok {
			records = append(records, fmt.Sprintf("%d %s", mx.Preference, strings.TrimSuffix(mx.Mx, ".")))
		}
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no MX records for %s", name)
	}
	return records, nil
}

func lookupMXFallback(name string) ([]string, error) {
	mxs, err := net.LookupMX(name)
	if err != nil {
		return nil, fmt.Errorf("resolve MX %s: %w", name, err)
	}
	var records []string
	for _, mx := range mxs {
		records = append(records, fmt.Sprintf("%d %s", mx.Pref, strings.TrimSuffix(mx.Host, ".")))
	}
	return records, nil
}

// Reverse returns the PTR name of an address, without the trailing dot.
func (r *Resolver) Reverse(ip string) (string, error) {
	names, err := net.LookupAddr(ip)
	if err != nil || len(names) == 0 {
		return "", fmt.Errorf("reverse lookup %s failed", ip)
	}
	return strings.TrimSuffix(names[0], "."), nil
}

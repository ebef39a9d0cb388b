package ipinfo

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Info is everything learned about one address, plus the internal domains
// that were seen resolving to it.
type Info struct {
	IP                string   `json:"ip"`
	CIDR              string   `json:"cidr,omitempty"`
	ASN               string   `json:"asn,omitempty"`
	Organization      string   `json:"organization,omitempty"`
	Country           string   `json:"country,omitempty"`
	AbuseEmail        string   `json:"abuse_email,omitempty"`
	ReverseDNS        string   `json:"reverse_dns,omitempty"`
	AssociatedDomains []string `json:"associated_domains,omitempty"`
}

// ReverseLookup resolves an address back to a name. Satisfied by
// dnsx.Resolver.
type ReverseLookup interface {
	Reverse(ip string) (string, error)
}

var defaultEndpoints = []string{
	"https://rdap.arin.net/registry/ip/%s",
	"https://rdap.db.ripe.net/ip/%s",
	"https://rdap.apnic.net/ip/%s",
	"https://rdap.lacnic.net/rdap/ip/%s",
	"https://rdap.afrinic.net/rdap/ip/%s",
}

// Cache queries the RIR RDAP services for address ownership and memoizes the
// answers. A repeated lookup only records the new associated domain.
type Cache struct {
	mu        sync.Mutex
	entries   map[string]*Info
	client    *http.Client
	log       zerolog.Logger
	reverse   ReverseLookup
	endpoints []string
}

func NewCache(log zerolog.Logger, reverse ReverseLookup) *Cache {
	return &Cache{
		entries:   map[string]*Info{},
		client:    &http.Client{Timeout: 10 * time.Second},
		log:       log,
		reverse:   reverse,
		endpoints: defaultEndpoints,
	}
}

// SetEndpoints overrides the RDAP endpoint templates, for tests.
func (c *Cache) SetEndpoints(endpoints []string) {
	c.endpoints = endpoints
}

// Lookup returns the info for ip, querying RDAP only on first sight. The
// associated domain, when non-empty, is accumulated on every call.
func (c *Cache) Lookup(ip, associatedDomain string) *Info {
	c.mu.Lock()
	defer c.mu.Unlock()

	info, ok := c.entries[ip]
	if !ok {
		info = c.query(ip)
		c.entries[ip] = info
	}
	if associatedDomain != "" && !contains(info.AssociatedDomains, associatedDomain) {
		info.AssociatedDomains = append(info.AssociatedDomains, associatedDomain)
		sort.Strings(info.AssociatedDomains)
	}
	return info
}

// Snapshot returns copies of all cached entries sorted by address.
func (c *Cache) Snapshot() []Info {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Info, 0, len(c.entries))
	for _, info := range c.entries {
		cp := *info
		cp.AssociatedDomains = append([]string(nil), info.AssociatedDomains...)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IP < out[j].IP })
	return out
}

func (c *Cache) query(ip string) *Info {
	info := &Info{IP: ip}
	for _, endpoint := range c.endpoints {
		if c.fetchRDAP(fmt.Sprintf(endpoint, ip), info) {
			break
		}
	}
	if c.reverse != nil {
		if name, err := c.reverse.Reverse(ip); err == nil {
			info.ReverseDNS = name
		}
	}
	return info
}

type rdapResponse struct {
	Name         string `json:"name"`
	Handle       string `json:"handle"`
	Country      string `json:"country"`
	StartAddress string `json:"startAddress"`
	EndAddress   string `json:"endAddress"`
	CIDR0CIDRs   []struct {
		V4Prefix string `json:"v4prefix"`
		Length   int    `json:"length"`
	} `json:"cidr0_cidrs"`
	Entities []rdapEntity `json:"entities"`
}

type rdapEntity struct {
	Roles      []string     `json:"roles"`
	VCardArray []any        `json:"vcardArray"`
	Entities   []rdapEntity `json:"entities"`
}

func (c *Cache) fetchRDAP(url string, info *Info) bool {
	resp, err := c.client.Get(url)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false
	}

	var decoded rdapResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		c.log.Debug().Err(err).Str("url", url).Msg("rdap decode failed")
		return false
	}

	info.Organization = decoded.Name
	info.ASN = decoded.Handle
	info.Country = decoded.Country
	if len(decoded.CIDR0CIDRs) > 0 && decoded.CIDR0CIDRs[0].V4Prefix != "" {
		info.CIDR = fmt.Sprintf("%s/%d", decoded.CIDR0CIDRs[0].V4Prefix, decoded.CIDR0CIDRs[0].Length)
	} else if decoded.StartAddress != "" {
		info.CIDR = decoded.StartAddress
	}
	info.AbuseEmail = abuseEmail(decoded.Entities)
	return true
}

// abuseEmail walks the entity tree for an abuse contact's vCard email.
func abuseEmail(entities []rdapEntity) string {
	for _, ent := range entities {
		isAbuse := false
		for _, role := range ent.Roles {
			if role == "abuse" {
				isAbuse = true
			}
		}
		if isAbuse {
			if email := vcardEmail(ent.VCardArray); email != "" {
				return email
			}
		}
		if email := abuseEmail(ent.Entities); email != "" {
			return email
		}
	}
	return ""
}

// vcardEmail digs the email value out of a jCard structure:
// ["vcard", [["email", {}, "text", "abuse@example.net"], ...]].
func vcardEmail(vcard []any) string {
	if len(vcard) < 2 {
		return ""
	}
	fields, ok := vcard[1].([]any)
	if !ok {
		return ""
	}
	for _, f := range fields {
		parts, ok := f.([]any)
		if !ok || len(parts) < 4 {
			continue
		}
		name, _ := parts[0].(string)
		if !strings.EqualFold(name, "email") {
			continue
		}
		if value, ok := parts[3].(string); ok {
			return value
		}
	}
	return ""
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

package whois

import (
	"regexp"
	"strings"

	whois "github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"
	"github.com/rs/zerolog"

	dnsx "github.com/shii9/MetaNio/internal/Dnsx"
	ipinfo "github.com/shii9/MetaNio/internal/Ipinfo"
)

// Contact is one WHOIS contact block.
type Contact struct {
	Name         string `json:"name,omitempty"`
	Organization string `json:"organization,omitempty"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Fax          string `json:"fax,omitempty"`
	Street       string `json:"street,omitempty"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
	PostalCode   string `json:"postal_code,omitempty"`
	Country      string `json:"country,omitempty"`
}

func (c *Contact) empty() bool {
	return c == nil || *c == Contact{}
}

// DomainInfo is the registration and resolution profile of the target domain.
type DomainInfo struct {
	Domain         string   `json:"domain"`
	Registrar      string   `json:"registrar,omitempty"`
	Registrant     *Contact `json:"registrant,omitempty"`
	Admin          *Contact `json:"admin,omitempty"`
	Tech           *Contact `json:"tech,omitempty"`
	CreationDate   string   `json:"creation_date,omitempty"`
	UpdateDate     string   `json:"update_date,omitempty"`
	ExpirationDate string   `json:"expiration_date,omitempty"`
	NameServers    []string `json:"name_servers,omitempty"`
	Statuses       []string `json:"statuses,omitempty"`
	IPAddresses    []string `json:"ip_addresses,omitempty"`
	MXRecords      []string `json:"mx_records,omitempty"`
}

// Analyzer enriches a domain with WHOIS, DNS and address ownership data.
// Every step is best-effort; a failed source leaves its fields empty.
type Analyzer struct {
	log      zerolog.Logger
	resolver *dnsx.Resolver
	cache    *ipinfo.Cache

	// lookupFn is swapped out in tests.
	lookupFn func(domain string) (string, error)
}

func NewAnalyzer(log zerolog.Logger, resolver *dnsx.Resolver, cache *ipinfo.Cache) *Analyzer {
	return &Analyzer{
		log:      log,
		resolver: resolver,
		cache:    cache,
		lookupFn: func(domain string) (string, error) { return whois.Whois(domain) },
	}
}

// Analyze builds the full domain profile. WHOIS parsing goes through the
// structured parser first and falls back to pattern scraping for fields the
// parser left empty.
func (a *Analyzer) Analyze(domain string) *DomainInfo {
	info := &DomainInfo{Domain: domain}

	raw, err := a.lookupFn(domain)
	if err != nil {
		a.log.Warn().Err(err).Str("domain", domain).Msg("whois lookup failed")
	} else {
		a.fill(info, raw)
	}

	a.resolve(info)
	return info
}

func (a *Analyzer) fill(info *DomainInfo, raw string) {
	text := strings.ReplaceAll(raw, "\r\n", "\n")

	parsed, err := whoisparser.Parse(raw)
	if err == nil {
		if parsed.Registrar != nil {
			info.Registrar = parsed.Registrar.Name
		}
		if parsed.Domain != nil {
			info.CreationDate = parsed.Domain.CreatedDate
			info.UpdateDate = parsed.Domain.UpdatedDate
			info.ExpirationDate = parsed.Domain.ExpirationDate
			info.NameServers = uniqueStrings(parsed.Domain.NameServers)
			info.Statuses = uniqueStrings(parsed.Domain.Status)
		}
		info.Registrant = fromParsedContact(parsed.Registrant)
		info.Admin = fromParsedContact(parsed.Administrative)
		info.Tech = fromParsedContact(parsed.Technical)
	} else {
		a.log.Debug().Err(err).Str("domain", info.Domain).Msg("structured whois parse failed")
	}

	// Pattern fallbacks only fill what the parser could not.
	if info.Registrar == "" {
		info.Registrar = firstAny(text,
			`Registrar:\s*(.+)`,
			`Registrar Name:\s*(.+)`,
			`Sponsoring Registrar:\s*(.+)`,
		)
	}
	if info.CreationDate == "" {
		info.CreationDate = firstAny(text,
			`Creation Date:\s*(.+)`,
			`Created On:\s*(.+)`,
			`Registered On:\s*(.+)`,
		)
	}
	if info.UpdateDate == "" {
		info.UpdateDate = firstAny(text,
			`Updated Date:\s*(.+)`,
			`Last Updated On:\s*(.+)`,
		)
	}
	if info.ExpirationDate == "" {
		info.ExpirationDate = firstAny(text,
			`Registry Expiry Date:\s*(.+)`,
			`Registrar Registration Expiration Date:\s*(.+)`,
			`Expiration Date:\s*(.+)`,
		)
	}
	if len(info.NameServers) == 0 {
		info.NameServers = uniqueStrings(findAll(`Name Server:\s*(.+)`, text))
	}
	if len(info.Statuses) == 0 {
		info.Statuses = uniqueStrings(findAll(`Domain Status:\s*(.+)`, text))
	}
	info.Registrant = mergeContact(info.Registrant, contactFromText(text, "Registrant"))
	info.Admin = mergeContact(info.Admin, contactFromText(text, "Admin"))
	info.Tech = mergeContact(info.Tech, contactFromText(text, "Tech"))
}

// mergeContact fills the fields the parser left empty from the scraped
// contact, keeping parsed values where both sources have one.
func mergeContact(parsed, scraped *Contact) *Contact {
	if parsed == nil {
		return scraped
	}
	if scraped == nil {
		return parsed
	}
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&parsed.Name, scraped.Name)
	fill(&parsed.Organization, scraped.Organization)
	fill(&parsed.Email, scraped.Email)
	fill(&parsed.Phone, scraped.Phone)
	fill(&parsed.Fax, scraped.Fax)
	fill(&parsed.Street, scraped.Street)
	fill(&parsed.City, scraped.City)
	fill(&parsed.State, scraped.State)
	fill(&parsed.PostalCode, scraped.PostalCode)
	fill(&parsed.Country, scraped.Country)
	return parsed
}

// resolve adds the DNS layer: A records for the bare and www names, MX
// records, and ownership info for each new address.
func (a *Analyzer) resolve(info *DomainInfo) {
	if a.resolver == nil {
		return
	}

	ips, err := a.resolver.LookupA(info.Domain)
	if err != nil {
		a.log.Debug().Err(err).Str("domain", info.Domain).Msg("A lookup failed")
	}
	if wwwIPs, err := a.resolver.LookupA("www." + info.Domain); err == nil {
		ips = append(ips, wwwIPs...)
	}
	info.IPAddresses = uniqueStrings(ips)

	if a.cache != nil {
		for _, ip := range info.IPAddresses {
			a.cache.Lookup(ip, info.Domain)
		}
	}

	if mx, err := a.resolver.LookupMX(info.Domain); err == nil {
		info.MXRecords = mx
	}
}

func fromParsedContact(c *whoisparser.Contact) *Contact {
	if c == nil {
		return nil
	}
	return &Contact{
		Name:         c.Name,
		Organization: c.Organization,
		Email:        c.Email,
		Phone:        c.Phone,
		Fax:          c.Fax,
		Street:       c.Street,
		City:         c.City,
		State:        c.Province,
		PostalCode:   c.PostalCode,
		Country:      c.Country,
	}
}

// contactFromText scrapes one contact block by its WHOIS field prefix.
func contactFromText(text, prefix string) *Contact {
	c := &Contact{
		Name:         firstAny(text, prefix+` Name:\s*(.+)`),
		Organization: firstAny(text, prefix+` Organization:\s*(.+)`, prefix+` Org:\s*(.+)`),
		Email:        firstAny(text, prefix+` Email:\s*(.+)`, prefix+` E-mail:\s*(.+)`),
		Phone:        firstAny(text, prefix+` Phone:\s*(.+)`, prefix+` Telephone:\s*(.+)`),
		Fax:          firstAny(text, prefix+` Fax:\s*(.+)`),
		Street:       firstAny(text, prefix+` Street:\s*(.+)`, prefix+` Address:\s*(.+)`),
		City:         firstAny(text, prefix+` City:\s*(.+)`),
		State:        firstAny(text, prefix+` State/Province:\s*(.+)`, prefix+` State:\s*(.+)`),
		PostalCode:   firstAny(text, prefix+` Postal Code:\s*(.+)`),
		Country:      firstAny(text, prefix+` Country:\s*(.+)`),
	}
	if c.empty() {
		return nil
	}
	return c
}

func findFirst(pattern, text string) string {
	re := regexp.MustCompile("(?im)" + pattern)
	if m := re.FindStringSubmatch(text); len(m) >= 2 {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// firstAny checks multiple regex patterns and returns the first match.
func firstAny(text string, patterns ...string) string {
	for _, p := range patterns {
		if v := findFirst(p, text); v != "" {
			return v
		}
	}
	return ""
}

func findAll(pattern, text string) []string {
	re := regexp.MustCompile("(?im)" + pattern)
	matches := re.FindAllStringSubmatch(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if len(m) >= 2 {
			v := strings.TrimSpace(m[1])
			if v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func uniqueStrings(in []string) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

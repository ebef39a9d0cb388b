package entities

import (
	"net"
	"regexp"
	"strings"
)

var (
	emailRe  = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	urlRe    = regexp.MustCompile(`https?://(?:[-\w.]|(?:%[\da-fA-F]{2}))+`)
	domainRe = regexp.MustCompile(`(?:https?://)?(?:www\.)?([a-zA-Z0-9.-]+\.[a-zA-Z]{2,})(?:/[^\s]*)?`)
	pathRe   = regexp.MustCompile(`[A-Za-z]:\\(?:[^\\/:*?"<>|` + "\r\n" + `]+\\)*[^\\/:*?"<>|` + "\r\n" + `]*`)
	ipRe     = regexp.MustCompile(`\b(?:[0-9]{1,3}\.){3}[0-9]{1,3}\b`)
	hostRe   = regexp.MustCompile(`\b([a-zA-Z0-9-]{2,}(?:\.[a-zA-Z0-9-]+)*)\b`)
	tokenRe  = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)
	digitsRe = regexp.MustCompile(`^[0-9]+$`)
)

// DefaultPublicDomains are well-known public domains never treated as
// internal-domain candidates.
var DefaultPublicDomains = []string{"google.com", "microsoft.com", "yahoo.com"}

// DefaultCommonWords are frequent tokens excluded from hostname matching.
var DefaultCommonWords = []string{"http", "https", "www", "com", "net", "org"}

// Found holds the artifacts extracted from a single text fragment, for
// per-document attribution. The same values are merged into the global Store.
type Found struct {
	Emails []string
	URLs   []string
	Paths  []string
	Hosts  []string
	IPs    []string
}

// Extractor runs the pattern passes over free text. All passes are
// independent and intentionally over-inclusive.
type Extractor struct {
	store         *Store
	publicDomains []string
	commonWords   map[string]struct{}
}

func NewExtractor(store *Store) *Extractor {
	e := &Extractor{store: store, publicDomains: DefaultPublicDomains, commonWords: map[string]struct{}{}}
	for _, w := range DefaultCommonWords {
		e.commonWords[w] = struct{}{}
	}
	return e
}

// Store exposes the global entity sets the extractor feeds.
func (e *Extractor) Store() *Store { return e.store }

// SetDenylists overrides the public-domain and common-word denylists.
func (e *Extractor) SetDenylists(publicDomains, commonWords []string) {
	e.publicDomains = publicDomains
	e.commonWords = map[string]struct{}{}
	for _, w := range commonWords {
		e.commonWords[strings.ToLower(w)] = struct{}{}
	}
}

// Scan extracts artifacts from text, merges them into the global store and
// returns them for per-document bookkeeping.
func (e *Extractor) Scan(text string) Found {
	var f Found
	if text == "" {
		return f
	}

	for _, email := range emailRe.FindAllString(text, -1) {
		e.store.AddEmail(email)
		f.Emails = append(f.Emails, email)
		if i := strings.LastIndex(email, "@"); i >= 0 {
			e.store.AddDomain(email[i+1:])
		}
	}

	for _, u := range urlRe.FindAllString(text, -1) {
		f.URLs = append(f.URLs, u)
	}

	for _, m := range domainRe.FindAllStringSubmatch(text, -1) {
		domain := m[1]
		if e.isPublicDomain(domain) {
			continue
		}
		e.store.AddDomain(domain)
	}

	for _, p := range pathRe.FindAllString(text, -1) {
		e.store.AddPath(p)
		f.Paths = append(f.Paths, p)
		if user := usernameFromPath(p); user != "" {
			e.store.AddUser(user)
		}
	}

	for _, ip := range ipRe.FindAllString(text, -1) {
		if !keepIP(ip) {
			continue
		}
		e.store.AddIP(ip)
		f.IPs = append(f.IPs, ip)
	}

	for _, m := range hostRe.FindAllStringSubmatch(text, -1) {
		host := m[1]
		if len(host) <= 2 || !tokenRe.MatchString(host) || digitsRe.MatchString(host) {
			continue
		}
		if _, common := e.commonWords[strings.ToLower(host)]; common {
			continue
		}
		e.store.AddHost(host)
		f.Hosts = append(f.Hosts, host)
	}

	return f
}

func (e *Extractor) isPublicDomain(domain string) bool {
	for _, pub := range e.publicDomains {
		if strings.Contains(domain, pub) {
			return true
		}
	}
	return false
}

// usernameFromPath pulls the account name out of a Windows profile path.
func usernameFromPath(p string) string {
	const marker = `Users\`
	i := strings.Index(p, marker)
	if i < 0 {
		return ""
	}
	rest := p[i+len(marker):]
	user := rest
	if j := strings.Index(rest, `\`); j >= 0 {
		user = rest[:j]
	}
	switch user {
	case "", "Public", "All Users", "Default":
		return ""
	}
	return user
}

// keepIP validates the dotted quad and drops loopback, broadcast and
// "this network" addresses.
func keepIP(s string) bool {
	ip := net.ParseIP(s)
	if ip == nil || ip.To4() == nil {
		return false
	}
	for _, prefix := range []string{"127.", "255.", "0."} {
		if strings.HasPrefix(s, prefix) {
			return false
		}
	}
	return true
}

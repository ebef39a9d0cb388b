package entities

import (
	"sort"
	"strings"
	"sync"
)

// Store accumulates every artifact observed during a run. Entries are added
// by many workers at once and are never removed.
type Store struct {
	mu       sync.RWMutex
	users    map[string]struct{}
	emails   map[string]struct{}
	software map[string]struct{}
	hosts    map[string]struct{}
	domains  map[string]struct{}
	ips      map[string]struct{}
	paths    map[string]struct{}
}

func NewStore() *Store {
	return &Store{
		users:    map[string]struct{}{},
		emails:   map[string]struct{}{},
		software: map[string]struct{}{},
		hosts:    map[string]struct{}{},
		domains:  map[string]struct{}{},
		ips:      map[string]struct{}{},
		paths:    map[string]struct{}{},
	}
}

func (s *Store) add(set map[string]struct{}, v string) {
	v = strings.TrimSpace(v)
	if v == "" {
		return
	}
	s.mu.Lock()
	set[v] = struct{}{}
	s.mu.Unlock()
}

func (s *Store) AddUser(v string)     { s.add(s.users, v) }
func (s *Store) AddEmail(v string)    { s.add(s.emails, v) }
func (s *Store) AddSoftware(v string) { s.add(s.software, v) }
func (s *Store) AddHost(v string)     { s.add(s.hosts, v) }
func (s *Store) AddDomain(v string)   { s.add(s.domains, v) }
func (s *Store) AddIP(v string)       { s.add(s.ips, v) }
func (s *Store) AddPath(v string)     { s.add(s.paths, v) }

func (s *Store) sorted(set map[string]struct{}) []string {
	s.mu.RLock()
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	s.mu.RUnlock()
	sort.Strings(out)
	return out
}

func (s *Store) Users() []string    { return s.sorted(s.users) }
func (s *Store) Emails() []string   { return s.sorted(s.emails) }
func (s *Store) Software() []string { return s.sorted(s.software) }
func (s *Store) Hosts() []string    { return s.sorted(s.hosts) }
func (s *Store) Domains() []string  { return s.sorted(s.domains) }
func (s *Store) IPs() []string      { return s.sorted(s.ips) }
func (s *Store) Paths() []string    { return s.sorted(s.paths) }

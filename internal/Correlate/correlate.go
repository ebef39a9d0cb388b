package correlate

import (
	"sort"
	"strings"

	entities "github.com/shii9/MetaNio/internal/Entities"
	ipinfo "github.com/shii9/MetaNio/internal/Ipinfo"
)

// Node is one vertex of the relationship graph, keyed by kind and value.
type Node struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

// Edge relates two nodes. Relation is one of owns, belongs_to, resolves_to.
type Edge struct {
	From     Node   `json:"from"`
	To       Node   `json:"to"`
	Relation string `json:"relation"`
}

// Graph is the correlated view over everything the run collected.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

const (
	KindUser   = "user"
	KindEmail  = "email"
	KindDomain = "domain"
	KindIP     = "ip"

	RelOwns       = "owns"
	RelBelongsTo  = "belongs_to"
	RelResolvesTo = "resolves_to"
)

// DefaultRoleMailboxes are mailbox local parts that name a function rather
// than a person and are never linked to users.
var DefaultRoleMailboxes = []string{
	"no-reply", "noreply", "admin", "administrator", "support",
	"info", "webmaster", "postmaster", "sales", "contact", "help",
}

// Builder assembles the graph from the entity sets and the address cache.
type Builder struct {
	Threshold     float64
	RoleMailboxes []string
}

func NewBuilder() *Builder {
	return &Builder{Threshold: 0.7, RoleMailboxes: DefaultRoleMailboxes}
}

// Build links users to their likely email addresses, emails to their
// domains, and domains to the addresses they were seen resolving to.
func (b *Builder) Build(store *entities.Store, addresses []ipinfo.Info) *Graph {
	g := &Graph{}
	seen := map[Node]struct{}{}
	addNode := func(n Node) {
		if _, ok := seen[n]; ok {
			return
		}
		seen[n] = struct{}{}
		g.Nodes = append(g.Nodes, n)
	}

	users := store.Users()
	emails := store.Emails()
	domains := store.Domains()

	for _, u := range users {
		addNode(Node{Kind: KindUser, Value: u})
	}
	for _, e := range emails {
		addNode(Node{Kind: KindEmail, Value: e})
	}
	for _, d := range domains {
		addNode(Node{Kind: KindDomain, Value: d})
	}

	for _, u := range users {
		for _, e := range emails {
			local := e
			if i := strings.Index(e, "@"); i >= 0 {
				local = e[:i]
			}
			if b.isRoleMailbox(local) {
				continue
			}
			if b.linkable(u, local) {
				g.Edges = append(g.Edges, Edge{
					From:     Node{Kind: KindUser, Value: u},
					To:       Node{Kind: KindEmail, Value: e},
					Relation: RelOwns,
				})
			}
		}
	}

	for _, e := range emails {
		i := strings.LastIndex(e, "@")
		if i < 0 {
			continue
		}
		domain := e[i+1:]
		if !containsString(domains, domain) {
			continue
		}
		g.Edges = append(g.Edges, Edge{
			From:     Node{Kind: KindEmail, Value: e},
			To:       Node{Kind: KindDomain, Value: domain},
			Relation: RelBelongsTo,
		})
	}

	for _, addr := range addresses {
		if len(addr.AssociatedDomains) == 0 {
			continue
		}
		addNode(Node{Kind: KindIP, Value: addr.IP})
		for _, d := range addr.AssociatedDomains {
			addNode(Node{Kind: KindDomain, Value: d})
			g.Edges = append(g.Edges, Edge{
				From:     Node{Kind: KindDomain, Value: d},
				To:       Node{Kind: KindIP, Value: addr.IP},
				Relation: RelResolvesTo,
			})
		}
	}

	sort.Slice(g.Edges, func(i, j int) bool {
		a, b := g.Edges[i], g.Edges[j]
		if a.From != b.From {
			if a.From.Kind != b.From.Kind {
				return a.From.Kind < b.From.Kind
			}
			return a.From.Value < b.From.Value
		}
		if a.To.Kind != b.To.Kind {
			return a.To.Kind < b.To.Kind
		}
		return a.To.Value < b.To.Value
	})
	return g
}

func (b *Builder) isRoleMailbox(local string) bool {
	local = strings.ToLower(local)
	for _, role := range b.RoleMailboxes {
		if local == role {
			return true
		}
	}
	return false
}

// linkable decides whether a user name plausibly owns a mailbox local part.
func (b *Builder) linkable(user, local string) bool {
	u := normalizeName(user)
	l := normalizeName(local)
	if u == "" || l == "" {
		return false
	}
	if u == l || strings.Contains(u, l) || strings.Contains(l, u) {
		return true
	}
	return similarity(u, l) >= b.Threshold
}

// normalizeName lowercases and strips separators so "J. Smith" and
// "j.smith" compare equal.
func normalizeName(s string) string {
	s = strings.ToLower(s)
	var out strings.Builder
	for _, r := range s {
		switch r {
		case ' ', '.', '_', '-':
			continue
		}
		out.WriteRune(r)
	}
	return out.String()
}

// similarity is 1 minus the normalized Levenshtein distance.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 0
	}
	return 1 - float64(levenshtein(a, b))/float64(longest)
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = minInt(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func minInt(values ...int) int {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

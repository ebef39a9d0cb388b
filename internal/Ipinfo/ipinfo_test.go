package ipinfo

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rdapBody = `{
	"name": "ACME-NET",
	"handle": "NET-203-0-113-0-1",
	"country": "US",
	"startAddress": "203.0.113.0",
	"cidr0_cidrs": [{"v4prefix": "203.0.113.0", "length": 24}],
	"entities": [{
		"roles": ["abuse"],
		"vcardArray": ["vcard", [["email", {}, "text", "abuse@acme-corp.com"]]]
	}]
}`

func TestLookupQueriesOncePerAddress(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(rdapBody))
	}))
	defer srv.Close()

	c := NewCache(zerolog.Nop(), nil)
	c.SetEndpoints([]string{srv.URL + "/ip/%s"})

	first := c.Lookup("203.0.113.5", "acme-corp.com")
	second := c.Lookup("203.0.113.5", "intranet.acme-corp.com")

	assert.Equal(t, int32(1), hits.Load())
	assert.Same(t, first, second)
	assert.Equal(t, []string{"acme-corp.com", "intranet.acme-corp.com"}, second.AssociatedDomains)
}

func TestLookupParsesRDAP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(rdapBody))
	}))
	defer srv.Close()

	c := NewCache(zerolog.Nop(), nil)
	c.SetEndpoints([]string{srv.URL + "/ip/%s"})

	info := c.Lookup("203.0.113.5", "")
	assert.Equal(t, "ACME-NET", info.Organization)
	assert.Equal(t, "NET-203-0-113-0-1", info.ASN)
	assert.Equal(t, "US", info.Country)
	assert.Equal(t, "203.0.113.0/24", info.CIDR)
	assert.Equal(t, "abuse@acme-corp.com", info.AbuseEmail)
}

func TestLookupFallsThroughEndpoints(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer failing.Close()
	working := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(rdapBody))
	}))
	defer working.Close()

	c := NewCache(zerolog.Nop(), nil)
	c.SetEndpoints([]string{failing.URL + "/ip/%s", working.URL + "/ip/%s"})

	info := c.Lookup("203.0.113.5", "")
	assert.Equal(t, "ACME-NET", info.Organization)
}

func TestSnapshotSortsByAddress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewCache(zerolog.Nop(), nil)
	c.SetEndpoints([]string{srv.URL + "/ip/%s"})
	c.Lookup("203.0.113.9", "")
	c.Lookup("203.0.113.1", "")

	snap := c.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "203.0.113.1", snap[0].IP)
}

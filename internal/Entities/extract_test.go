package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScanEmailAddsDomainCandidate(t *testing.T) {
	store := NewStore()
	ex := NewExtractor(store)

	found := ex.Scan("contact jsmith@acme-corp.com for details")

	assert.Equal(t, []string{"jsmith@acme-corp.com"}, found.Emails)
	assert.Contains(t, store.Emails(), "jsmith@acme-corp.com")
	assert.Contains(t, store.Domains(), "acme-corp.com")
}

func TestScanIPFiltering(t *testing.T) {
	store := NewStore()
	ex := NewExtractor(store)

	ex.Scan("hosts 127.0.0.1 203.0.113.5 255.255.255.255 0.1.2.3 999.1.1.1")

	ips := store.IPs()
	assert.Equal(t, []string{"203.0.113.5"}, ips)
}

func TestScanWindowsPathYieldsUsername(t *testing.T) {
	store := NewStore()
	ex := NewExtractor(store)

	ex.Scan(`saved to C:\Users\kpach\Documents\report.docx`)
	ex.Scan(`template at C:\Users\Public\shared.dotx`)

	assert.Contains(t, store.Paths(), `C:\Users\kpach\Documents\report.docx`)
	assert.Contains(t, store.Users(), "kpach")
	assert.NotContains(t, store.Users(), "Public")
}

func TestScanPublicDomainDenylist(t *testing.T) {
	store := NewStore()
	ex := NewExtractor(store)

	ex.Scan("see https://docs.google.com/x and https://intranet.acme.local/page")

	assert.NotContains(t, store.Domains(), "docs.google.com")
	assert.Contains(t, store.Domains(), "intranet.acme.local")
}

func TestScanHostnameFiltering(t *testing.T) {
	store := NewStore()
	ex := NewExtractor(store)

	ex.Scan("fileserver01 www 12345 db-prod")

	hosts := store.Hosts()
	assert.Contains(t, hosts, "fileserver01")
	assert.Contains(t, hosts, "db-prod")
	assert.NotContains(t, hosts, "www")
	assert.NotContains(t, hosts, "12345")
}

func TestScanURLs(t *testing.T) {
	store := NewStore()
	ex := NewExtractor(store)

	found := ex.Scan("download from https://files.acme.io/q1.pdf today")
	assert.Equal(t, []string{"https://files.acme.io/q1.pdf"}, found.URLs)
}

func TestStoreDedupes(t *testing.T) {
	store := NewStore()
	store.AddUser("alice")
	store.AddUser("alice")
	store.AddUser(" ")
	assert.Equal(t, []string{"alice"}, store.Users())
}

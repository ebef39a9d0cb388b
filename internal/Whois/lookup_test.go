package whois

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleWhois = `Domain Name: ACME-CORP.COM
Registry Domain ID: 123456_DOMAIN_COM-VRSN
Registrar: Example Registrar, Inc.
Creation Date: 2005-03-14T09:26:53Z
Updated Date: 2024-02-01T00:00:00Z
Registry Expiry Date: 2027-03-14T09:26:53Z
Domain Status: clientTransferProhibited
Domain Status: clientDeleteProhibited
Name Server: NS1.ACME-CORP.COM
Name Server: NS2.ACME-CORP.COM
Registrant Name: John Smith
Registrant Organization: Acme Corporation
Registrant Email: jsmith@acme-corp.com
Registrant Fax: +1.5551234567
Registrant Country: US
Admin Email: hostmaster@acme-corp.com
Tech Email: noc@acme-corp.com
`

func testAnalyzer(raw string, err error) *Analyzer {
	a := NewAnalyzer(zerolog.Nop(), nil, nil)
	a.lookupFn = func(string) (string, error) { return raw, err }
	return a
}

func TestAnalyzeFillsFromWhois(t *testing.T) {
	info := testAnalyzer(sampleWhois, nil).Analyze("acme-corp.com")

	assert.Equal(t, "Example Registrar, Inc.", info.Registrar)
	assert.Equal(t, "2005-03-14T09:26:53Z", info.CreationDate)
	assert.Contains(t, info.Statuses, "clientTransferProhibited")
	assert.Len(t, info.NameServers, 2)

	require.NotNil(t, info.Registrant)
	assert.Equal(t, "John Smith", info.Registrant.Name)
	assert.Equal(t, "Acme Corporation", info.Registrant.Organization)
	assert.Equal(t, "jsmith@acme-corp.com", info.Registrant.Email)
	assert.Equal(t, "+1.5551234567", info.Registrant.Fax)

	require.NotNil(t, info.Admin)
	assert.Equal(t, "hostmaster@acme-corp.com", info.Admin.Email)
}

func TestAnalyzeRegexFallbackOnUnparseableText(t *testing.T) {
	raw := "some free-form output\nRegistrar: Fallback Registrar\nName Server: ns1.example.net\n"
	info := testAnalyzer(raw, nil).Analyze("example.net")

	assert.Equal(t, "Fallback Registrar", info.Registrar)
	assert.Equal(t, []string{"ns1.example.net"}, info.NameServers)
}

func TestAnalyzeSurvivesLookupFailure(t *testing.T) {
	info := testAnalyzer("", assert.AnError).Analyze("acme-corp.com")
	assert.Equal(t, "acme-corp.com", info.Domain)
	assert.Empty(t, info.Registrar)
}

func TestAnalyzeScrapesFaxWithoutParser(t *testing.T) {
	raw := "Registrant Name: John Smith\nRegistrant Fax: +1.5551234567\n"
	info := testAnalyzer(raw, nil).Analyze("acme-corp.com")

	require.NotNil(t, info.Registrant)
	assert.Equal(t, "John Smith", info.Registrant.Name)
	assert.Equal(t, "+1.5551234567", info.Registrant.Fax)
}

func TestContactFromTextEmptyBlock(t *testing.T) {
	assert.Nil(t, contactFromText("no contact fields here", "Registrant"))
}

func TestMergeContactFillsOnlyEmptyFields(t *testing.T) {
	parsed := &Contact{Name: "Parsed Name", Country: "US"}
	scraped := &Contact{Name: "Scraped Name", Fax: "+1.5550000000"}

	merged := mergeContact(parsed, scraped)
	assert.Equal(t, "Parsed Name", merged.Name)
	assert.Equal(t, "+1.5550000000", merged.Fax)
	assert.Equal(t, "US", merged.Country)

	assert.Equal(t, scraped, mergeContact(nil, scraped))
	assert.Equal(t, parsed, mergeContact(parsed, nil))
}

func TestUniqueStrings(t *testing.T) {
	got := uniqueStrings([]string{" a ", "b", "a", "", "b"})
	assert.Equal(t, []string{"a", "b"}, got)
}

package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	pipeline "github.com/shii9/MetaNio/internal/Pipeline"
)

// WriteJSON renders the run results as an indented JSON document.
func WriteJSON(results *pipeline.Results, outputDir string) (string, error) {
	path := filepath.Join(outputDir, "metanio_report.json")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create json report: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return "", fmt.Errorf("encode json report: %w", err)
	}
	return path, nil
}

// WriteText renders the human-readable report.
func WriteText(results *pipeline.Results, outputDir string) (string, error) {
	path := filepath.Join(outputDir, "metanio_report.txt")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create text report: %w", err)
	}
	defer f.Close()

	renderText(f, results)
	return path, nil
}

func renderText(w io.Writer, r *pipeline.Results) {
	line := strings.Repeat("=", 70)

	fmt.Fprintln(w, line)
	fmt.Fprintf(w, "Document Metadata Report for %s\n", r.Target)
	fmt.Fprintf(w, "Generated: %s\n", r.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintln(w, line)

	writeListSection(w, "Users", r.Entities.Users)
	writeListSection(w, "Email Addresses", r.Entities.Emails)
	writeListSection(w, "Software", r.Entities.Software)
	writeListSection(w, "Hostnames", r.Entities.Hostnames)
	writeListSection(w, "Domains", r.Entities.Domains)
	writeListSection(w, "IP Addresses", r.Entities.IPs)
	writeListSection(w, "File Paths", r.Entities.Paths)

	writeDomainSection(w, r)
	writeIPSection(w, r)
	writeDocumentSection(w, r)
	writeGraphSection(w, r)
	writeSummary(w, r)
}

func writeListSection(w io.Writer, title string, values []string) {
	fmt.Fprintf(w, "\n--- %s ---\n", title)
	if len(values) == 0 {
		fmt.Fprintf(w, "No %s information available\n", strings.ToLower(title))
		return
	}
	for _, v := range values {
		fmt.Fprintf(w, "  %s\n", v)
	}
}

func writeDomainSection(w io.Writer, r *pipeline.Results) {
	fmt.Fprintf(w, "\n--- Domain Registration ---\n")
	d := r.Domain
	if d == nil {
		fmt.Fprintln(w, "No domain registration information available")
		return
	}
	fmt.Fprintf(w, "  Domain:     %s\n", d.Domain)
	if d.Registrar != "" {
		fmt.Fprintf(w, "  Registrar:  %s\n", d.Registrar)
	}
	if d.CreationDate != "" {
		fmt.Fprintf(w, "  Created:    %s\n", d.CreationDate)
	}
	if d.ExpirationDate != "" {
		fmt.Fprintf(w, "  Expires:    %s\n", d.ExpirationDate)
	}
	if d.Registrant != nil {
		fmt.Fprintf(w, "  Registrant: %s\n", contactLine(d.Registrant.Name, d.Registrant.Organization, d.Registrant.Email))
	}
	if d.Admin != nil {
		fmt.Fprintf(w, "  Admin:      %s\n", contactLine(d.Admin.Name, d.Admin.Organization, d.Admin.Email))
	}
	if d.Tech != nil {
		fmt.Fprintf(w, "  Tech:       %s\n", contactLine(d.Tech.Name, d.Tech.Organization, d.Tech.Email))
	}
	for _, ns := range d.NameServers {
		fmt.Fprintf(w, "  NS:         %s\n", ns)
	}
	for _, mx := range d.MXRecords {
		fmt.Fprintf(w, "  MX:         %s\n", mx)
	}
	for _, ip := range d.IPAddresses {
		fmt.Fprintf(w, "  A:          %s\n", ip)
	}
}

func contactLine(parts ...string) string {
	filtered := parts[:0:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			filtered = append(filtered, p)
		}
	}
	if len(filtered) == 0 {
		return "<redacted>"
	}
	return strings.Join(filtered, ", ")
}

func writeIPSection(w io.Writer, r *pipeline.Results) {
	fmt.Fprintf(w, "\n--- IP Address Ownership ---\n")
	if len(r.IPs) == 0 {
		fmt.Fprintln(w, "No ip address ownership information available")
		return
	}
	for _, info := range r.IPs {
		fmt.Fprintf(w, "  %s\n", info.IP)
		if info.Organization != "" {
			fmt.Fprintf(w, "    Organization: %s\n", info.Organization)
		}
		if info.CIDR != "" {
			fmt.Fprintf(w, "    Network:      %s\n", info.CIDR)
		}
		if info.ASN != "" {
			fmt.Fprintf(w, "    Handle:       %s\n", info.ASN)
		}
		if info.Country != "" {
			fmt.Fprintf(w, "    Country:      %s\n", info.Country)
		}
		if info.ReverseDNS != "" {
			fmt.Fprintf(w, "    Reverse DNS:  %s\n", info.ReverseDNS)
		}
		if len(info.AssociatedDomains) > 0 {
			fmt.Fprintf(w, "    Domains:      %s\n", strings.Join(info.AssociatedDomains, ", "))
		}
	}
}

func writeDocumentSection(w io.Writer, r *pipeline.Results) {
	fmt.Fprintf(w, "\n--- Documents (%d) ---\n", len(r.Documents))
	if len(r.Documents) == 0 {
		fmt.Fprintln(w, "No document information available")
		return
	}
	for _, doc := range r.Documents {
		fmt.Fprintf(w, "\n  %s (%s, %d bytes)\n", doc.Filename, doc.Type, doc.Size)
		if doc.Title != "" {
			fmt.Fprintf(w, "    Title:    %s\n", doc.Title)
		}
		if doc.Subject != "" {
			fmt.Fprintf(w, "    Subject:  %s\n", doc.Subject)
		}
		if doc.CreationDate != "" {
			fmt.Fprintf(w, "    Created:  %s\n", doc.CreationDate)
		}
		if doc.ModificationDate != "" {
			fmt.Fprintf(w, "    Modified: %s\n", doc.ModificationDate)
		}
		if len(doc.Authors) > 0 {
			fmt.Fprintf(w, "    Authors:  %s\n", strings.Join(doc.Authors, ", "))
		}
		if len(doc.Software) > 0 {
			fmt.Fprintf(w, "    Software: %s\n", strings.Join(doc.Software, ", "))
		}
		if doc.GPS != nil {
			fmt.Fprintf(w, "    GPS:      lat %s lon %s alt %s\n", doc.GPS.Latitude, doc.GPS.Longitude, doc.GPS.Altitude)
		}
		deviceFields := make([]string, 0, len(doc.Device))
		for field := range doc.Device {
			deviceFields = append(deviceFields, field)
		}
		sort.Strings(deviceFields)
		for _, field := range deviceFields {
			fmt.Fprintf(w, "    Device %s: %s\n", field, doc.Device[field])
		}
		if len(doc.All) > 0 {
			fmt.Fprintln(w, "    All Metadata Fields:")
			keys := make([]string, 0, len(doc.All))
			for k := range doc.All {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(w, "      %s: %s\n", k, doc.All[k])
			}
		}
	}
}

func writeGraphSection(w io.Writer, r *pipeline.Results) {
	fmt.Fprintf(w, "\n--- Relationships ---\n")
	if r.Graph == nil || len(r.Graph.Edges) == 0 {
		fmt.Fprintln(w, "No relationships information available")
		return
	}
	for _, e := range r.Graph.Edges {
		fmt.Fprintf(w, "  %s %q %s %s %q\n", e.From.Kind, e.From.Value, e.Relation, e.To.Kind, e.To.Value)
	}
}

func writeSummary(w io.Writer, r *pipeline.Results) {
	fmt.Fprintf(w, "\n--- Summary ---\n")
	rows := []struct {
		label string
		count int
	}{
		{"Documents", len(r.Documents)},
		{"Users", len(r.Entities.Users)},
		{"Email addresses", len(r.Entities.Emails)},
		{"Software packages", len(r.Entities.Software)},
		{"Hostnames", len(r.Entities.Hostnames)},
		{"Domains", len(r.Entities.Domains)},
		{"IP addresses", len(r.Entities.IPs)},
		{"File paths", len(r.Entities.Paths)},
	}
	for _, row := range rows {
		fmt.Fprintf(w, "  %-18s %d\n", row.label, row.count)
	}
}

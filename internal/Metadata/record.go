package metadata

import (
	"sort"
	"strings"
	"sync"
)

// GPS groups whichever coordinates were found; any field may be empty.
type GPS struct {
	Latitude  string `json:"latitude,omitempty"`
	Longitude string `json:"longitude,omitempty"`
	Altitude  string `json:"altitude,omitempty"`
}

// Record aggregates everything learned about one file. It is keyed by file
// path and mutated concurrently by the tool adapter and format extractors,
// so every accessor takes the lock. Title, subject and the two dates are
// write-once: the first non-empty value wins.
type Record struct {
	mu sync.Mutex

	path     string
	filename string
	size     int64
	fileType string

	creationDate     string
	modificationDate string
	title            string
	subject          string

	authors  map[string]struct{}
	software map[string]struct{}

	emails map[string]struct{}
	urls   map[string]struct{}
	paths  map[string]struct{}
	hosts  map[string]struct{}
	ips    map[string]struct{}

	gps    *GPS
	device map[string]string

	all     map[string]string
	rawTool map[string]any
}

func newRecord(path, filename string, size int64, fileType string) *Record {
	return &Record{
		path:     path,
		filename: filename,
		size:     size,
		fileType: fileType,
		authors:  map[string]struct{}{},
		software: map[string]struct{}{},
		emails:   map[string]struct{}{},
		urls:     map[string]struct{}{},
		paths:    map[string]struct{}{},
		hosts:    map[string]struct{}{},
		ips:      map[string]struct{}{},
		device:   map[string]string{},
		all:      map[string]string{},
	}
}

func (r *Record) Path() string { return r.path }

func (r *Record) SetTitle(v string) {
	v = strings.TrimSpace(v)
	if v == "" {
		return
	}
	r.mu.Lock()
	if r.title == "" {
		r.title = v
	}
	r.mu.Unlock()
}

func (r *Record) SetSubject(v string) {
	v = strings.TrimSpace(v)
	if v == "" {
		return
	}
	r.mu.Lock()
	if r.subject == "" {
		r.subject = v
	}
	r.mu.Unlock()
}

func (r *Record) SetCreationDate(v string) {
	v = strings.TrimSpace(v)
	if v == "" {
		return
	}
	r.mu.Lock()
	if r.creationDate == "" {
		r.creationDate = v
	}
	r.mu.Unlock()
}

func (r *Record) SetModificationDate(v string) {
	v = strings.TrimSpace(v)
	if v == "" {
		return
	}
	r.mu.Lock()
	if r.modificationDate == "" {
		r.modificationDate = v
	}
	r.mu.Unlock()
}

func (r *Record) addAll(set map[string]struct{}, values ...string) {
	r.mu.Lock()
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			set[v] = struct{}{}
		}
	}
	r.mu.Unlock()
}

func (r *Record) AddAuthor(values ...string)   { r.addAll(r.authors, values...) }
func (r *Record) AddSoftware(values ...string) { r.addAll(r.software, values...) }
func (r *Record) AddEmails(values ...string)   { r.addAll(r.emails, values...) }
func (r *Record) AddURLs(values ...string)     { r.addAll(r.urls, values...) }
func (r *Record) AddPaths(values ...string)    { r.addAll(r.paths, values...) }
func (r *Record) AddHosts(values ...string)    { r.addAll(r.hosts, values...) }
func (r *Record) AddIPs(values ...string)      { r.addAll(r.ips, values...) }

// SetGPS stores the coordinates once; later calls are ignored.
func (r *Record) SetGPS(g GPS) {
	if g.Latitude == "" && g.Longitude == "" && g.Altitude == "" {
		return
	}
	r.mu.Lock()
	if r.gps == nil {
		r.gps = &g
	}
	r.mu.Unlock()
}

func (r *Record) SetDevice(field, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	r.mu.Lock()
	r.device[field] = value
	r.mu.Unlock()
}

// MergeAll folds flattened metadata keys into the canonical all-metadata map.
func (r *Record) MergeAll(kv map[string]string) {
	r.mu.Lock()
	for k, v := range kv {
		r.all[k] = v
	}
	r.mu.Unlock()
}

func (r *Record) SetAllField(key, value string) {
	r.mu.Lock()
	r.all[key] = value
	r.mu.Unlock()
}

// SetRawTool keeps the unmodified external-tool output for the report.
func (r *Record) SetRawTool(meta map[string]any) {
	r.mu.Lock()
	r.rawTool = meta
	r.mu.Unlock()
}

// View is an immutable snapshot of a Record for reporting.
type View struct {
	Path             string            `json:"file_path"`
	Filename         string            `json:"filename"`
	Size             int64             `json:"file_size"`
	Type             string            `json:"file_type"`
	Title            string            `json:"title,omitempty"`
	Subject          string            `json:"subject,omitempty"`
	CreationDate     string            `json:"creation_date,omitempty"`
	ModificationDate string            `json:"modification_date,omitempty"`
	Authors          []string          `json:"authors,omitempty"`
	Software         []string          `json:"software,omitempty"`
	Emails           []string          `json:"found_emails,omitempty"`
	URLs             []string          `json:"found_urls,omitempty"`
	Paths            []string          `json:"found_paths,omitempty"`
	Hosts            []string          `json:"found_hostnames,omitempty"`
	IPs              []string          `json:"found_ip_addresses,omitempty"`
	GPS              *GPS              `json:"gps_data,omitempty"`
	Device           map[string]string `json:"device_info,omitempty"`
	All              map[string]string `json:"all_metadata,omitempty"`
	RawTool          map[string]any    `json:"exiftool_metadata,omitempty"`
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func (r *Record) Snapshot() View {
	r.mu.Lock()
	defer r.mu.Unlock()

	v := View{
		Path:             r.path,
		Filename:         r.filename,
		Size:             r.size,
		Type:             r.fileType,
		Title:            r.title,
		Subject:          r.subject,
		CreationDate:     r.creationDate,
		ModificationDate: r.modificationDate,
		Authors:          sortedKeys(r.authors),
		Software:         sortedKeys(r.software),
		Emails:           sortedKeys(r.emails),
		URLs:             sortedKeys(r.urls),
		Paths:            sortedKeys(r.paths),
		Hosts:            sortedKeys(r.hosts),
		IPs:              sortedKeys(r.ips),
	}
	if r.gps != nil {
		g := *r.gps
		v.GPS = &g
	}
	if len(r.device) > 0 {
		v.Device = map[string]string{}
		for k, val := range r.device {
			v.Device[k] = val
		}
	}
	if len(r.all) > 0 {
		v.All = map[string]string{}
		for k, val := range r.all {
			v.All[k] = val
		}
	}
	v.RawTool = r.rawTool
	return v
}

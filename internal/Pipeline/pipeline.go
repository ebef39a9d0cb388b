package pipeline

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	config "github.com/shii9/MetaNio/internal/Config"
	correlate "github.com/shii9/MetaNio/internal/Correlate"
	crawler "github.com/shii9/MetaNio/internal/Crawler"
	dnsx "github.com/shii9/MetaNio/internal/Dnsx"
	download "github.com/shii9/MetaNio/internal/Download"
	entities "github.com/shii9/MetaNio/internal/Entities"
	exiftool "github.com/shii9/MetaNio/internal/Exiftool"
	formats "github.com/shii9/MetaNio/internal/Formats"
	ipinfo "github.com/shii9/MetaNio/internal/Ipinfo"
	metadata "github.com/shii9/MetaNio/internal/Metadata"
	whois "github.com/shii9/MetaNio/internal/Whois"
)

// EntitySummary is the aggregated entity view for reporting.
type EntitySummary struct {
	Users     []string `json:"users,omitempty"`
	Emails    []string `json:"emails,omitempty"`
	Software  []string `json:"software,omitempty"`
	Hostnames []string `json:"hostnames,omitempty"`
	Domains   []string `json:"domains,omitempty"`
	IPs       []string `json:"ip_addresses,omitempty"`
	Paths     []string `json:"paths,omitempty"`
}

// Results is everything one run produced, ready for the report writers.
type Results struct {
	Target      string            `json:"target"`
	GeneratedAt time.Time         `json:"generated_at"`
	Documents   []metadata.View   `json:"documents"`
	Entities    EntitySummary     `json:"entities"`
	IPs         []ipinfo.Info     `json:"ip_info,omitempty"`
	Domain      *whois.DomainInfo `json:"domain_info,omitempty"`
	Graph       *correlate.Graph  `json:"graph,omitempty"`
}

// Pipeline owns all run state; nothing is global, two runs never share data.
type Pipeline struct {
	cfg  *config.Config
	log  zerolog.Logger
	tool *exiftool.Tool

	docs     *metadata.Store
	ents     *entities.Store
	scanner  *entities.Extractor
	resolver *dnsx.Resolver
	cache    *ipinfo.Cache
	analyzer *whois.Analyzer
}

// New wires a pipeline for one run. The external metadata tool is required;
// without it on PATH there is no point starting.
func New(cfg *config.Config, log zerolog.Logger) (*Pipeline, error) {
	binary, err := exiftool.Locate()
	if err != nil {
		return nil, err
	}

	ents := entities.NewStore()
	resolver := dnsx.NewResolver()
	cache := ipinfo.NewCache(log, resolver)
	return &Pipeline{
		cfg:      cfg,
		log:      log,
		tool:     exiftool.New(binary),
		docs:     metadata.NewStore(),
		ents:     ents,
		scanner:  entities.NewExtractor(ents),
		resolver: resolver,
		cache:    cache,
		analyzer: whois.NewAnalyzer(log, resolver, cache),
	}, nil
}

// Execute runs the whole pipeline: gather files, extract metadata, enrich
// domains and addresses, correlate.
func (p *Pipeline) Execute(ctx context.Context) (*Results, error) {
	var (
		paths []string
		err   error
	)
	if p.cfg.LocalDir != "" {
		paths, err = p.collectLocal()
	} else {
		paths, err = p.collectRemote(ctx)
	}
	if err != nil {
		return nil, err
	}
	p.log.Info().Int("files", len(paths)).Msg("documents gathered")

	p.extractAll(ctx, paths)
	p.enrich()

	results := &Results{
		Target:      p.targetLabel(),
		GeneratedAt: time.Now().UTC(),
		Documents:   p.docs.Snapshot(),
		Entities: EntitySummary{
			Users:     p.ents.Users(),
			Emails:    p.ents.Emails(),
			Software:  p.ents.Software(),
			Hostnames: p.ents.Hosts(),
			Domains:   p.ents.Domains(),
			IPs:       p.ents.IPs(),
			Paths:     p.ents.Paths(),
		},
	}
	if p.cache != nil {
		results.IPs = p.cache.Snapshot()
	}
	if p.cfg.LocalDir == "" && p.analyzer != nil {
		results.Domain = p.analyzer.Analyze(p.cfg.TargetDomain())
	}
	results.Graph = correlate.NewBuilder().Build(p.ents, results.IPs)
	return results, nil
}

func (p *Pipeline) targetLabel() string {
	if p.cfg.LocalDir != "" {
		return p.cfg.LocalDir
	}
	return p.cfg.TargetDomain()
}

// collectRemote crawls the target site and downloads what it finds.
func (p *Pipeline) collectRemote(ctx context.Context) ([]string, error) {
	c := crawler.New(p.log, p.cfg.UserAgent, p.cfg.Delay, crawler.DefaultFormats)
	urls, err := c.Run(ctx, p.cfg.TargetURL, p.cfg.Depth)
	if err != nil {
		return nil, fmt.Errorf("crawl %s: %w", p.cfg.TargetURL, err)
	}
	if len(urls) == 0 {
		p.log.Warn().Msg("no documents discovered on target")
		return nil, nil
	}

	destDir := filepath.Join(p.cfg.OutputDir, "downloads")
	d := download.New(p.log, p.cfg.UserAgent, p.cfg.Workers)
	return d.FetchAll(urls, destDir)
}

// collectLocal walks a directory tree for files with a supported extension.
func (p *Pipeline) collectLocal() ([]string, error) {
	var paths []string
	err := filepath.WalkDir(p.cfg.LocalDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			p.log.Debug().Err(err).Str("path", path).Msg("walk error")
			return nil
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
		if interestingExt(ext) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", p.cfg.LocalDir, err)
	}
	return paths, nil
}

func interestingExt(ext string) bool {
	for _, f := range crawler.DefaultFormats {
		if ext == f {
			return true
		}
	}
	return false
}

// extractAll runs the per-file extraction stages under a bounded pool. A
// failing file never stops the run.
func (p *Pipeline) extractAll(ctx context.Context, paths []string) {
	g := errgroup.Group{}
	g.SetLimit(p.cfg.Workers)
	for _, path := range paths {
		g.Go(func() error {
			p.extractOne(ctx, path)
			return nil
		})
	}
	g.Wait()
}

func (p *Pipeline) extractOne(ctx context.Context, path string) {
	stat, err := os.Stat(path)
	if err != nil {
		p.log.Warn().Err(err).Str("file", path).Msg("stat failed")
		return
	}
	rec := p.docs.Ensure(path, stat.Size())

	rec.SetAllField("filesystem.modification_time", stat.ModTime().UTC().Format(time.RFC3339))
	rec.SetAllField("filesystem.size", fmt.Sprintf("%d", stat.Size()))
	rec.SetAllField("filesystem.permissions", stat.Mode().String())

	meta, err := p.tool.Extract(ctx, path)
	if err != nil {
		p.log.Warn().Err(err).Str("file", path).Msg("tool extraction failed")
	} else {
		rec.SetRawTool(meta)
		rec.MergeAll(metadata.Flatten(meta))
		metadata.ApplyAliases(rec, p.ents, meta)
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if extractor, ok := formats.ForType(ext); ok {
		if err := extractor.Extract(path, rec, p.scanner); err != nil {
			p.log.Debug().Err(err).Str("file", path).Msg("format extraction failed")
		}
	}

	// Filesystem timestamps back any document that carried no dates of
	// its own.
	modTime := stat.ModTime().UTC().Format("2006-01-02 15:04:05")
	rec.SetCreationDate(modTime)
	rec.SetModificationDate(modTime)

	p.log.Info().Str("file", filepath.Base(path)).Msg("processed")
}

// enrich resolves every discovered internal domain and records address
// ownership for the hits.
func (p *Pipeline) enrich() {
	if p.resolver == nil || p.cache == nil {
		return
	}
	for _, domain := range p.ents.Domains() {
		ips, err := p.resolver.LookupA(domain)
		if err != nil {
			p.log.Debug().Err(err).Str("domain", domain).Msg("domain did not resolve")
			continue
		}
		for _, ip := range ips {
			p.ents.AddIP(ip)
			p.cache.Lookup(ip, domain)
		}
	}
}

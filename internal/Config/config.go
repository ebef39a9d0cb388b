package config

import (
	"fmt"
	"math/rand"
	"net/url"
	"os"
	"strings"
	"time"
)

// Config carries every knob a run needs. Exactly one of TargetURL or
// LocalDir must be set.
type Config struct {
	TargetURL string
	LocalDir  string
	OutputDir string
	Depth     int
	Workers   int
	Delay     time.Duration
	UserAgent string
	Formats   []string
	Verbose   bool
}

var userAgents = map[string]string{
	"default": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/96.0.4664.110 Safari/537.36",
	"firefox": "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:95.0) Gecko/20100101 Firefox/95.0",
	"safari":  "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/15.1 Safari/605.1.15",
	"edge":    "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/96.0.4664.110 Safari/537.36 Edg/96.0.1054.62",
	"mobile":  "Mozilla/5.0 (iPhone; CPU iPhone OS 15_1 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/15.1 Mobile/15E148 Safari/604.1",
}

// ResolveUserAgent maps a selector name to a concrete User-Agent string.
// "random" picks one of the known agents; unknown names fall back to default.
func ResolveUserAgent(name string) string {
	if name == "random" {
		keys := make([]string, 0, len(userAgents))
		for k := range userAgents {
			keys = append(keys, k)
		}
		return userAgents[keys[rand.Intn(len(keys))]]
	}
	if ua, ok := userAgents[name]; ok {
		return ua
	}
	return userAgents["default"]
}

// Validate normalizes the config, applies defaults and creates the output
// directory.
func (c *Config) Validate() error {
	if c.TargetURL == "" && c.LocalDir == "" {
		return fmt.Errorf("either a target URL or a local directory is required")
	}
	if c.TargetURL != "" && c.LocalDir != "" {
		return fmt.Errorf("target URL and local directory are mutually exclusive")
	}

	if c.TargetURL != "" {
		if !strings.HasPrefix(c.TargetURL, "http://") && !strings.HasPrefix(c.TargetURL, "https://") {
			c.TargetURL = "https://" + c.TargetURL
		}
		u, err := url.Parse(c.TargetURL)
		if err != nil {
			return fmt.Errorf("parse target URL: %w", err)
		}
		if u.Host == "" {
			return fmt.Errorf("target URL %q has no host", c.TargetURL)
		}
	}

	if c.LocalDir != "" {
		st, err := os.Stat(c.LocalDir)
		if err != nil {
			return fmt.Errorf("local directory: %w", err)
		}
		if !st.IsDir() {
			return fmt.Errorf("local path %q is not a directory", c.LocalDir)
		}
	}

	if c.OutputDir == "" {
		c.OutputDir = "output"
	}
	if c.Depth < 0 {
		c.Depth = 0
	}
	if c.Workers <= 0 {
		c.Workers = 10
	}
	if len(c.Formats) == 0 {
		c.Formats = []string{"text"}
	}
	for _, f := range c.Formats {
		if f != "text" && f != "json" {
			return fmt.Errorf("unknown report format %q (valid: text, json)", f)
		}
	}
	c.UserAgent = ResolveUserAgent(c.UserAgent)

	if err := os.MkdirAll(c.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return nil
}

// TargetDomain returns the registrable host of the target URL with any
// leading www. stripped, or "" when running against a local directory.
func (c *Config) TargetDomain() string {
	if c.TargetURL == "" {
		return ""
	}
	u, err := url.Parse(c.TargetURL)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}

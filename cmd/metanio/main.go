package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	config "github.com/shii9/MetaNio/internal/Config"
	pipeline "github.com/shii9/MetaNio/internal/Pipeline"
	report "github.com/shii9/MetaNio/internal/Report"
	utils "github.com/shii9/MetaNio/internal/Utils"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := &config.Config{}
	var (
		delaySeconds float64
		agentName    string
	)

	cmd := &cobra.Command{
		Use:   "metanio",
		Short: "Harvest document metadata from a target website or local directory",
		Long: `metanio crawls a target website for published documents (or scans a
local directory), extracts their metadata, and correlates the usernames,
email addresses, software versions, hosts and network information they
leak into a single report.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Delay = time.Duration(delaySeconds * float64(time.Second))
			cfg.UserAgent = agentName
			if err := cfg.Validate(); err != nil {
				return err
			}

			log, err := utils.NewLogger(cfg.OutputDir, cfg.Verbose)
			if err != nil {
				return err
			}

			p, err := pipeline.New(cfg, log)
			if err != nil {
				return err
			}
			results, err := p.Execute(cmd.Context())
			if err != nil {
				return err
			}

			for _, format := range cfg.Formats {
				var path string
				switch format {
				case "json":
					path, err = report.WriteJSON(results, cfg.OutputDir)
				default:
					path, err = report.WriteText(results, cfg.OutputDir)
				}
				if err != nil {
					return err
				}
				log.Info().Str("report", path).Msg("report written")
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&cfg.TargetURL, "url", "u", "", "target website URL")
	flags.StringVarP(&cfg.LocalDir, "local", "l", "", "scan a local directory instead of crawling")
	flags.StringVarP(&cfg.OutputDir, "output", "o", "output", "output directory")
	flags.IntVarP(&cfg.Depth, "depth", "d", 2, "crawl depth")
	flags.IntVarP(&cfg.Workers, "threads", "t", 10, "concurrent workers")
	flags.Float64Var(&delaySeconds, "time-delay", 0, "seconds to wait between page requests")
	flags.StringVar(&agentName, "user-agent", "default", "user agent profile (default, firefox, safari, edge, mobile, random)")
	flags.StringSliceVarP(&cfg.Formats, "format", "f", []string{"text"}, "report formats (text, json)")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", false, "verbose logging")

	cmd.SetContext(context.Background())
	return cmd
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/forgeline/forge-deploy/pkg/config"
	"github.com/forgeline/forge-deploy/pkg/forge"
	"github.com/forgeline/forge-deploy/pkg/monitor"
)

// Version information (set via ldflags during build)
var (
	version = "0.1.0"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Parse command line flags
	var (
		manifestFile = flag.String("manifest", "", "Path to optional forge-deploy manifest file")
		interval     = flag.Duration("interval", 0, "Poll interval (e.g. 10s); overrides manifest")
		timeout      = flag.Duration("timeout", 0, "Deployment timeout (e.g. 10m); overrides manifest")
		showVersion  = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("forge-deploy version %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built: %s\n", date)
		os.Exit(0)
	}

	ctx := context.Background()

	// Load optional manifest
	var m *config.Manifest
	if *manifestFile != "" {
		var err error
		m, err = config.LoadManifest(*manifestFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading manifest: %v\n", err)
			os.Exit(1)
		}
	}

	// Resolve configuration (environment wins over manifest)
	cfg, err := config.Resolve(ctx, m)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}
	if *interval > 0 {
		cfg.Interval = *interval
	}
	if *timeout > 0 {
		cfg.Timeout = *timeout
	}

	client := forge.NewClient(&forge.Config{
		Token:        cfg.Token,
		Organization: cfg.Organization,
		Server:       cfg.Server,
		Site:         cfg.Site,
	})

	mon := monitor.New(client, monitor.Options{
		Interval: cfg.Interval,
		Timeout:  cfg.Timeout,
	})

	result, err := mon.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Deployment failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Deployment successful!\n")
	fmt.Printf("  Deployment: %s\n", result.DeploymentID)
	fmt.Printf("  Status: %s\n", result.LastStatus)
	fmt.Printf("  Duration: %s\n", result.Elapsed.Round(time.Second))
}

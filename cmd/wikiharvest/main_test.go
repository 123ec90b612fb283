package main

import (
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkonrad/wikiharvest/internal/config"
)

func newFlagCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().StringVarP(&outputDir, "output", "o", "output", "")
	cmd.Flags().StringVar(&delay, "delay", "", "")
	cmd.Flags().StringVar(&userAgent, "user-agent", "", "")
	cmd.Flags().StringVar(&mongoURI, "mongo-uri", "", "")
	cmd.Flags().BoolVar(&respectRobots, "respect-robots", true, "")
	return cmd
}

func TestApplyCLIOverridesRejectsBadDelay(t *testing.T) {
	cmd := newFlagCmd()
	if err := cmd.Flags().Set("delay", "soon"); err != nil {
		t.Fatalf("set flag: %v", err)
	}

	cfg := config.DefaultConfig()
	if err := applyCLIOverrides(cmd, cfg); err == nil {
		t.Fatal("expected an error for an unparseable --delay")
	}
	if cfg.Scraper.Delay != time.Second {
		t.Errorf("delay must keep its default on error, got %s", cfg.Scraper.Delay)
	}
}

func TestApplyCLIOverridesAppliesChangedFlags(t *testing.T) {
	cmd := newFlagCmd()
	for flag, value := range map[string]string{
		"delay":          "2s",
		"output":         "elsewhere",
		"respect-robots": "false",
	} {
		if err := cmd.Flags().Set(flag, value); err != nil {
			t.Fatalf("set %s: %v", flag, err)
		}
	}

	cfg := config.DefaultConfig()
	if err := applyCLIOverrides(cmd, cfg); err != nil {
		t.Fatalf("apply overrides: %v", err)
	}
	if cfg.Scraper.Delay != 2*time.Second {
		t.Errorf("delay: got %s", cfg.Scraper.Delay)
	}
	if cfg.Storage.OutputDir != "elsewhere" {
		t.Errorf("output dir: got %q", cfg.Storage.OutputDir)
	}
	if cfg.Scraper.RespectRobotsTxt {
		t.Error("respect-robots=false not applied")
	}
}

func TestApplyCLIOverridesLeavesUnchangedFlagsAlone(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Storage.OutputDir = "from-config-file"

	if err := applyCLIOverrides(newFlagCmd(), cfg); err != nil {
		t.Fatalf("apply overrides: %v", err)
	}
	if cfg.Storage.OutputDir != "from-config-file" {
		t.Errorf("unset flag must not clobber config file value, got %q", cfg.Storage.OutputDir)
	}
}

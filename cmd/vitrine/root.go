package main

import (
	"log"
	"os"

	"github.com/go-while/go-vitrine/internal/catalog"
	"github.com/go-while/go-vitrine/internal/config"
	"github.com/spf13/cobra"
)

var (
	cfgPath     string
	catalogPath string
)

var rootCmd = &cobra.Command{
	Use:   "vitrine",
	Short: "Corporate site with a careers catalog",
	Long:  "vitrine serves the fixed pages of the site and the job postings loaded once at startup.",
	// no subcommand runs the server
	RunE:          runServe,
	SilenceUsage:  true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: VITRINE_CONFIG env var, else built-in defaults)")
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "job postings source, .json or sqlite file (default: "+config.DefaultCatalogPath+")")
	addServeFlags(rootCmd)
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path > VITRINE_CONFIG env var > defaults without file
func loadConfig(path string) (*config.MainConfig, error) {
	if path == "" {
		path = os.Getenv("VITRINE_CONFIG")
	}
	if path == "" {
		log.Printf("[CONFIG]: No config file given, using defaults")
		return config.NewDefaultConfig(), nil
	}
	return config.Load(path)
}

// resolveCatalogPath applies the --catalog override
func resolveCatalogPath(cfg *config.MainConfig) string {
	if catalogPath != "" {
		cfg.Catalog.Path = catalogPath
	}
	if cfg.Catalog.Path == "" {
		cfg.Catalog.Path = config.DefaultCatalogPath
	}
	return cfg.Catalog.Path
}

func loadCatalog(cfg *config.MainConfig) *catalog.Catalog {
	return catalog.LoadPath(resolveCatalogPath(cfg))
}

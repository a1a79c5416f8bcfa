package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	prof "github.com/go-while/go-cpu-mem-profiler"
	"github.com/go-while/go-vitrine/internal/config"
	"github.com/go-while/go-vitrine/internal/site"
	"github.com/go-while/go-vitrine/internal/web"
	"github.com/spf13/cobra"
)

var Prof *prof.Profiler

var serveFlags struct {
	port         int
	ssl          bool
	certFile     string
	keyFile      string
	httpsURLs    bool
	pprofAddr    string
	staticDir    string
	templatesDir string
	debug        bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web server",
	Long:  "Loads the config and the job catalog once, then serves until SIGINT or SIGTERM.",
	RunE:  runServe,
}

func init() {
	addServeFlags(serveCmd)
	rootCmd.AddCommand(serveCmd)
}

func addServeFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.IntVar(&serveFlags.port, "port", 0, fmt.Sprintf("web server port (default: %d)", config.DefaultListenPort))
	f.BoolVar(&serveFlags.ssl, "ssl", false, "enable SSL")
	f.StringVar(&serveFlags.certFile, "cert", "", "SSL certificate file (/path/to/fullchain.pem)")
	f.StringVar(&serveFlags.keyFile, "key", "", "SSL key file (/path/to/privkey.pem)")
	f.BoolVar(&serveFlags.httpsURLs, "https-urls", false, "rewrite generated absolute URLs to https")
	f.StringVar(&serveFlags.pprofAddr, "pprof", "", "serve pprof on this address, e.g. 127.0.0.1:51111")
	f.StringVar(&serveFlags.staticDir, "static-dir", "", "serve static assets from this directory instead of the embedded ones")
	f.StringVar(&serveFlags.templatesDir, "templates-dir", "", "load templates from this directory instead of the embedded ones")
	f.BoolVar(&serveFlags.debug, "debug", false, "gin debug mode with request logging")
}

// applyServeFlags overrides config values with the flags set on the command line
func applyServeFlags(cmd *cobra.Command, cfg *config.MainConfig) error {
	f := cmd.Flags()
	if f.Changed("port") {
		cfg.Web.ListenPort = serveFlags.port
		log.Printf("[SERVE]: Overriding listen port with command-line flag: %d", cfg.Web.ListenPort)
	}
	if f.Changed("ssl") {
		cfg.Web.SSL = serveFlags.ssl
	}
	if serveFlags.certFile != "" {
		cfg.Web.CertFile = serveFlags.certFile
	}
	if serveFlags.keyFile != "" {
		cfg.Web.KeyFile = serveFlags.keyFile
	}
	if f.Changed("https-urls") {
		cfg.Web.HTTPSURLs = serveFlags.httpsURLs
	}
	if serveFlags.pprofAddr != "" {
		cfg.Profiling.PprofAddr = serveFlags.pprofAddr
	}
	if serveFlags.staticDir != "" {
		cfg.Web.StaticDir = serveFlags.staticDir
	}
	if serveFlags.templatesDir != "" {
		cfg.Web.TemplatesDir = serveFlags.templatesDir
	}
	if f.Changed("debug") {
		cfg.Web.Debug = serveFlags.debug
	}
	return cfg.Validate()
}

func runServe(cmd *cobra.Command, args []string) error {
	log.Printf("Starting go-vitrine web server (version: %s)", config.AppVersion)
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := applyServeFlags(cmd, cfg); err != nil {
		return err
	}
	cfg.AppVersion = config.AppVersion

	cat := loadCatalog(cfg)
	log.Printf("[SERVE]: Catalog %s: %d postings (%s)", cat.Source(), cat.Len(), cat.State())

	table, err := site.NewTable(site.DefaultPages(), cat)
	if err != nil {
		return fmt.Errorf("route table: %w", err)
	}
	server, err := web.NewServer(cfg, table)
	if err != nil {
		return fmt.Errorf("web server: %w", err)
	}

	if cfg.Profiling.PprofAddr != "" {
		Prof = prof.NewProf()
		log.Printf("[SERVE]: pprof web on %s", cfg.Profiling.PprofAddr)
		go Prof.PprofWeb(cfg.Profiling.PprofAddr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	protocol := "http"
	if cfg.Web.SSL {
		protocol = "https"
	}
	log.Printf("[SERVE]: Listening on %s://localhost:%d", protocol, cfg.Web.ListenPort)
	if err := server.Start(ctx); err != nil {
		return err
	}
	log.Printf("[SERVE]: Server stopped after %s", server.Uptime())
	return nil
}

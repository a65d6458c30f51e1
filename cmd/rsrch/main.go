package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pders01/rsrch/internal/analysis"
	"github.com/pders01/rsrch/internal/config"
	"github.com/pders01/rsrch/internal/debuglog"
	"github.com/pders01/rsrch/internal/tui"
	"github.com/pders01/rsrch/internal/validation"
)

// Version is the version of the application, set at build time
var Version = "dev"

var (
	configPath string
	endpoint   string
	timeout    time.Duration
	quiet      bool
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:           "rsrch",
	Short:         "Ask questions about academic articles from the terminal",
	Long:          "rsrch sends a question about one or more article URLs to the research analysis service and renders the answer.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTUI,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%s %s\n", tui.AppName, Version)
		fmt.Println("Research article analyst")
		fmt.Println("github.com/pders01/rsrch")
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configGenCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write the default configuration file",
	Run: func(cmd *cobra.Command, args []string) {
		configFile := config.DefaultPath()
		if err := config.GenerateDefaultConfig(configFile); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Generated default configuration at: %s\n", configFile)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Path to configuration file")
	pf.StringVar(&endpoint, "endpoint", "", "Analysis service URL (overrides config)")
	pf.DurationVar(&timeout, "timeout", 0, "Request timeout (overrides config)")
	pf.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error, off")
	rootCmd.Flags().BoolVar(&quiet, "quiet", false, "Skip startup banner")

	configCmd.AddCommand(configGenCmd)
	rootCmd.AddCommand(versionCmd, configCmd, askCmd, renderCmd)
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if endpoint != "" {
		normalized, err := validation.NewEndpointValidator().ValidateAndNormalize(endpoint)
		if err != nil {
			return nil, fmt.Errorf("invalid --endpoint: %w", err)
		}
		cfg.API.Endpoint = normalized
	}
	if timeout != 0 {
		cfg.API.Timeout = timeout
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	if err := debuglog.Configure(debuglog.Options{
		Level:      debuglog.ParseLogLevel(cfg.Log.Level),
		Path:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	}); err != nil {
		return nil, fmt.Errorf("setting up logging: %w", err)
	}

	return cfg, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer debuglog.Close()

	if !quiet {
		tui.ShowBanner(Version)
	}

	tui.ApplyTheme(cfg.UI.Colors)
	debuglog.Infof("Starting %s %s against %s", tui.AppName, Version, cfg.API.Endpoint)

	app := tui.NewApp(analysis.NewClient(cfg), cfg)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running UI: %w", err)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

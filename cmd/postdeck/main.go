package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pders01/postdeck/internal/api"
	"github.com/pders01/postdeck/internal/config"
	"github.com/pders01/postdeck/internal/debuglog"
	"github.com/pders01/postdeck/internal/storage"
	"github.com/pders01/postdeck/internal/tui"
	"github.com/pders01/postdeck/internal/validation"
)

// Version is the version of the application, set at build time
var Version = "dev"

var (
	configPath string
	dbPath     string
	apiURL     string
	quiet      bool
)

var rootCmd = &cobra.Command{
	Use:          "postdeck",
	Short:        "Browse, search and prune a user's posts",
	SilenceUsage: true,
	RunE:         runTUI,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("postdeck %s\n", Version)
		fmt.Println("Paginated posts viewer")
		fmt.Println("github.com/pders01/postdeck")
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configGenCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write the default configuration",
	Run: func(_ *cobra.Command, _ []string) {
		path := configPath
		if path == "" {
			path = config.DefaultPath()
		}
		if err := config.GenerateDefaultConfig(path); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Generated default configuration at: %s\n", path)
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		data, err := config.Render(cfg)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to database file (overrides config)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "Backend base URL (overrides config)")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Skip startup banner")

	configCmd.AddCommand(configGenCmd, configShowCmd)
	rootCmd.AddCommand(versionCmd, configCmd)
	addCLICommands(rootCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig applies flag overrides on top of the file and environment and
// validates the result.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	if apiURL != "" {
		cfg.API.BaseURL = apiURL
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	base, err := validation.ValidatorFor(cfg.API.AllowPrivate).ValidateAndNormalize(cfg.API.BaseURL)
	if err != nil {
		return nil, err
	}
	cfg.API.BaseURL = base

	return cfg, nil
}

func setupLogging(cfg *config.Config) error {
	return debuglog.Setup(debuglog.ParseLogLevel(cfg.Log.Level), cfg.Log.File)
}

func newClient(cfg *config.Config) *api.Client {
	return api.NewClient(cfg.API.BaseURL,
		api.WithTimeout(cfg.API.HTTPTimeout),
		api.WithUserAgent(cfg.API.UserAgent),
	)
}

func openStore(cfg *config.Config) (*storage.Store, error) {
	return storage.Open(cfg.Database.Path, cfg.Database.Timeout)
}

func runTUI(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := setupLogging(cfg); err != nil {
		return err
	}
	defer debuglog.Close()

	if !quiet {
		tui.ShowBanner(Version)
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	debuglog.Infof("starting postdeck %s against %s", Version, cfg.API.BaseURL)

	app := tui.NewApp(store, newClient(cfg), cfg)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running UI: %w", err)
	}
	return nil
}

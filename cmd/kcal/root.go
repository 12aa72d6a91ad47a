// ABOUTME: Root Cobra command for kcal CLI.
// ABOUTME: Loads config, opens storage, and wires the API client and tracker via PersistentPre/PostRunE.
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/harperreed/kcal/internal/api"
	"github.com/harperreed/kcal/internal/config"
	"github.com/harperreed/kcal/internal/storage"
	"github.com/harperreed/kcal/internal/tracker"
	"github.com/spf13/cobra"
)

var (
	cfg       *config.Config
	repo      storage.Repository
	apiClient *api.Client
	trk       *tracker.Tracker
	logger    *log.Logger

	flagDataDir string
	flagBackend string
	flagAPIURL  string
	flagVerbose bool
)

// Commands that run without opening the local store.
var storageFree = map[string]bool{
	"help":          true,
	"completion":    true,
	"install-skill": true,
	"devserver":     true,
}

var rootCmd = &cobra.Command{
	Use:   "kcal",
	Short: "Calorie tracker with a nutrition advisor",
	Long: `kcal is a CLI tool for tracking daily calories against a personal goal.

QUICK START:

  $ kcal profile set --weight 70 --height 175 --activity active --gender male
  $ kcal add "Oatmeal" 300                  # Log a meal
  $ kcal add "Salad" 450 --protein 10       # Log a meal with macros
  $ kcal today                              # Eaten, goal, and remaining
  $ kcal week                               # Calories for the last 7 days

REMOTE SERVICE:

  Photo analysis and the advisor chat use the kcal API service.

  $ kcal register you@example.com           # Create an account
  $ kcal login you@example.com              # Save an access token
  $ kcal analyze lunch.jpg --log            # Recognize and log a meal photo
  $ kcal chat "What should I eat tonight?"  # Ask the advisor

  The service address comes from --api-url, KCAL_API_BASE_URL, the config
  file, or http://localhost:8000, in that order. 'kcal devserver' runs a
  local stand-in for development.

MCP INTEGRATION:

  Run 'kcal mcp' to start the Model Context Protocol server for use with
  Claude Desktop or other MCP-compatible AI assistants. Add to your Claude
  config:

  {
    "mcpServers": {
      "kcal": { "command": "kcal", "args": ["mcp"] }
    }
  }

DATA STORAGE:

  Data is stored at ~/.local/share/kcal/kcal.db by default. Set "backend":
  "markdown" in ~/.config/kcal/config.json to keep plain markdown files
  instead.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadEnv(); err != nil {
			return err
		}

		level := log.WarnLevel
		if flagVerbose {
			level = log.DebugLevel
		}
		logger = log.NewWithOptions(os.Stderr, log.Options{Level: level, Prefix: "kcal"})

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if flagAPIURL != "" {
			if err := os.Setenv(config.EnvAPIBaseURL, flagAPIURL); err != nil {
				return err
			}
		}
		apiClient = cfg.NewAPIClient(logger)

		if storageFree[cmd.Name()] {
			return nil
		}

		// Flag overrides apply to this run only and are never saved.
		storeCfg := *cfg
		if flagDataDir != "" {
			storeCfg.DataDir = flagDataDir
		}
		if flagBackend != "" {
			storeCfg.Backend = flagBackend
		}
		repo, err = storeCfg.OpenStorage()
		if err != nil {
			return fmt.Errorf("failed to open storage: %w", err)
		}
		logger.Debug("storage opened", "backend", storeCfg.GetBackend(), "dir", storeCfg.GetDataDir())

		trk = tracker.New(repo, tracker.WithRemote(apiClient), tracker.WithLogger(logger))
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if repo != nil {
			err := repo.Close()
			repo = nil
			trk = nil
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default ~/.local/share/kcal)")
	rootCmd.PersistentFlags().StringVar(&flagBackend, "backend", "", "storage backend: sqlite or markdown")
	rootCmd.PersistentFlags().StringVar(&flagAPIURL, "api-url", "", "API service base URL")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")
}

// remoteError turns an API failure into the message shown to the user.
func remoteError(action string, err error) error {
	return fmt.Errorf("%s: %s", action, api.UserMessage(err))
}

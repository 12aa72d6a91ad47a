// ABOUTME: CLI command for running a local stand-in for the API service.
// ABOUTME: Serves login, registration, meals, analysis, and chat in memory.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/gin-gonic/gin"
	"github.com/harperreed/kcal/internal/devserver"
	"github.com/spf13/cobra"
)

// EnvDevserverSecret supplies the JWT signing secret.
const EnvDevserverSecret = "KCAL_DEVSERVER_SECRET"

var (
	devserverAddr   string
	devserverSecret string
)

var devserverCmd = &cobra.Command{
	Use:   "devserver",
	Short: "Run a local development API server",
	Long: `Run an in-memory server that speaks the kcal API for local development.

Accounts and meals live in memory and are lost on exit. Photo analysis
returns a deterministic food for any JPEG, and the chat endpoint answers
from the calorie figures in the prompt.

EXAMPLES:

  kcal devserver --secret dev-secret
  KCAL_API_BASE_URL=http://localhost:8000 kcal register me@example.com`,
	RunE: func(cmd *cobra.Command, args []string) error {
		secret := devserverSecret
		if secret == "" {
			secret = os.Getenv(EnvDevserverSecret)
		}
		if secret == "" {
			return fmt.Errorf("a signing secret is required (--secret or %s)", EnvDevserverSecret)
		}

		if !flagVerbose {
			gin.SetMode(gin.ReleaseMode)
		}
		srv, err := devserver.New(devserver.Options{Secret: []byte(secret), Logger: logger})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		color.Green("✓ Listening on %s", devserverAddr)
		return srv.Run(ctx, devserverAddr)
	},
}

func init() {
	devserverCmd.Flags().StringVar(&devserverAddr, "addr", ":8000", "listen address")
	devserverCmd.Flags().StringVar(&devserverSecret, "secret", "", "JWT signing secret")
	rootCmd.AddCommand(devserverCmd)
}

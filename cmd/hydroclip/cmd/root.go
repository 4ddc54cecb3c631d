package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"hydroclip/lib/configutil"
	configlibsql "hydroclip/lib/configutil/libsql"
	"hydroclip/lib/geoapi"
	"hydroclip/lib/telemetry"
	"hydroclip/services/basinexport"
	"hydroclip/services/basinexport/db"

	"github.com/spf13/cobra"
)

type PlatformConfig struct {
	BaseUrl  string `json:"base_url"`
	Project  string `json:"project"`
	ClientId string `json:"client_id"`
	Scope    string `json:"scope"`
	// where the device-flow token is cached, defaults to
	// <user config dir>/hydroclip/token.json
	TokenFile string `json:"token_file"`
}

type Config struct {
	Platform PlatformConfig          `json:"platform"`
	Database configlibsql.Struct     `json:"database"`
	Basins   basinexport.Config      `json:"basins"`
	Email    basinexport.EmailConfig `json:"email"`
	// seconds between polls for the watch command and exportwatchd
	WatchIntervalSeconds int `json:"watch_interval_seconds"`
}

var config Config
var client *geoapi.Client
var database *sql.DB
var service basinexport.Service
var tel telemetry.Telemetry

var debug bool

var rootCmd = &cobra.Command{
	Use:   "hydroclip",
	Short: "hydroclip selects watershed boundaries, clips a DEM to them, and exports the results through the hosted geospatial platform.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(debug)
		var err error
		tel, err = telemetry.SetupFromEnv(cmd.Context(), "hydroclip")
		if err != nil {
			return err
		}

		config, err = configutil.ReadRecursively[Config]("hydroclip.json5")
		if err != nil {
			return fmt.Errorf("failed to read hydroclip.json5: %w", err)
		}
		if config.Platform.TokenFile == "" {
			configDir, err := os.UserConfigDir()
			if err != nil {
				return err
			}
			config.Platform.TokenFile = filepath.Join(configDir, "hydroclip", "token.json")
		}

		client, err = newClient(cmd.Context())
		if err != nil {
			return err
		}

		database, err = config.Database.OpenDB(db.Schema)
		if err != nil {
			return fmt.Errorf("failed to open job manifest db: %w", err)
		}

		service, err = basinexport.NewService(client, database, config.Basins)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if database != nil {
			database.Close()
		}
		// flushes any buffered spans before the process exits
		tel.Shutdown(cmd.Context())
	},
}

func newClient(ctx context.Context) (*geoapi.Client, error) {
	opts := geoapi.ClientOptions{
		BaseUrl: config.Platform.BaseUrl,
		Project: config.Platform.Project,
	}
	token, err := geoapi.LoadCachedToken(config.Platform.TokenFile)
	if err == nil {
		opts.Token = &token
	}
	// a missing or expired token is fine here, `login` creates one
	// and every other command fails with the platform's
	// UNAUTHENTICATED error
	return geoapi.NewClient(ctx, opts)
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

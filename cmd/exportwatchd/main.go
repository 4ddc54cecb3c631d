package main

import (
	"os"
	"path/filepath"
	"time"

	"hydroclip/lib/configutil"
	configlibsql "hydroclip/lib/configutil/libsql"
	"hydroclip/lib/geoapi"
	"hydroclip/lib/serviceutil"
	"hydroclip/lib/telemetry"
	"hydroclip/services/basinexport"
	"hydroclip/services/basinexport/db"
)

type Config struct {
	Platform struct {
		BaseUrl   string `json:"base_url"`
		Project   string `json:"project"`
		TokenFile string `json:"token_file"`
	} `json:"platform"`
	Database             configlibsql.Struct     `json:"database"`
	Basins               basinexport.Config      `json:"basins"`
	Email                basinexport.EmailConfig `json:"email"`
	WatchIntervalSeconds int                     `json:"watch_interval_seconds"`
}

func main() {
	ctx := serviceutil.SignalContext()

	telemetry.InitSlog(false)
	tel, err := telemetry.SetupFromEnv(ctx, "exportwatchd")
	if err != nil {
		serviceutil.Fatal("failed to setup telemetry", err)
	}
	defer tel.Shutdown(ctx)
	telemetry.InstrumentPerfStats(ctx)

	config, err := configutil.ReadRecursively[Config]("hydroclip.json5")
	if err != nil {
		serviceutil.Fatal("failed to read hydroclip.json5", err)
	}
	if config.Platform.TokenFile == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			serviceutil.Fatal("failed to resolve user config dir", err)
		}
		config.Platform.TokenFile = filepath.Join(configDir, "hydroclip", "token.json")
	}

	token, err := geoapi.LoadCachedToken(config.Platform.TokenFile)
	if err != nil {
		serviceutil.Fatal("no usable cached token, run `hydroclip login` first", err)
	}

	client, err := geoapi.NewClient(ctx, geoapi.ClientOptions{
		BaseUrl: config.Platform.BaseUrl,
		Project: config.Platform.Project,
		Token:   &token,
	})
	if err != nil {
		serviceutil.Fatal("failed to create platform client", err)
	}

	database, err := config.Database.OpenDB(db.Schema)
	if err != nil {
		serviceutil.Fatal("failed to open job manifest db", err)
	}
	defer database.Close()

	service, err := basinexport.NewService(client, database, config.Basins)
	if err != nil {
		serviceutil.Fatal("failed to create service", err)
	}

	watcher, err := basinexport.NewWatcher(
		service,
		basinexport.NewNotifier(config.Email),
		time.Duration(config.WatchIntervalSeconds)*time.Second,
	)
	if err != nil {
		serviceutil.Fatal("failed to create watcher", err)
	}
	watcher.Run(ctx)
}

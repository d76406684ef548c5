package main

import (
	"embed"
	"flag"
	"os"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/logger"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"github.com/revden/webdeck/internal/config"
	"github.com/revden/webdeck/internal/logging"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	configPath := flag.String("config", config.DefaultPath(), "path to config.toml")
	flag.Parse()

	// Detect development mode
	isDev := os.Getenv("WAILS_DEV") != "" || Version == "0.1.0-dev"
	logging.SetVerbose(isDev)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Warnf("%v, using defaults", err)
		cfg = config.Defaults(config.DefaultDataDir())
	}
	if path, err := logging.OpenFile(cfg.DataDir()); err != nil {
		log.Warnf("debug log disabled: %v", err)
	} else {
		log.Debugf("debug log at %s", path)
	}
	defer logging.Close()

	// Create an instance of the app structure
	app := NewApp(cfg)

	logLevel := logger.INFO
	if isDev {
		logLevel = logger.DEBUG
	}

	err = wails.Run(&options.App{
		Title:  cfg.Shell.AppName,
		Width:  1280,
		Height: 800,
		// No application menu.
		Menu: nil,
		AssetServer: &assetserver.Options{
			Assets:  assets,
			Handler: app.surface.Handler(),
		},
		BackgroundColour: &options.RGBA{R: 27, G: 38, B: 54, A: 1},
		OnStartup:        app.startup,
		OnDomReady:       app.domReady,
		OnBeforeClose:    app.beforeClose,
		OnShutdown:       app.shutdown,
		Bind: []interface{}{
			app,
		},
		Logger:             logging.Wails(),
		LogLevel:           logLevel,
		LogLevelProduction: logger.ERROR,
		// Enable DevTools in development mode
		Debug: options.Debug{
			OpenInspectorOnStartup: isDev,
		},
	})

	if err != nil {
		log.Errorf("Error: %v", err)
	}
}

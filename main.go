// Command boxjoint-desktop is the desktop editor: a Wails window whose
// frontend edits box-joint designs and draws the meshes App returns.
package main

import (
	"embed"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"go.uber.org/zap"

	"github.com/chazu/boxjoint/internal/config"
	"github.com/chazu/boxjoint/internal/logging"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	v := config.New()
	fs := pflag.NewFlagSet("boxjoint-desktop", pflag.ExitOnError)
	cfgFile := fs.String("config", "", "config file (yaml, toml or json)")
	if err := config.BindFlags(v, fs); err != nil {
		panic(err)
	}
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.Load(v, *cfgFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	app := NewApp(cfg, logger)

	err = wails.Run(&options.App{
		Title:  "boxjoint",
		Width:  1280,
		Height: 800,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour: &options.RGBA{R: 30, G: 30, B: 30, A: 1},
		OnStartup:        app.startup,
		Bind: []interface{}{
			app,
		},
	})
	if err != nil {
		logger.Fatal("wails exited", zap.Error(err))
	}
}

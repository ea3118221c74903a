// Package main provides the entry point for the Image Compositor application.
package main

import (
	"context"

	"image-compositor/internal/app"
	"image-compositor/internal/config"
	"image-compositor/internal/image"
	"image-compositor/internal/version"
	"image-compositor/ui/mainwindow"

	fyneapp "fyne.io/fyne/v2/app"
	"github.com/kpango/glg"
)

const appID = "io.github.image-compositor"

func main() {
	cfg, err := config.Load()
	if err != nil {
		glg.Fatalf("Config: %v", err)
	}
	cfg.ApplyLogLevel()
	glg.Infof("Starting %s %s", cfg.Window.Title, version.String())
	glg.Debugf("Config: export.dir=%s interpolation=%s keep_ratio=%v",
		cfg.Export.Dir, cfg.Interpolation(), cfg.Transform.KeepRatio)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fyneApp := fyneapp.NewWithID(appID)
	fyneApp.Settings().SetTheme(&app.CompositorTheme{})

	opts := app.Options{
		KeepRatio:     cfg.Transform.KeepRatio,
		Interpolation: cfg.Interpolation(),
	}
	if cfg.Cache.TTL > 0 {
		opts.Cache = image.NewDecodeCache(cfg.Cache.TTL)
	}
	comp := app.NewCompositor(opts)

	win := mainwindow.New(ctx, fyneApp, comp, cfg)
	win.SetOnClosed(func() {
		cancel()
		comp.Wait()
		glg.Info("Window closed")
	})
	win.ShowAndRun()
}

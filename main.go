package main

import (
	"fmt"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"github.com/ytget/mosaic-client/internal/client"
	"github.com/ytget/mosaic-client/internal/config"
	"github.com/ytget/mosaic-client/internal/logger"
	"github.com/ytget/mosaic-client/internal/platform"
	"github.com/ytget/mosaic-client/internal/preview"
	"github.com/ytget/mosaic-client/internal/result"
	"github.com/ytget/mosaic-client/internal/selection"
	"github.com/ytget/mosaic-client/internal/submit"
	"github.com/ytget/mosaic-client/internal/ui"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

const (
	AppID   = "com.ytget.mosaic-client"
	AppName = "Photo Mosaic"
)

func main() {
	settings, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewConsoleLogger(logger.ParseLevel(settings.GetLogLevel()))
	log.Info("main", "starting", map[string]interface{}{
		"version": version,
		"api_url": settings.GetAPIBaseURL(),
	})
	if !settings.HasAPIBaseURL() {
		log.Warning("main", "mosaic service URL is not set, submissions will fail", nil)
	}

	tempDir := settings.GetTempDirectory()
	if err := platform.CreateDirectoryIfNotExists(tempDir); err != nil {
		log.Error("main", fmt.Errorf("ensure temp dir: %w", err), map[string]interface{}{"dir": tempDir})
	}

	// Initialize services
	store := selection.NewStore(preview.NewGenerator(log), log)
	svc := client.New(settings.GetAPIBaseURL(), log)
	holder := result.NewHolder(tempDir, log)
	ctrl := submit.NewController(store, svc, holder,
		submit.WithProgressInterval(settings.GetProgressInterval()),
		submit.WithLogger(log),
	)
	defer ctrl.Close()

	// Create new Fyne app
	myApp := app.NewWithID(AppID)
	myApp.Settings().SetTheme(ui.NewMosaicTheme())

	myWindow := myApp.NewWindow(fmt.Sprintf("%s v%s", AppName, version))
	myWindow.Resize(fyne.NewSize(ui.WindowWidth, ui.WindowHeight))

	rootUI := ui.NewRootUI(myWindow, myApp, ctrl, svc, settings, log)
	defer rootUI.Close()

	myWindow.ShowAndRun()
	log.Info("main", "exiting", nil)
}

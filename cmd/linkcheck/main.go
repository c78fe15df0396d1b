// Package main is the linkcheck command.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/linkcheck/internal/adapters/driven/config/file"
	"github.com/custodia-labs/linkcheck/internal/adapters/driven/report"
	"github.com/custodia-labs/linkcheck/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/linkcheck/internal/adapters/driving/cli"
	"github.com/custodia-labs/linkcheck/internal/core/services"
	"github.com/custodia-labs/linkcheck/internal/encoding"
	"github.com/custodia-labs/linkcheck/internal/extractors"
	"github.com/custodia-labs/linkcheck/internal/logger"
	"github.com/custodia-labs/linkcheck/internal/validator"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.SetServiceFactory(newServices)

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

// newServices wires the adapters rooted at dir, or ~/.linkcheck when dir is empty.
func newServices(dir string) (*cli.Services, error) {
	if dir == "" {
		var err error
		if dir, err = file.DefaultDir(); err != nil {
			return nil, err
		}
	}

	// 1. Settings
	configStore, err := file.NewConfigStore(dir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		logger.Warn("Invalid settings in %s: %v", configStore.Path(), err)
	}

	// 2. Run history
	store, err := sqlite.NewStore(filepath.Join(dir, "data"))
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}

	// 3. Validation pipeline
	validationService := services.NewValidationService(
		extractors.NewDefaultRegistry(encoding.NewResolver()),
		validator.New(),
		store.RunStore(),
		*settings,
	)

	return &cli.Services{
		Validation: validationService,
		Settings:   settingsService,
		Reports:    report.NewDefaultRegistry(),
		Close:      store.Close,
	}, nil
}

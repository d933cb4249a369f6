package entities

import (
	"go.uber.org/dig"
)

// SettingsLoader loads the settings at path, auto-detecting the file when path is empty.
type SettingsLoader func(path string) (*Settings, error)

// RegisterProviders registers all entity providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Settings depend on the --config flag, so controllers receive a loader
	if err := container.Provide(func() SettingsLoader {
		return LoadSettings
	}); err != nil {
		return err
	}

	return nil
}

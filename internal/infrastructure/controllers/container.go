package controllers

import (
	"go.uber.org/dig"

	"github.com/rios0rios0/lockbump/internal/domain/entities"
)

// RegisterProviders registers all controller providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register controller constructors
	if err := container.Provide(NewUpdateController); err != nil {
		return err
	}
	if err := container.Provide(NewSanitizeController); err != nil {
		return err
	}
	if err := container.Provide(NewInspectController); err != nil {
		return err
	}
	if err := container.Provide(NewControllers); err != nil {
		return err
	}

	return nil
}

// NewControllers aggregates all controllers into a slice for the AppInternal.
func NewControllers(
	updateController *UpdateController,
	sanitizeController *SanitizeController,
	inspectController *InspectController,
) *[]entities.Controller {
	return &[]entities.Controller{
		updateController,
		sanitizeController,
		inspectController,
	}
}

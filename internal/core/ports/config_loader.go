package ports

import "go.trai.ch/witshim/internal/core/domain"

// ConfigLoader defines the interface for loading the witshim configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load finds witshim.yaml at or above cwd and returns the resolved configuration.
	// Defaults are returned when no file exists.
	Load(cwd string) (domain.Config, error)

	// LoadFile reads the configuration from an explicit path.
	LoadFile(configPath string) (domain.Config, error)
}

// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/witshim/internal/adapters/cas"
	_ "go.trai.ch/witshim/internal/adapters/config"
	_ "go.trai.ch/witshim/internal/adapters/fs"
	_ "go.trai.ch/witshim/internal/adapters/lock"
	_ "go.trai.ch/witshim/internal/adapters/logger"
	_ "go.trai.ch/witshim/internal/adapters/shell"
	_ "go.trai.ch/witshim/internal/adapters/telemetry"
	// Register app nodes.
	_ "go.trai.ch/witshim/internal/app"
)

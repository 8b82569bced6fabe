// main.go

package main

import (
	"os"

	"go.uber.org/zap"

	"github.com/infraops/invreporter/cmd"
	"github.com/infraops/invreporter/pkg/logger"
	"github.com/infraops/invreporter/pkg/telemetry"
	"github.com/infraops/invreporter/pkg/xerr"
)

func main() {
	log := logger.Init()
	defer logger.Sync(log)

	if err := telemetry.Init("invreporter"); err != nil {
		log.Warn("Telemetry disabled", zap.Error(err))
	}

	err := cmd.Execute(log)

	if shutdownErr := telemetry.Shutdown(); shutdownErr != nil {
		log.Warn("Telemetry flush failed", zap.Error(shutdownErr))
	}

	os.Exit(xerr.ExitCode(err))
}

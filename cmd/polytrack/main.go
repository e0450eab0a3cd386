package main

import (
	"context"
	"errors"
	"os"

	"github.com/sreshtalluri/polyratings-data-collection/cmd/polytrack/commands"
	"github.com/sreshtalluri/polyratings-data-collection/lib/serviceutil"
	"github.com/sreshtalluri/polyratings-data-collection/lib/telemetry"
)

func main() {
	ctx := serviceutil.SignalContext()

	tel, err := telemetry.SetupFromEnv(ctx, "polytrack")
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		serviceutil.Fatal("failed to setup telemetry", err)
	}
	defer tel.Shutdown(context.Background())

	commands.ExecuteContext(ctx)
}

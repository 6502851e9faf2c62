package main

import (
	"context"

	"mangarank/cmd/mangarank/commands"
	"mangarank/lib/telemetry"
)

func main() {
	telemetry.SetupFromEnv(context.Background(), "mangarank")
	commands.ExecuteContext(context.Background())
}

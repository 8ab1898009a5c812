package main

import (
	"context"
	"os"

	"github.com/mpyw/updater/internal/cli/commands"
	"github.com/mpyw/updater/internal/cli/output"
)

func main() {
	if err := commands.MakeApp(os.Args).Run(context.Background(), os.Args); err != nil {
		output.Error(os.Stderr, "%v", err)
		os.Exit(1)
	}
}

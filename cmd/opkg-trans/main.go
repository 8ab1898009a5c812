package main

import (
	"context"
	"os"

	"github.com/mpyw/updater/internal/cli/bootstrap"
	"github.com/mpyw/updater/internal/cli/output"
	"github.com/mpyw/updater/internal/cli/trans"
)

func main() {
	env, err := bootstrap.New(os.Args, "")
	if err != nil {
		output.Error(os.Stderr, "%v", err)
		os.Exit(1)
	}

	code := trans.NewRunner(env).Run(context.Background(), os.Args[1:])
	env.Close()
	os.Exit(code)
}

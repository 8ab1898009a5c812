// Package commands provides the umbrella command-line interface of the updater suite.
package commands

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"github.com/urfave/cli/v3"

	"github.com/mpyw/updater/internal/cli/bootstrap"
	"github.com/mpyw/updater/internal/cli/pkgupdate"
	"github.com/mpyw/updater/internal/cli/trans"
	"github.com/mpyw/updater/internal/config"
)

// Version of the updater suite.
const Version = "0.1.0"

// EnvFactory builds the collaborators of one tool run.
type EnvFactory func(argv []string, configPath string) (*bootstrap.Env, error)

// Tool runs one tool of the suite and returns its exit code.
type Tool func(ctx context.Context, env *bootstrap.Env, args []string) int

// AppOption configures MakeApp.
type AppOption func(*app)

func withEnvFactory(f EnvFactory) AppOption {
	return func(a *app) {
		a.newEnv = f
	}
}

type app struct {
	argv   []string
	newEnv EnvFactory
}

// MakeApp creates the umbrella command. argv is the full process argument
// vector; it is what a re-executed process receives.
func MakeApp(argv []string, opts ...AppOption) *cli.Command {
	a := &app{argv: argv, newEnv: bootstrap.New}
	for _, opt := range opts {
		opt(a)
	}

	return &cli.Command{
		Name:    "updater",
		Usage:   "Update packages from a top level configuration or run raw transactions",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the updater configuration file",
				Value:   config.DefaultPath,
				Sources: cli.EnvVars(config.EnvConfig),
			},
		},
		Commands: []*cli.Command{
			a.toolCommand("pkgupdate", "Run an update from a top level configuration", "[OPTION]... TOP_LEVEL_CONFIG", runPkgupdate),
			a.toolCommand("opkg-trans", "Install or remove packages, recover or abort the journal", "[OPTION]...", runTrans),
		},
		CommandNotFound: func(_ context.Context, cmd *cli.Command, command string) {
			_ = cli.ShowAppHelp(cmd)
			w := lo.CoalesceOrEmpty(cmd.Root().ErrWriter, cmd.Root().Writer)
			_, _ = fmt.Fprintf(w, "\nCommand not found: %s\n", command)
		},
	}
}

// toolCommand forwards all arguments untouched so the tool's own grammar applies.
func (a *app) toolCommand(name, usage, argsUsage string, tool Tool) *cli.Command {
	return &cli.Command{
		Name:            name,
		Usage:           usage,
		ArgsUsage:       argsUsage,
		SkipFlagParsing: true,
		HideHelp:        true,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			env, err := a.newEnv(a.argv, cmd.Root().String("config"))
			if err != nil {
				return err
			}
			defer env.Close()

			if code := tool(ctx, env, cmd.Args().Slice()); code != 0 {
				return cli.Exit("", code)
			}

			return nil
		},
	}
}

func runPkgupdate(ctx context.Context, env *bootstrap.Env, args []string) int {
	return pkgupdate.NewRunner(env).Run(ctx, args)
}

func runTrans(ctx context.Context, env *bootstrap.Env, args []string) int {
	return trans.NewRunner(env).Run(ctx, args)
}

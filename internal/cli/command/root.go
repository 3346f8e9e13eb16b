package command

import (
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/meshnode/internal/core/domain"
	"github.com/yndnr/meshnode/internal/infra/buildinfo"
)

// App creates the CLI application.
func App() *cli.App {
	app := &cli.App{
		Name:     "meshnode",
		Usage:    "Distributed-systems workload node speaking line-delimited JSON on stdio",
		Version:  buildinfo.String(),
		Flags:    globalFlags(),
		Commands: workloadCommands(),
		Action: func(c *cli.Context) error {
			name := c.String("workload")
			if name == "" {
				_ = cli.ShowAppHelp(c)
				return domain.ErrUnknownWorkload.WithDetails("no workload selected")
			}
			wl, ok := lookupWorkload(name)
			if !ok {
				return domain.ErrUnknownWorkload.WithDetailsf("%q (known: %s)", name, strings.Join(workloadNames(), ", "))
			}
			return runWorkload(c, wl)
		},
	}

	return app
}

func workloadCommands() []*cli.Command {
	var cmds []*cli.Command
	for _, w := range workloads() {
		cmds = append(cmds, &cli.Command{
			Name:  w.name,
			Usage: w.usage,
			Flags: w.flags,
			Action: func(c *cli.Context) error {
				return runWorkload(c, w)
			},
		})
	}
	return cmds
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "workload",
			Aliases: []string{"w"},
			Usage:   "Workload to run when no subcommand is given",
			EnvVars: []string{"MESHNODE_WORKLOAD"},
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to a YAML configuration file",
			EnvVars: []string{"MESHNODE_CONFIG"},
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error",
		},
		&cli.StringFlag{
			Name:  "log-format",
			Usage: "Log format: json, text",
		},
		&cli.DurationFlag{
			Name:  "gossip-interval",
			Usage: "Period between gossip ticks",
		},
		&cli.IntFlag{
			Name:  "queue-capacity",
			Usage: "Event queue capacity",
		},
		&cli.StringFlag{
			Name:  "tick-overflow",
			Usage: "Tick policy when the queue is full: drop or block",
		},
		&cli.IntFlag{
			Name:  "max-line-bytes",
			Usage: "Largest accepted inbound line",
		},
		&cli.Float64Flag{
			Name:  "gossip-rate",
			Usage: "Gossip messages per second, 0 for unlimited",
		},
		&cli.IntFlag{
			Name:  "gossip-burst",
			Usage: "Gossip token bucket size",
		},
		&cli.StringFlag{
			Name:  "metrics-addr",
			Usage: "Listen address for /metrics and health endpoints",
		},
	}
}

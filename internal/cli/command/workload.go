package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/meshnode/internal/core/message"
	"github.com/yndnr/meshnode/internal/core/service"
	"github.com/yndnr/meshnode/internal/server/config"
	"github.com/yndnr/meshnode/internal/server/runtime"
)

// workloadSpec describes one runnable workload.
type workloadSpec struct {
	name  string
	usage string
	flags []cli.Flag
	build func(cfg *config.NodeConfig) (runtime.Workload, error)
}

func workloads() []workloadSpec {
	return []workloadSpec{
		{
			name:  "echo",
			usage: "Reply to every echo with the same payload",
			build: func(*config.NodeConfig) (runtime.Workload, error) {
				return runtime.Workload{
					Name:     "echo",
					Registry: service.EchoRegistry(),
					NewNode: func(init message.Init, ids *message.Sequence) (runtime.Node, error) {
						return service.NewEchoNode(init, ids), nil
					},
				}, nil
			},
		},
		{
			name:  "unique-ids",
			usage: "Generate globally unique ids without coordination",
			build: func(*config.NodeConfig) (runtime.Workload, error) {
				return runtime.Workload{
					Name:     "unique-ids",
					Registry: service.UniqueIDRegistry(),
					NewNode: func(init message.Init, ids *message.Sequence) (runtime.Node, error) {
						return service.NewUniqueIDNode(init, ids), nil
					},
				}, nil
			},
		},
		{
			name:  "broadcast",
			usage: "Disseminate a grow-only set of integers by gossip",
			flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "gossip-mode",
					Usage: "What each tick sends: delta or full",
				},
			},
			build: func(cfg *config.NodeConfig) (runtime.Workload, error) {
				mode, err := service.ParseGossipMode(cfg.Broadcast.GossipMode)
				if err != nil {
					return runtime.Workload{}, err
				}
				return runtime.Workload{
					Name:     "broadcast",
					Registry: service.BroadcastRegistry(),
					NewNode: func(init message.Init, ids *message.Sequence) (runtime.Node, error) {
						return service.NewBroadcastNode(init, ids, mode), nil
					},
				}, nil
			},
		},
		{
			name:  "counter",
			usage: "Maintain a grow-only counter by state gossip",
			build: func(*config.NodeConfig) (runtime.Workload, error) {
				return runtime.Workload{
					Name:     "counter",
					Registry: service.CounterRegistry(),
					NewNode: func(init message.Init, ids *message.Sequence) (runtime.Node, error) {
						return service.NewCounterNode(init, ids), nil
					},
				}, nil
			},
		},
		{
			name:  "kafka",
			usage: "Serve single-node append-only logs with committed offsets",
			build: func(*config.NodeConfig) (runtime.Workload, error) {
				return runtime.Workload{
					Name:     "kafka",
					Registry: service.KafkaRegistry(),
					NewNode: func(init message.Init, ids *message.Sequence) (runtime.Node, error) {
						return service.NewKafkaNode(init, ids), nil
					},
				}, nil
			},
		},
	}
}

// lookupWorkload finds a workload by name.
func lookupWorkload(name string) (workloadSpec, bool) {
	for _, w := range workloads() {
		if w.name == name {
			return w, true
		}
	}
	return workloadSpec{}, false
}

// workloadNames lists the known workloads in table order.
func workloadNames() []string {
	ws := workloads()
	names := make([]string, len(ws))
	for i, w := range ws {
		names[i] = w.name
	}
	return names
}

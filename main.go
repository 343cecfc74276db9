package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/urfave/cli/v2"
	"k8s.io/klog/v2"
)

var gitCommitSHA = ""

// FlagProfile lets a caller point at an explicit profile path, taking
// precedence over the default discovery order (spec §6).
var FlagProfile = &cli.StringFlag{
	Name:    "profile",
	Usage:   "path to wocprofile.json (overrides the default search order)",
	EnvVars: []string{"WOCREAD_PROFILE"},
}

var FlagJSON = &cli.BoolFlag{
	Name:  "json",
	Usage: "render output as JSON instead of plain text",
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, syscall.SIGTERM, syscall.SIGINT)

		select {
		case <-interrupt:
			fmt.Println()
			klog.Info("received interrupt signal")
			cancel()
		case <-ctx.Done():
		}

		signal.Stop(interrupt)
	}()

	app := &cli.App{
		Name:        "wocread",
		Version:     gitCommitSHA,
		Description: "Read-only query CLI for a sharded, content-addressed World-of-Code style corpus of version-control objects.",
		Before: func(c *cli.Context) error {
			return nil
		},
		Flags: append([]cli.Flag{FlagProfile, FlagJSON}, NewKlogFlagSet()...),
		Commands: []*cli.Command{
			newCmd_Get(),
			newCmd_Show(),
			newCmd_Version(),
		},
	}

	sort.Sort(cli.FlagsByName(app.Flags))
	sort.Sort(cli.CommandsByName(app.Commands))

	if err := app.RunContext(ctx, os.Args); err != nil {
		klog.Fatal(err)
	}
}

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:    "swapctl",
		Version: "0.1.0",
		Usage:   "Command line interface for swapd",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    rpcServerKey,
				Usage:   "overrides the swapd address of the local profile",
				EnvVars: []string{"SWAPCTL_RPCSERVER"},
			},
			&cli.StringFlag{
				Name:    tokenKey,
				Usage:   "overrides the bearer token of the local profile",
				EnvVars: []string{"SWAPCTL_TOKEN"},
			},
			&cli.StringFlag{
				Name:    actorKey,
				Usage:   "overrides the actor id of the local profile",
				EnvVars: []string{"SWAPCTL_ACTOR"},
			},
		},
		Commands: []*cli.Command{
			&config,
			&listswap,
			&getswap,
			&cancelswap,
			&rejectexpired,
			&propose,
			&accept,
			&reject,
			&withdraw,
			&sweeperstatus,
			&addwebhook,
			&removewebhook,
			&listwebhooks,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "[swapctl] %v\n", err)
		os.Exit(1)
	}
}

func printRespJSON(resp interface{}) {
	buf, err := json.MarshalIndent(resp, "", "\t")
	if err != nil {
		fmt.Println("unable to decode response: ", err)
		return
	}
	fmt.Println(string(buf))
}

package main

import (
	"github.com/urfave/cli/v2"
)

var sweeperstatus = cli.Command{
	Name:   "sweeperstatus",
	Usage:  "show the status of the expiration sweeper",
	Action: sweeperStatusAction,
}

func sweeperStatusAction(ctx *cli.Context) error {
	client, err := getClient(ctx)
	if err != nil {
		return err
	}

	var reply map[string]interface{}
	if err := client.Get(ctx.Context, "/v1/sweeper/status", &reply); err != nil {
		return err
	}

	printRespJSON(reply)
	return nil
}

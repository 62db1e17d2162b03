package main

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"
)

var listswap = cli.Command{
	Name:  "listswap",
	Usage: "list one of your bookings for swap",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "booking",
			Usage:    "the id of the booking to list",
			Required: true,
		},
		&cli.DurationFlag{
			Name:  "expiry",
			Usage: "for how long the swap accepts proposals",
			Value: 7 * 24 * time.Hour,
		},
	},
	Action: listSwapAction,
}

var getswap = cli.Command{
	Name:      "getswap",
	Usage:     "show a swap and its proposals",
	ArgsUsage: "<swap id>",
	Action:    getSwapAction,
}

var cancelswap = cli.Command{
	Name:      "cancelswap",
	Usage:     "cancel one of your open swaps",
	ArgsUsage: "<swap id>",
	Action:    swapOperationAction("cancel"),
}

var rejectexpired = cli.Command{
	Name:      "rejectexpired",
	Usage:     "close one of your swaps whose deadline has passed",
	ArgsUsage: "<swap id>",
	Action:    swapOperationAction("reject-expired"),
}

func listSwapAction(ctx *cli.Context) error {
	client, err := getClient(ctx)
	if err != nil {
		return err
	}

	expiresAt := time.Now().Add(ctx.Duration("expiry")).UTC()
	var reply map[string]interface{}
	if err := client.Post(ctx.Context, "/v1/swaps", map[string]string{
		"bookingId": ctx.String("booking"),
		"expiresAt": expiresAt.Format(time.RFC3339),
	}, &reply); err != nil {
		return err
	}

	printRespJSON(reply)
	return nil
}

func getSwapAction(ctx *cli.Context) error {
	swapId, err := idArg(ctx, "swap")
	if err != nil {
		return err
	}
	client, err := getClient(ctx)
	if err != nil {
		return err
	}

	var reply map[string]interface{}
	if err := client.Get(ctx.Context, "/v1/swaps/"+swapId, &reply); err != nil {
		return err
	}

	printRespJSON(reply)
	return nil
}

func swapOperationAction(op string) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		swapId, err := idArg(ctx, "swap")
		if err != nil {
			return err
		}
		client, err := getClient(ctx)
		if err != nil {
			return err
		}

		var reply map[string]interface{}
		if err := client.Post(
			ctx.Context, fmt.Sprintf("/v1/swaps/%s/%s", swapId, op), nil, &reply,
		); err != nil {
			return err
		}

		printRespJSON(reply)
		return nil
	}
}

func idArg(ctx *cli.Context, name string) (string, error) {
	if ctx.NArg() < 1 {
		return "", fmt.Errorf("missing %s id", name)
	}
	return ctx.Args().First(), nil
}

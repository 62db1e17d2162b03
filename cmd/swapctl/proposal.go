package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
)

var propose = cli.Command{
	Name:      "propose",
	Usage:     "make a proposal on a listed swap",
	ArgsUsage: "<swap id>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "source_swap",
			Usage: "the id of one of your swaps offered in exchange",
		},
		&cli.StringFlag{
			Name:  "amount",
			Usage: "the amount of money offered",
			Value: "0",
		},
		&cli.StringFlag{
			Name:  "account",
			Usage: "the account the offered amount is held from",
		},
	},
	Action: proposeAction,
}

var accept = cli.Command{
	Name:      "accept",
	Usage:     "accept a proposal made on one of your swaps",
	ArgsUsage: "<proposal id>",
	Action:    proposalOperationAction("accept"),
}

var reject = cli.Command{
	Name:      "reject",
	Usage:     "reject a proposal, or withdraw it if it's yours",
	ArgsUsage: "<proposal id>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "reason",
			Usage: "why the proposal is rejected",
		},
	},
	Action: proposalOperationAction("reject"),
}

var withdraw = cli.Command{
	Name:      "withdraw",
	Usage:     "withdraw one of your pending proposals",
	ArgsUsage: "<proposal id>",
	Action:    proposalOperationAction("withdraw"),
}

func proposeAction(ctx *cli.Context) error {
	swapId, err := idArg(ctx, "swap")
	if err != nil {
		return err
	}
	amount, err := decimal.NewFromString(ctx.String("amount"))
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	client, err := getClient(ctx)
	if err != nil {
		return err
	}

	var reply map[string]interface{}
	if err := client.Post(
		ctx.Context, fmt.Sprintf("/v1/swaps/%s/proposals", swapId),
		map[string]interface{}{
			"sourceSwapId": ctx.String("source_swap"),
			"amount":       amount,
			"account":      ctx.String("account"),
		}, &reply,
	); err != nil {
		return err
	}

	printRespJSON(reply)
	return nil
}

func proposalOperationAction(op string) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		proposalId, err := idArg(ctx, "proposal")
		if err != nil {
			return err
		}
		client, err := getClient(ctx)
		if err != nil {
			return err
		}

		var body interface{}
		if reason := ctx.String("reason"); len(reason) > 0 {
			body = map[string]string{"reason": reason}
		}

		var reply map[string]interface{}
		if err := client.Post(
			ctx.Context, fmt.Sprintf("/v1/proposals/%s/%s", proposalId, op),
			body, &reply,
		); err != nil {
			return err
		}

		printRespJSON(reply)
		return nil
	}
}

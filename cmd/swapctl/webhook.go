package main

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/urfave/cli/v2"
)

var addwebhook = cli.Command{
	Name:  "addwebhook",
	Usage: "add a webhook registered for some settlement event",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "endpoint",
			Usage:    "the endpoint where to notify the webhook",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "secret",
			Usage: "the eventual secret to authenticate requests",
			Value: "",
		},
		&cli.StringFlag{
			Name:  "topic",
			Usage: "the event for which the webhook gets notified, * for all",
			Value: "*",
		},
	},
	Action: addWebhookAction,
}

var removewebhook = cli.Command{
	Name:      "removewebhook",
	Usage:     "remove a registered webhook",
	ArgsUsage: "<webhook id>",
	Action:    removeWebhookAction,
}

var listwebhooks = cli.Command{
	Name:  "listwebhooks",
	Usage: "list all webhooks registered for some event",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "topic",
			Usage: "the event to filter hooks by",
			Value: "*",
		},
	},
	Action: listWebhooksAction,
}

func addWebhookAction(ctx *cli.Context) error {
	client, err := getClient(ctx)
	if err != nil {
		return err
	}

	var reply struct {
		Id string `json:"id"`
	}
	if err := client.Post(ctx.Context, "/v1/webhooks", map[string]string{
		"topic":    ctx.String("topic"),
		"endpoint": ctx.String("endpoint"),
		"secret":   ctx.String("secret"),
	}, &reply); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("hook id:", reply.Id)
	return nil
}

func removeWebhookAction(ctx *cli.Context) error {
	id, err := idArg(ctx, "webhook")
	if err != nil {
		return err
	}
	client, err := getClient(ctx)
	if err != nil {
		return err
	}

	if err := client.Do(
		ctx.Context, http.MethodDelete, "/v1/webhooks/"+url.PathEscape(id),
		nil, nil,
	); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("webhook removed")
	return nil
}

func listWebhooksAction(ctx *cli.Context) error {
	client, err := getClient(ctx)
	if err != nil {
		return err
	}

	var reply []map[string]interface{}
	if err := client.Get(
		ctx.Context, "/v1/webhooks?topic="+url.QueryEscape(ctx.String("topic")),
		&reply,
	); err != nil {
		return err
	}

	printRespJSON(reply)
	return nil
}

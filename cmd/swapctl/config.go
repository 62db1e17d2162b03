package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/urfave/cli/v2"
)

const (
	rpcServerKey = "rpcserver"
	tokenKey     = "token"
	actorKey     = "actor"

	defaultRPCServer = "http://localhost:9080"
)

var (
	swapctlDataDir = btcutil.AppDataDir("swapctl", false)
	profilePath    = filepath.Join(swapctlDataDir, "profile.json")
)

// profile is the connection setup persisted in the swapctl datadir.
type profile struct {
	RPCServer string `json:"rpcserver"`
	Token     string `json:"token,omitempty"`
	Actor     string `json:"actor,omitempty"`
}

func (p *profile) set(key, value string) error {
	switch key {
	case rpcServerKey:
		p.RPCServer = value
	case tokenKey:
		p.Token = value
	case actorKey:
		p.Actor = value
	default:
		return fmt.Errorf("unknown key %s", key)
	}
	return nil
}

func loadProfile() (*profile, error) {
	buf, err := os.ReadFile(profilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errors.New("profile not found, try 'config init'")
		}
		return nil, err
	}

	p := &profile{}
	if err := json.Unmarshal(buf, p); err != nil {
		return nil, fmt.Errorf("invalid profile %s: %w", profilePath, err)
	}
	return p, nil
}

func (p *profile) save() error {
	if err := os.MkdirAll(swapctlDataDir, 0700); err != nil {
		return err
	}
	buf, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(profilePath, buf, 0600)
}

var config = cli.Command{
	Name:   "config",
	Usage:  "Print the local profile of the swapctl CLI",
	Action: configAction,
	Subcommands: []*cli.Command{
		{
			Name:      "set",
			Usage:     "set a <key> <value> in the local profile",
			ArgsUsage: "<rpcserver|token|actor> <value>",
			Action:    configSetAction,
		},
		{
			Name:   "init",
			Usage:  "create the local profile, overwriting the existing one",
			Action: configInitAction,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  rpcServerKey,
					Usage: "swapd http interface address",
					Value: defaultRPCServer,
				},
				&cli.StringFlag{
					Name:  tokenKey,
					Usage: "bearer token identifying the actor",
				},
				&cli.StringFlag{
					Name:  actorKey,
					Usage: "actor id, used only if swapd runs with auth disabled",
				},
			},
		},
	},
}

func configAction(_ *cli.Context) error {
	p, err := loadProfile()
	if err != nil {
		return err
	}
	if len(p.Token) > 0 {
		p.Token = "********"
	}
	printRespJSON(p)
	return nil
}

func configSetAction(c *cli.Context) error {
	if c.NArg() < 2 {
		return fmt.Errorf("key and value are missing")
	}
	key, value := c.Args().Get(0), c.Args().Get(1)

	p, err := loadProfile()
	if err != nil {
		p = &profile{RPCServer: defaultRPCServer}
	}
	if err := p.set(key, value); err != nil {
		return err
	}
	if err := p.save(); err != nil {
		return err
	}

	fmt.Printf("%s has been set\n", key)
	return nil
}

func configInitAction(c *cli.Context) error {
	p := &profile{
		RPCServer: c.String(rpcServerKey),
		Token:     c.String(tokenKey),
		Actor:     c.String(actorKey),
	}
	if err := p.save(); err != nil {
		return err
	}
	fmt.Printf("profile written to %s\n", profilePath)
	return nil
}

package main

import (
	"fmt"

	"github.com/bushboy/bookingswap-sub023/pkg/util"
	"github.com/urfave/cli/v2"
)

// getClient returns a client for the swapd http interface. Global flags take
// precedence over the local profile, which is optional if they are all set.
func getClient(c *cli.Context) (*util.JSONClient, error) {
	p, err := loadProfile()
	if err != nil {
		if !c.IsSet(rpcServerKey) {
			return nil, err
		}
		p = &profile{}
	}
	for _, key := range []string{rpcServerKey, tokenKey, actorKey} {
		if c.IsSet(key) {
			//nolint
			p.set(key, c.String(key))
		}
	}
	if len(p.RPCServer) <= 0 {
		return nil, fmt.Errorf("address of swapd not set, try 'config init'")
	}

	header := map[string]string{}
	if len(p.Token) > 0 {
		header["Authorization"] = "Bearer " + p.Token
	} else if len(p.Actor) > 0 {
		header["X-Actor-Id"] = p.Actor
	}

	return util.NewJSONClient("swapd", p.RPCServer, 0, header), nil
}

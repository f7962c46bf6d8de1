// Package main is the Neovim remote-plugin host for fittencode.
//
// Neovim spawns the binary over stdio and drives it through
// msgpack-rpc; run it with --manifest fittencode to print the
// registration manifest instead. Configuration comes from
// FITTENCODE_CONFIG and the other FITTENCODE_* variables, since the
// command line belongs to the plugin host machinery.
package main

import (
	"os"

	"github.com/neovim/go-client/nvim/plugin"

	"github.com/cxwx/fittencode.nvim/internal/app"
	"github.com/cxwx/fittencode.nvim/internal/nvimhost"
)

func main() {
	plugin.Main(run)
}

func run(p *plugin.Plugin) error {
	application := app.New(app.Options{
		ConfigPath: os.Getenv("FITTENCODE_CONFIG"),
		Watch:      true,
	})
	return nvimhost.Register(p, application)
}

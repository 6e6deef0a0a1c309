package main

import (
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docsite/cmd/docsite/commands"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/version"
)

func main() {
	cli := &commands.CLI{}
	global := &commands.Global{Out: os.Stdout}

	parser := kong.Parse(cli,
		kong.Name("docsite"),
		kong.Description("Serve a directory of markdown documents over HTTP"),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.Bind(cli),
	)

	if err := parser.Run(global); err != nil {
		errors.NewCLIErrorAdapter(cli.Verbose, global.Logger).HandleError(err)
	}
}

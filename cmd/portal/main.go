package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/wolfeidau/clientportal/cmd/portal/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Debug     bool   `help:"Enable debug mode."`
		LogLevel  string `help:"Override the log level (debug, info, warn, error)." env:"PORTAL_LOG_LEVEL"`
		Version   kong.VersionFlag
		Serve     commands.ServeCmd     `cmd:"" help:"Start the portal API server"`
		Migrate   commands.MigrateCmd   `cmd:"" help:"Apply database migrations"`
		Provision commands.ProvisionCmd `cmd:"" help:"Seed missing documents for a client"`
		Resolve   commands.ResolveCmd   `cmd:"" help:"Show which workspaces an identity can open"`
		Token     commands.TokenCmd     `cmd:"" help:"Issue an HS256 access token for local development"`
	}
)

func main() {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, LogLevel: cli.LogLevel, Version: version})
	cmd.FatalIfErrorf(err)
}

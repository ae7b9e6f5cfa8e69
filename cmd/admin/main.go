package main

import (
	"context"
	"os"

	"github.com/yigit/gradebook/internal/bootstrap"
	"github.com/yigit/gradebook/internal/config"
	"github.com/yigit/gradebook/internal/pkg/logger"
)

func main() {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(config.Path())
	errAndDie(err)

	database, err := bootstrap.OpenDatabase(cfg, lgr)
	errAndDie(err)
	defer database.Close()

	// the schema must exist before any command can read or write accounts
	_, err = bootstrap.Migrate(context.Background(), database, lgr)
	errAndDie(err)

	deps, err := bootstrap.BuildDependencies(cfg, database, lgr)
	errAndDie(err)

	cli := &commandLine{
		cfg:  cfg,
		deps: deps,
		out:  os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error().Err(err).Msg("Admin command failed")
		}
		database.Close()
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal().Err(err).Msg("Admin setup failed")
	}
}

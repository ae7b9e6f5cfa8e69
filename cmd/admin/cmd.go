package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/yigit/gradebook/internal/bootstrap"
	"github.com/yigit/gradebook/internal/config"
	"github.com/yigit/gradebook/internal/pkg/logger"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp           = errors.New("help provided")
	errExportDisabled = errors.New("export is disabled (export.enabled=false)")
)

type commandLine struct {
	cfg  *config.Config
	deps *bootstrap.Dependencies
	out  io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  adduser -username USERNAME [-email EMAIL] [-admin] [-password PASSWORD] - create or reset an account")
	fmt.Fprintln(cli.out, "  migrate - apply pending migrations and seed default data")
	fmt.Fprintln(cli.out, "  export - rewrite the students and users export files")
	fmt.Fprintln(cli.out, "  stats - print the stored statistics snapshot")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	ctx := context.Background()

	switch args[1] {
	case "adduser":
		addUserCmd := flag.NewFlagSet("adduser", flag.ContinueOnError)
		addUserCmd.SetOutput(cli.out)
		username := addUserCmd.String("username", "", "The account username.")
		email := addUserCmd.String("email", "", "Optional email address.")
		isAdmin := addUserCmd.Bool("admin", false, "Grant the admin role.")
		password := addUserCmd.String("password", "", "The password. Prompted when omitted.")
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *username == "" {
			addUserCmd.Usage()
			return errHelp
		}

		pwd := *password
		if pwd == "" {
			fmt.Fprint(cli.out, "Enter password:")
			raw, err := readPasswordFunc(int(os.Stdin.Fd()))
			fmt.Fprintln(cli.out)
			if err != nil {
				return err
			}
			pwd = string(raw)
		}
		if pwd == "" {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(ctx, *username, *email, pwd, *isAdmin)

	case "migrate":
		applied, err := bootstrap.Migrate(ctx, cli.deps.DB, logger.Component("admin"))
		if err != nil {
			return err
		}
		if err := bootstrap.RunSeed(ctx, cli.cfg, cli.deps); err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "%d migration(s) applied, seed complete\n", applied)
		return nil

	case "export":
		if cli.deps.Exporter == nil {
			return errExportDisabled
		}
		if err := cli.deps.Exporter.ExportAll(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cli.out, "export files written")
		return nil

	case "stats":
		return cli.printStats(ctx)

	default:
		cli.printUsage()
		return errHelp
	}
}

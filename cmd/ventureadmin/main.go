// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is ventureadmin, a command-line admin panel for the
// Venture Club collections API. It drives the same store the web panel
// uses: validation before requests, confirmation before deletes and
// optimistic reorders.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ventureclub/internal/admin"
	"ventureclub/internal/client"
)

// app holds the state shared by every subcommand.
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	cfg     *viper.Viper
	cfgFile string
	verbose bool
	yes     bool

	client *client.Client
	store  *admin.Store
}

func main() {
	a := &app{in: os.Stdin, out: os.Stdout, errOut: os.Stderr}
	if err := newRootCmd(a).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "ventureadmin",
		Short: "Manage Venture Club site content",
		Long: `ventureadmin edits the blogs, members, events, gallery and
announcements collections of a Venture Club site.

Configuration is read from ~/.ventureadmin/config.yaml and can be
overridden with VENTUREADMIN_SERVER_URL, VENTUREADMIN_PASSWORD or flags.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.connect,
	}
	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: ~/.ventureadmin/config.yaml)")
	flags.String("server", "", "API server URL")
	flags.String("password", "", "admin password")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log requests and store activity")

	root.AddCommand(
		newListCmd(a),
		newGetCmd(a),
		newAddCmd(a),
		newUpdateCmd(a),
		newDeleteCmd(a),
		newReorderCmd(a),
		newMoveCmd(a),
		newUploadCmd(a),
		newDeleteAssetCmd(a),
		newStatusCmd(a),
	)
	return root
}

// connect loads configuration, logs in when a password is configured and
// builds the store.
func (a *app) connect(cmd *cobra.Command, _ []string) error {
	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(a.errOut, &slog.HandlerOptions{Level: level})))

	v, err := loadConfig(a.cfgFile)
	if err != nil {
		return err
	}
	if err := v.BindPFlag(cfgKeyServerURL, cmd.Root().PersistentFlags().Lookup("server")); err != nil {
		return fmt.Errorf("bind server flag: %w", err)
	}
	if err := v.BindPFlag(cfgKeyPassword, cmd.Root().PersistentFlags().Lookup("password")); err != nil {
		return fmt.Errorf("bind password flag: %w", err)
	}
	a.cfg = v

	alerter := &writerAlerter{w: a.errOut}
	c, err := client.New(v.GetString(cfgKeyServerURL), client.WithAlerter(alerter))
	if err != nil {
		return err
	}
	a.client = c

	if password := v.GetString(cfgKeyPassword); password != "" {
		if !c.Login(cmd.Context(), password) {
			return fmt.Errorf("login to %s failed", v.GetString(cfgKeyServerURL))
		}
	}

	a.store = admin.New(c, a.confirmer(), alerter)
	return nil
}

// confirmer asks on the terminal unless --yes was given.
func (a *app) confirmer() admin.Confirmer {
	if a.yes {
		return alwaysConfirm{}
	}
	return &promptConfirmer{in: a.in, out: a.errOut}
}

// ctx returns the command context, or Background when run outside Execute.
func ctx(cmd *cobra.Command) context.Context {
	if c := cmd.Context(); c != nil {
		return c
	}
	return context.Background()
}

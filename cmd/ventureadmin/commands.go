// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"ventureclub/internal/admin"
	"ventureclub/internal/models"
)

var errNotApplied = errors.New("not applied")

// collectionArg parses the collection name in args[0].
func collectionArg(args []string) (models.Collection, error) {
	c, err := models.ParseCollection(args[0])
	if err != nil {
		return "", fmt.Errorf("%w (one of blogs, members, events, gallery, announcements)", err)
	}
	return c, nil
}

// load fetches every collection and fails when c could not be read.
func (a *app) load(cmd *cobra.Command, c models.Collection) error {
	a.store.FetchAll(ctx(cmd))
	if !a.store.Loaded(c) {
		return fmt.Errorf("could not load %s", c)
	}
	return nil
}

func newListCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list <collection>",
		Short: "List the items of a collection in display order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := collectionArg(args)
			if err != nil {
				return err
			}
			if err := a.load(cmd, c); err != nil {
				return err
			}
			items := a.store.Items(c)
			if asJSON {
				return printJSON(a.out, items)
			}
			return printTable(a.out, items)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print items as JSON")
	return cmd
}

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <collection> <id>",
		Short: "Print one item as JSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := collectionArg(args)
			if err != nil {
				return err
			}
			doc, ok := a.client.FetchItem(ctx(cmd), c, args[1])
			if !ok {
				return fmt.Errorf("could not fetch %s/%s", c, args[1])
			}
			return printJSON(a.out, doc)
		},
	}
}

// fieldFlags collects record attributes from --set and --json.
type fieldFlags struct {
	set  []string
	json string
}

func (f *fieldFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&f.set, "set", nil, "attribute as key=value (repeatable)")
	cmd.Flags().StringVar(&f.json, "json", "", "attributes as a JSON object, or @file")
}

// fields merges --json then --set into one record.
func (f *fieldFlags) fields() (models.Fields, error) {
	out := models.Fields{}
	if f.json != "" {
		raw := []byte(f.json)
		if path, ok := strings.CutPrefix(f.json, "@"); ok {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", path, err)
			}
			raw = data
		}
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("parse --json: %w", err)
		}
	}
	for _, kv := range f.set {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("--set %q: want key=value", kv)
		}
		v, err := parseValue(value)
		if err != nil {
			return nil, fmt.Errorf("--set %s: %w", key, err)
		}
		out[key] = v
	}
	if len(out) == 0 {
		return nil, errors.New("no attributes given, use --set or --json")
	}
	return out, nil
}

// parseValue keeps plain text as a string so titles like "2026" stay
// strings. Booleans, null and YAML flow lists or maps are decoded.
func parseValue(s string) (any, error) {
	switch s {
	case "true":
		return true, nil
	case "false":
		return false, nil
	case "null":
		return nil, nil
	}
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "[") && !strings.HasPrefix(trimmed, "{") {
		return s, nil
	}
	var v any
	if err := yaml.Unmarshal([]byte(trimmed), &v); err != nil {
		return nil, err
	}
	return v, nil
}

func newAddCmd(a *app) *cobra.Command {
	var ff fieldFlags
	cmd := &cobra.Command{
		Use:   "add <collection>",
		Short: "Create an item",
		Long: `Add validates the attributes and creates an item.

Example:
  ventureadmin add announcements --set message="Applications open" --set dateTBA=true
  ventureadmin add gallery --set 'images=[{url: https://cdn.example/a.jpg}]'
  ventureadmin add blogs --json @post.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := collectionArg(args)
			if err != nil {
				return err
			}
			fields, err := ff.fields()
			if err != nil {
				return err
			}
			if !a.store.AddItem(ctx(cmd), c, fields) {
				return fmt.Errorf("add to %s: %w", c, errNotApplied)
			}
			fmt.Fprintf(a.out, "Added item to %s (%d items)\n", c, len(a.store.Items(c)))
			return nil
		},
	}
	ff.register(cmd)
	return cmd
}

func newUpdateCmd(a *app) *cobra.Command {
	var ff fieldFlags
	cmd := &cobra.Command{
		Use:   "update <collection> <id>",
		Short: "Change attributes of an item",
		Long: `Update merges the given attributes into an item. Attributes not
named are left alone; --set key=null removes one.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := collectionArg(args)
			if err != nil {
				return err
			}
			fields, err := ff.fields()
			if err != nil {
				return err
			}
			if !a.store.UpdateItem(ctx(cmd), c, args[1], fields) {
				return fmt.Errorf("update %s/%s: %w", c, args[1], errNotApplied)
			}
			fmt.Fprintf(a.out, "Updated %s/%s\n", c, args[1])
			return nil
		},
	}
	ff.register(cmd)
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <collection> <id>",
		Short: "Delete an item after confirmation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := collectionArg(args)
			if err != nil {
				return err
			}
			if !a.store.DeleteItem(ctx(cmd), c, args[1]) {
				return fmt.Errorf("delete %s/%s: %w", c, args[1], errNotApplied)
			}
			fmt.Fprintf(a.out, "Deleted %s/%s\n", c, args[1])
			return nil
		},
	}
	cmd.Flags().BoolVarP(&a.yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func newReorderCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <collection> <id>...",
		Short: "Put items in the given order",
		Long: `Reorder moves the named items to the front in the order given.
Items not named keep their relative order after them.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := collectionArg(args)
			if err != nil {
				return err
			}
			if err := a.load(cmd, c); err != nil {
				return err
			}
			seq, err := sequence(a.store.Items(c), args[1:])
			if err != nil {
				return err
			}
			if !a.store.ReorderItems(ctx(cmd), c, seq) {
				return fmt.Errorf("reorder %s: %w", c, errNotApplied)
			}
			return printTable(a.out, a.store.Items(c))
		},
	}
}

// sequence puts the documents named by ids first, then the rest.
func sequence(current []models.Document, ids []string) ([]models.Document, error) {
	byID := make(map[string]models.Document, len(current))
	for _, d := range current {
		byID[d.ID] = d
	}
	seen := make(map[string]bool, len(ids))
	seq := make([]models.Document, 0, len(current))
	for _, id := range ids {
		d, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("no item %q", id)
		}
		if seen[id] {
			return nil, fmt.Errorf("item %q named twice", id)
		}
		seen[id] = true
		seq = append(seq, d)
	}
	for _, d := range current {
		if !seen[d.ID] {
			seq = append(seq, d)
		}
	}
	return seq, nil
}

func newMoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "move <collection> <id> up|down",
		Short:     "Swap an item with its neighbour",
		Args:      cobra.ExactArgs(3),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := collectionArg(args)
			if err != nil {
				return err
			}
			var dir admin.Direction
			switch args[2] {
			case "up":
				dir = admin.Up
			case "down":
				dir = admin.Down
			default:
				return fmt.Errorf("direction %q: want up or down", args[2])
			}
			if err := a.load(cmd, c); err != nil {
				return err
			}
			if !a.store.MoveItem(ctx(cmd), c, args[1], dir) {
				return fmt.Errorf("move %s %s: %w", args[1], args[2], errNotApplied)
			}
			return printTable(a.out, a.store.Items(c))
		},
	}
}

func newUploadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload an image or video and print its URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer f.Close()

			res, ok := a.client.Upload(ctx(cmd), args[0], f)
			if !ok {
				return fmt.Errorf("upload %s: %w", args[0], errNotApplied)
			}
			return printJSON(a.out, res)
		},
	}
}

func newDeleteAssetCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete-asset <url>",
		Short: "Delete an uploaded file from the media host",
		Long: `Delete-asset removes a file uploaded with "upload", and its
thumbnail. Records that still point at the URL are not changed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			confirm := a.confirmer()
			if !confirm.Confirm("Delete " + args[0] + " from the media host? This cannot be undone.") {
				return fmt.Errorf("delete %s: %w", args[0], errNotApplied)
			}
			if !a.client.DeleteAsset(ctx(cmd), args[0]) {
				return fmt.Errorf("delete %s: %w", args[0], errNotApplied)
			}
			fmt.Fprintf(a.out, "Deleted %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVarP(&a.yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func newStatusCmd(a *app) *cobra.Command {
	var recent int
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the server, session and collection sizes",
		Long: `Status prints the server, whether the session is valid, the size of
each collection and the newest list cache invalidations. The server
keeps the invalidation log only when it runs on PostgreSQL.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(a.out, "server:        %s\n", a.cfg.GetString(cfgKeyServerURL))
			fmt.Fprintf(a.out, "authenticated: %t\n", a.client.Authenticated(ctx(cmd)))
			a.store.FetchAll(ctx(cmd))
			if err := printCounts(a.out, a.store); err != nil {
				return err
			}
			if recent <= 0 {
				return nil
			}
			entries, ok := a.client.CacheLog(ctx(cmd), recent)
			fmt.Fprintln(a.out)
			if !ok {
				fmt.Fprintln(a.out, "cache invalidations: unavailable")
				return nil
			}
			return printCacheLog(a.out, entries)
		},
	}
	cmd.Flags().IntVar(&recent, "invalidations", 5, "number of recent cache invalidations to show (0 hides them)")
	return cmd
}

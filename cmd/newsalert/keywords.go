package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/deusflow/newsalert/internal/news"
	"github.com/deusflow/newsalert/internal/storage"
)

const keywordColumnWidth = 24

func keywordsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keywords",
		Short: "Manage alert keywords",
	}

	var onlyEnabled bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List keywords, newest first",
		Args:  cobra.NoArgs,
		RunE: withStore(func(ctx context.Context, store *storage.Store, out io.Writer, _ []string) error {
			keywords, err := store.ListKeywords(ctx, onlyEnabled)
			if err != nil {
				return err
			}
			printKeywords(out, keywords)
			return nil
		}),
	}
	list.Flags().BoolVar(&onlyEnabled, "enabled", false, "only show enabled keywords")

	add := &cobra.Command{
		Use:   "add <keyword>",
		Short: "Add a keyword",
		Args:  cobra.MinimumNArgs(1),
		RunE: withStore(func(ctx context.Context, store *storage.Store, out io.Writer, args []string) error {
			text := strings.TrimSpace(strings.Join(args, " "))
			if text == "" || utf8.RuneCountInString(text) > 100 {
				return errors.New("keyword must be 1 to 100 characters")
			}
			kw, err := store.AddKeyword(ctx, text)
			if errors.Is(err, storage.ErrDuplicateKeyword) {
				return fmt.Errorf("keyword %q already exists", text)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "added keyword %d: %s\n", kw.ID, kw.Text)
			return nil
		}),
	}

	remove := &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete a keyword",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(ctx context.Context, store *storage.Store, out io.Writer, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := store.DeleteKeyword(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(out, "deleted keyword %d\n", id)
			return nil
		}),
	}

	toggle := &cobra.Command{
		Use:   "toggle <id>",
		Short: "Enable or disable a keyword",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(ctx context.Context, store *storage.Store, out io.Writer, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			enabled, err := store.ToggleKeyword(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "keyword %d enabled=%t\n", id, enabled)
			return nil
		}),
	}

	cmd.AddCommand(list, add, remove, toggle)
	return cmd
}

type storeFunc func(ctx context.Context, store *storage.Store, out io.Writer, args []string) error

func withStore(fn storeFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := openStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer store.Close()
		return fn(cmd.Context(), store, cmd.OutOrStdout(), args)
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

// printKeywords renders an aligned table; Hangul is two columns wide.
func printKeywords(out io.Writer, keywords []news.Keyword) {
	fmt.Fprintf(out, "%-6s %s %-8s %s\n", "ID", runewidth.FillRight("KEYWORD", keywordColumnWidth), "ENABLED", "CREATED")
	for _, k := range keywords {
		text := runewidth.Truncate(k.Text, keywordColumnWidth, "…")
		fmt.Fprintf(out, "%-6d %s %-8t %s\n", k.ID, runewidth.FillRight(text, keywordColumnWidth), k.Enabled, k.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
}

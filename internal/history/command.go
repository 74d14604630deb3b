package history

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"
	"mvdan.cc/sh/v3/interp"

	"github.com/oryxsh/oryx/internal/styles"
)

const defaultListLength = 20

// NewCommandHandler returns exec middleware implementing the `history`
// builtin: listing, fuzzy search, deletion and reset.
func NewCommandHandler(manager *Manager) func(interp.ExecHandlerFunc) interp.ExecHandlerFunc {
	return func(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
		return func(ctx context.Context, args []string) error {
			if len(args) == 0 || args[0] != "history" {
				return next(ctx, args)
			}
			hc := interp.HandlerCtx(ctx)

			if len(args) == 1 {
				return listEntries(hc, manager, defaultListLength)
			}
			switch args[1] {
			case "search":
				if len(args) < 3 {
					fmt.Fprintln(hc.Stderr, "usage: history search <query>")
					return interp.NewExitStatus(1)
				}
				return searchEntries(hc, manager, args[2])
			case "delete":
				if len(args) < 3 {
					fmt.Fprintln(hc.Stderr, "usage: history delete <id>")
					return interp.NewExitStatus(1)
				}
				return deleteEntry(hc, manager, args[2])
			case "reset":
				if err := manager.ResetHistory(); err != nil {
					fmt.Fprintf(hc.Stderr, "history: %v\n", err)
					return interp.NewExitStatus(1)
				}
				return nil
			default:
				if n, err := strconv.Atoi(args[1]); err == nil && n > 0 {
					return listEntries(hc, manager, n)
				}
				fmt.Fprintf(hc.Stderr, "history: unknown subcommand %q\n", args[1])
				return interp.NewExitStatus(1)
			}
		}
	}
}

func listEntries(hc interp.HandlerContext, manager *Manager, limit int) error {
	entries, err := manager.GetRecentEntries(limit)
	if err != nil {
		fmt.Fprintf(hc.Stderr, "history: %v\n", err)
		return interp.NewExitStatus(1)
	}
	printEntries(hc, entries)
	return nil
}

func searchEntries(hc interp.HandlerContext, manager *Manager, query string) error {
	entries, err := manager.GetAllEntries()
	if err != nil {
		fmt.Fprintf(hc.Stderr, "history: %v\n", err)
		return interp.NewExitStatus(1)
	}
	commands := lo.Map(entries, func(e Entry, _ int) string { return e.Command })
	matches := fuzzy.Find(query, commands)
	printEntries(hc, lo.Map(matches, func(m fuzzy.Match, _ int) Entry {
		return entries[m.Index]
	}))
	return nil
}

func deleteEntry(hc interp.HandlerContext, manager *Manager, rawID string) error {
	id, err := strconv.ParseUint(rawID, 10, 32)
	if err != nil {
		fmt.Fprintf(hc.Stderr, "history: invalid id %q\n", rawID)
		return interp.NewExitStatus(1)
	}
	if err := manager.DeleteEntry(uint(id)); err != nil {
		fmt.Fprintf(hc.Stderr, "history: %v\n", err)
		return interp.NewExitStatus(1)
	}
	return nil
}

func printEntries(hc interp.HandlerContext, entries []Entry) {
	for _, entry := range entries {
		when := styles.Faint(fmt.Sprintf("%-14s", humanize.Time(entry.CreatedAt)))
		fmt.Fprintf(hc.Stdout, "%5d  %s  %s\n", entry.ID, when, entry.Command)
	}
}

package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"vttgen/internal/cache"
	"vttgen/internal/config"
	"vttgen/internal/language"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the transcript cache",
	}
	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCachePurgeCommand(ctx))
	return cacheCmd
}

// openCache opens the configured cache database. It reports false when the
// database file has never been created.
func openCache(cmd *cobra.Command, cfg *config.Config) (*cache.DB, bool, error) {
	if _, err := os.Stat(cfg.Cache.Path); os.IsNotExist(err) {
		return nil, false, nil
	}
	db, err := cache.Open(cmd.Context(), cfg.Cache.Path)
	if err != nil {
		return nil, false, err
	}
	return db, true, nil
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached transcripts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			db, ok, err := openCache(cmd, cfg)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintf(out, "No transcript cache at %s\n", cfg.Cache.Path)
				return nil
			}
			defer db.Close()

			entries, err := db.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "Transcript cache is empty")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				id := e.ID
				if len(id) > 8 {
					id = id[:8]
				}
				lang := "-"
				if e.Language != "" {
					lang = e.Language + " (" + language.DisplayName(e.Language) + ")"
				}
				rows = append(rows, []string{
					id,
					e.Input,
					humanize.Bytes(uint64(max(0, e.InputSize))),
					e.Params.Backend + "/" + e.Params.Model,
					lang,
					strconv.Itoa(e.SegmentCount),
					humanize.Time(e.CreatedAt),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Input", "Size", "Model", "Language", "Segments", "Cached"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
}

func newCachePurgeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Delete every cached transcript",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			db, ok, err := openCache(cmd, cfg)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(out, "Removed 0 cached transcripts")
				return nil
			}
			defer db.Close()

			removed, err := db.Purge(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Removed %d cached transcripts\n", removed)
			return nil
		},
	}
}

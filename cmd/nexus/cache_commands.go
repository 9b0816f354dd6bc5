package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"nexus/internal/embedcache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the embedding cache",
	}

	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))

	return cacheCmd
}

func openCache(ctx *commandContext) (*embedcache.Store, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.Cache.Enabled {
		return nil, fmt.Errorf("embedding cache is disabled (set cache.enabled = true)")
	}
	store, err := embedcache.Open(cfg.CachePath())
	if err != nil {
		return nil, fmt.Errorf("open embedding cache: %w", err)
	}
	return store, nil
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached chunk embeddings",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openCache(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("list cache entries: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "Embedding cache is empty")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				key := e.Key
				if len(key) > 12 {
					key = key[:12]
				}
				rows = append(rows, []string{
					key,
					e.Model,
					strconv.Itoa(e.Tokens),
					strconv.Itoa(e.Dimensions),
					e.CreatedAt.Local().Format("2006-01-02 15:04"),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Key", "Model", "Tokens", "Dims", "Created"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached chunk embeddings",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openCache(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.Clear(cmd.Context())
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached embedding(s)\n", removed)
			return nil
		},
	}
}

package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/DanielDi/agent-tech-mining/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Maintain the extraction cache",
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove expired cached model answers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCache(func(c *cache.SQLiteCache) error {
			n, err := c.Prune()
			if err != nil {
				return err
			}
			return reportCache("pruned", n)
		})
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached model answer",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCache(func(c *cache.SQLiteCache) error {
			if err := c.Clear(); err != nil {
				return err
			}
			return reportCache("cleared", -1)
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{cachePruneCmd, cacheClearCmd} {
		c.Flags().String("cache", "", "SQLite file caching model answers")
		cacheCmd.AddCommand(c)
	}
	rootCmd.AddCommand(cacheCmd)
}

func withCache(fn func(*cache.SQLiteCache) error) error {
	if cfg.Cache.Path == "" {
		return configError(errors.New("no cache configured (set cache.path or --cache)"))
	}
	if _, err := os.Stat(cfg.Cache.Path); err != nil {
		return err
	}
	c, err := cache.OpenSQLite(cfg.Cache.Path, cfg.Cache.TTL)
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(c)
}

// CacheResponse is the JSON shape of cache maintenance commands.
type CacheResponse struct {
	Status  string `json:"status"`
	Path    string `json:"path"`
	Removed *int64 `json:"removed,omitempty"`
}

func reportCache(status string, removed int64) error {
	resp := CacheResponse{Status: status, Path: cfg.Cache.Path}
	if removed >= 0 {
		resp.Removed = &removed
	}
	if humanOutput {
		if resp.Removed != nil {
			outputHuman(os.Stdout, "%s %s: %d entries\n", status, resp.Path, removed)
		} else {
			outputHuman(os.Stdout, "%s %s\n", status, resp.Path)
		}
		return nil
	}
	return outputJSON(os.Stdout, resp)
}

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Indicator cache maintenance",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop cached indicator values for the configured World Bank year",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.RedisConfig.Addr == "" {
			return errors.New("REDIS_ADDR is required")
		}

		rt, err := openRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()

		if err := rt.IndicatorCache.Clear(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "indicator cache cleared")
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
}

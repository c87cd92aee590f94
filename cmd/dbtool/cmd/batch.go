package cmd

import (
	"fmt"
	"io"
	"os"

	"air-demand-service/internal/adapters/worldbank"
	"air-demand-service/internal/services"

	"github.com/spf13/cobra"
)

var (
	routesHub   string
	routesLimit int
	routesOut   string
	catalogOut  string
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Estimate every route from the hub and write them as CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()

		hub := routesHub
		if hub == "" {
			hub = cfg.BatchConfig.Hub
		}

		codes, err := rt.Airports.ListAirportCodes(cmd.Context())
		if err != nil {
			return err
		}

		w, closeOut, err := output(cmd, routesOut)
		if err != nil {
			return err
		}
		defer closeOut()

		sum, err := services.PopulateRoutesCSV(cmd.Context(), rt.Estimator, hub, codes, w, routesLimit)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%d routes written, %d skipped\n", sum.Written, sum.Skipped)
		return nil
	},
}

var distancesCmd = &cobra.Command{
	Use:   "distances <file>",
	Short: "Fill the distance column of a hub,destination CSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()

		n, err := services.PopulateDistancesCSV(cmd.Context(), rt.Airports, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%d distances written\n", n)
		return nil
	},
}

var demandsCmd = &cobra.Command{
	Use:   "demands <file>",
	Short: "Fill the demand columns of a routes CSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()

		sum, err := services.PopulateDemandsCSV(cmd.Context(), rt.Estimator, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%d demands written, %d left empty\n", sum.Written, sum.Skipped)
		return nil
	},
}

var indicatorsCmd = &cobra.Command{
	Use:   "indicators",
	Short: "Write the World Bank indicator catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := worldbank.NewClient(worldbank.Options{
			BaseURL:  cfg.WorldBankConfig.BaseURL,
			Year:     cfg.WorldBankConfig.Year,
			Timeout:  cfg.WorldBankConfig.Timeout,
			RetryMax: cfg.WorldBankConfig.RetryMax,
		})

		w, closeOut, err := output(cmd, catalogOut)
		if err != nil {
			return err
		}
		defer closeOut()

		n, err := worldbank.WriteIndicatorCatalog(cmd.Context(), client.IndicatorPager(), w)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%d indicators written\n", n)
		return nil
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Re-estimate and store every route from the hub",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()

		if _, err := rt.RequireDB("refresh"); err != nil {
			return err
		}

		hub := routesHub
		if hub == "" {
			hub = cfg.BatchConfig.Hub
		}
		res, err := services.RefreshHubDemands(cmd.Context(), rt.Estimator, rt.Airports, rt.RouteDemands, hub)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%d routes stored, %d failed\n", res.Stored, res.Failed)
		return nil
	},
}

func init() {
	routesCmd.Flags().StringVar(&routesHub, "hub", "", "hub ICAO code (default HUB_ICAO)")
	routesCmd.Flags().IntVar(&routesLimit, "limit", 0, "maximum number of destinations, 0 for all")
	routesCmd.Flags().StringVarP(&routesOut, "out", "o", "", "output file (default stdout)")

	refreshCmd.Flags().StringVar(&routesHub, "hub", "", "hub ICAO code (default HUB_ICAO)")

	indicatorsCmd.Flags().StringVarP(&catalogOut, "out", "o", "", "output file (default stdout)")
}

// output opens path for writing, or returns the command's stdout when empty.
func output(cmd *cobra.Command, path string) (io.Writer, func(), error) {
	if path == "" {
		return cmd.OutOrStdout(), func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

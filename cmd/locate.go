package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jjenkins/globeguru/internal/catalog"
	"github.com/jjenkins/globeguru/internal/geo"
	"github.com/jjenkins/globeguru/internal/model"
	"github.com/jjenkins/globeguru/internal/service"
)

var (
	locateIP  string
	locateLat float64
	locateLon float64
)

var locateCmd = &cobra.Command{
	Use:   "locate",
	Short: "Resolve a position or IP address to a country",
	Long: `Locate runs the same lookup race as the web location suggestion.

Examples:
  ./globeguru locate --lat 35.68 --lon 139.69
  ./globeguru locate --ip 81.2.69.142`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalog.Default()
		if err != nil {
			return err
		}

		req := geo.Request{IP: locateIP}
		if cmd.Flags().Changed("lat") || cmd.Flags().Changed("lon") {
			if !geo.ValidPosition(locateLat, locateLon) {
				return fmt.Errorf("invalid position %f,%f", locateLat, locateLon)
			}
			req.Position = &model.Position{Latitude: locateLat, Longitude: locateLon}
		}

		providers := []geo.Provider{geo.NewDeviceProvider(cat.Countries())}
		if locateIP != "" {
			providers = append(providers,
				geo.NewIPProvider(service.NewIPAPIClient(cfg.Geo.IPAPIURL), 1, cfg.Geo.CacheTTL))
		}

		loc, err := geo.NewLocator(cfg.Geo.Timeout, logger.Named("geo"), providers...).Locate(cmd.Context(), req)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s) via %s\n", loc.Flag, loc.Country, loc.CountryCode, loc.Source)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(locateCmd)
	locateCmd.Flags().StringVar(&locateIP, "ip", "", "Public IP address to look up")
	locateCmd.Flags().Float64Var(&locateLat, "lat", 0, "Latitude")
	locateCmd.Flags().Float64Var(&locateLon, "lon", 0, "Longitude")
}

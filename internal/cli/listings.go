package cli

import (
	"github.com/spf13/cobra"

	"github.com/surekeys/rentals/internal/client"
)

func newListingsCmd() *cobra.Command {
	var opts client.ListOptions

	cmd := &cobra.Command{
		Use:   "listings",
		Short: "Search active listings",
		Long:  "Search active listings by location, size, rent and whether agents are invited to bid.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListings(opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.State, "state", "", "state contains")
	f.StringVar(&opts.Locality, "locality", "", "locality contains")
	f.StringVar(&opts.Area, "area", "", "area contains")
	f.StringVar(&opts.PropertyType, "type", "", "exact property type")
	f.IntVar(&opts.Bedrooms, "bedrooms", 0, "exact number of bedrooms")
	f.Float64Var(&opts.MinRent, "min-rent", 0, "minimum rent")
	f.Float64Var(&opts.MaxRent, "max-rent", 0, "maximum rent")
	f.BoolVar(&opts.InviteAgentToBid, "bidding", false, "only listings inviting agent bids")
	f.IntVar(&opts.Page, "page", 1, "page number")
	f.IntVar(&opts.Limit, "limit", 10, "results per page")
	f.StringVar(&opts.Sort, "sort", "-createdAt", "sort field, prefix with - for descending")

	return cmd
}

func runListings(opts client.ListOptions) error {
	page, err := newAPIClient().ListListings(opts)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(page)
	}

	return printListingTable(page)
}

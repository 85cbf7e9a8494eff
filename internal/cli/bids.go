package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBidsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bids <listing-id>",
		Short: "List bids on your listing",
		Long:  "List every agent bid on one of your listings.",
		Args:  cobra.ExactArgs(1),
		RunE:  runBids,
	}
}

func runBids(cmd *cobra.Command, args []string) error {
	resp, err := newAPIClient().ListBids(args[0])
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(resp)
	}

	fmt.Printf("%s (%s)\n", resp.Listing.Title, resp.Listing.ID)
	if resp.Listing.InviteAgentToBid {
		fmt.Println("  Accepting bids")
	} else {
		fmt.Println("  Not accepting bids")
	}
	fmt.Println()
	return printBids(resp.Bids)
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show listing details",
		Long:  "Show full details for a listing, including its agent bids.",
		Args:  cobra.ExactArgs(1),
		RunE:  runShow,
	}
}

func runShow(cmd *cobra.Command, args []string) error {
	v, err := newAPIClient().GetListing(args[0])
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(v)
	}

	printListingSummary(v)
	if len(v.AgentBids) > 0 {
		fmt.Println()
		fmt.Printf("Bids (%d):\n", len(v.AgentBids))
		return printBids(v.AgentBids)
	}
	return nil
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/surekeys/rentals/internal/listing"
)

func newAcceptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accept <listing-id> <bid-id>",
		Short: "Accept an agent's bid",
		Long:  "Select the bid's agent for your listing. Every other bid is rejected and bidding closes.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := newAPIClient().AcceptBid(args[0], args[1])
			if err != nil {
				return err
			}
			return printDecision(v, "accepted", args[1])
		},
	}
}

func newRejectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reject <listing-id> <bid-id>",
		Short: "Reject an agent's bid",
		Long:  "Reject a single bid. Other bids are left as they are.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := newAPIClient().RejectBid(args[0], args[1])
			if err != nil {
				return err
			}
			return printDecision(v, "rejected", args[1])
		},
	}
}

func printDecision(v *listing.View, verdict, bidID string) error {
	if isJSON() {
		return printJSON(v)
	}

	fmt.Printf("Bid %s %s.\n", bidID, verdict)
	if v.SelectedAgent != nil {
		fmt.Printf("  Selected agent: %s (commission %g)\n", v.SelectedAgent.AgentID, v.SelectedAgent.Commission)
	}
	fmt.Printf("  Active bids:    %d\n", v.ActiveBidsCount)
	return nil
}

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newBidCmd() *cobra.Command {
	var commission float64
	var coverLetter, experience string

	cmd := &cobra.Command{
		Use:   "bid <listing-id>",
		Short: "Bid to represent a listing",
		Long:  "Submit an agent bid with a proposed commission and cover letter.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBid(args[0], commission, coverLetter, experience)
		},
	}

	cmd.Flags().Float64Var(&commission, "commission", 0, "proposed commission")
	cmd.Flags().StringVar(&coverLetter, "cover-letter", "", "cover letter (max 1000 characters)")
	cmd.Flags().StringVar(&experience, "experience", "", "relevant experience (max 500 characters)")

	return cmd
}

func runBid(id string, commission float64, coverLetter, experience string) error {
	if commission < 0 {
		return fmt.Errorf("commission must be at least 0, got %g", commission)
	}
	if strings.TrimSpace(coverLetter) == "" {
		return fmt.Errorf("--cover-letter is required")
	}

	v, err := newAPIClient().SubmitBid(id, commission, coverLetter, experience)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(v)
	}

	fmt.Printf("✓ Bid submitted on %s (%d active bids).\n", v.ID, v.ActiveBidsCount)
	return nil
}

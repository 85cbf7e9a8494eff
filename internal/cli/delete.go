package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a listing",
		Long:  "Delete one of your listings, including all bids on it.",
		Args:  cobra.ExactArgs(1),
		RunE:  runDelete,
	}
}

func runDelete(cmd *cobra.Command, args []string) error {
	if err := newAPIClient().DeleteListing(args[0]); err != nil {
		return err
	}

	if isJSON() {
		return printJSON(map[string]interface{}{"id": args[0], "deleted": true})
	}

	fmt.Printf("Listing %s deleted.\n", args[0])
	return nil
}

// Package cli defines the cobra command tree for rentals.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/surekeys/rentals/internal/client"
)

var (
	flagFormat string
	flagConfig string
)

// NewRootCmd creates the root cobra command with global flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "rentals",
		Short:         "Rental listings with agent bidding",
		Long:          "Run the rentals API server and event worker, or browse listings and manage agent bids from the command line.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format (text|json)")
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "server config file (YAML); RENTALS_* environment variables override it")

	root.AddCommand(
		newServeCmd(),
		newWorkerCmd(),
		newMigrateCmd(),
		newLoginCmd(),
		newLogoutCmd(),
		newStatusCmd(),
		newListingsCmd(),
		newShowCmd(),
		newCreateCmd(),
		newDeleteCmd(),
		newBidCmd(),
		newBidsCmd(),
		newAcceptCmd(),
		newRejectCmd(),
		newVersionCmd(),
	)

	return root
}

// newAPIClient creates an HTTP client for the rentals API.
func newAPIClient() *client.Client {
	return client.New(getServerURL(), getToken())
}

// isJSON returns true if the --format flag is set to json.
func isJSON() bool {
	return flagFormat == "json"
}

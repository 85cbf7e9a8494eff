package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <file.json|->",
		Short: "Create a listing",
		Long:  "Create a listing from a JSON document. Use - to read it from stdin.",
		Args:  cobra.ExactArgs(1),
		RunE:  runCreate,
	}
}

func runCreate(cmd *cobra.Command, args []string) error {
	doc, err := readDocument(args[0], os.Stdin)
	if err != nil {
		return err
	}

	v, err := newAPIClient().CreateListing(doc)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(v)
	}

	fmt.Printf("✓ Listing %s created.\n", v.ID)
	printListingSummary(v)
	return nil
}

// readDocument loads a JSON document from a file, or from stdin for "-".
func readDocument(name string, stdin io.Reader) (json.RawMessage, error) {
	var data []byte
	var err error
	if name == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%s is not valid JSON", name)
	}
	return json.RawMessage(data), nil
}

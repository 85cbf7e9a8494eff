package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/surekeys/rentals/internal/client"
	"github.com/surekeys/rentals/internal/listing"
)

// printJSON marshals v as indented JSON and writes it to stdout.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printListingSummary prints a single listing in text format.
func printListingSummary(v *listing.View) {
	fmt.Printf("%s\n", v.Title)
	fmt.Printf("  ID:        %s\n", v.ID)
	fmt.Printf("  Location:  %s, %s, %s, %s\n", v.StreetEstateNeighbourhood, v.Area, v.Locality, v.State)
	fmt.Printf("  Type:      %s (%s)\n", v.PropertyType, v.Purpose)
	fmt.Printf("  Rent:      %s %s\n", formatNaira(v.RentAmount), v.PaymentFrequency)
	if v.Bedrooms != nil {
		fmt.Printf("  Beds:      %d\n", *v.Bedrooms)
	}
	if v.Bathrooms != nil {
		fmt.Printf("  Baths:     %d\n", *v.Bathrooms)
	}
	fmt.Printf("  Status:    %s\n", v.Status)
	if v.IsExpired {
		fmt.Println("  Expired:   yes")
	}
	fmt.Printf("  Views:     %d\n", v.Views)
	if v.InviteAgentToBid {
		fmt.Printf("  Bidding:   open (%d active bids)\n", v.ActiveBidsCount)
	}
	if v.SelectedAgent != nil {
		fmt.Printf("  Agent:     %s\n", v.SelectedAgent.AgentID)
	}
}

// printListingTable prints a page of listings as a formatted table.
func printListingTable(page *client.ListingPage) error {
	if len(page.Listings) == 0 {
		fmt.Println("No listings found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "ID\tTITLE\tLOCALITY\tRENT\tBED\tBIDS"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	if _, err := fmt.Fprintln(w, "--\t-----\t--------\t----\t---\t----"); err != nil {
		return fmt.Errorf("writing table separator: %w", err)
	}

	for _, v := range page.Listings {
		beds := "-"
		if v.Bedrooms != nil {
			beds = fmt.Sprintf("%d", *v.Bedrooms)
		}
		bids := "-"
		if v.InviteAgentToBid {
			bids = fmt.Sprintf("%d", v.ActiveBidsCount)
		}

		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			v.ID, truncate(v.Title, 32), truncate(v.Locality, 20), formatNaira(v.RentAmount), beds, bids); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	p := page.Pagination
	fmt.Printf("\nPage %d of %d (%d listings)\n", p.CurrentPage, p.TotalPages, p.TotalCount)
	return nil
}

// printBids prints agent bids as a formatted table.
func printBids(bids []listing.Bid) error {
	if len(bids) == 0 {
		fmt.Println("No bids.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "BID\tAGENT\tCOMMISSION\tSTATUS\tSUBMITTED"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	for _, b := range bids {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%g\t%s\t%s\n",
			b.ID, b.AgentID, b.ProposedCommission, b.Status, b.SubmittedAt.Format("2006-01-02 15:04")); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}
	return w.Flush()
}

// formatNaira formats an amount in naira with thousands separators,
// keeping kobo only when present.
func formatNaira(amount float64) string {
	whole := int64(amount)
	kobo := int64((amount-float64(whole))*100 + 0.5)
	if kobo == 100 {
		whole++
		kobo = 0
	}

	s := fmt.Sprintf("%d", whole)
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)

	out := "₦" + strings.Join(parts, ",")
	if kobo > 0 {
		out += fmt.Sprintf(".%02d", kobo)
	}
	return out
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/quickbites/client/internal/domain/entities"
)

func renderJSON(w io.Writer, batch entities.RecommendationBatch) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(batch)
}

func renderTable(w io.Writer, batch entities.RecommendationBatch) {
	if len(batch.Results) == 0 {
		fmt.Fprintln(w, "No restaurants matched.")
		return
	}

	meal := batch.Criteria.Meal
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	header := []string{"#", "NAME", "RATING", "PRICE", "CATEGORIES", "CITY"}
	if meal != "" {
		header = append(header, strings.ToUpper(meal))
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for i, r := range batch.Results {
		row := []string{
			fmt.Sprintf("%d", i+1),
			r.Name,
			fmt.Sprintf("%.1f (%d)", r.Stars, r.ReviewCount),
			dash(r.PriceLabel()),
			dash(r.MatchedCategories),
			dash(r.Address.City),
		}
		if meal != "" {
			row = append(row, yesNo(r.ServesMeal(meal)))
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	_ = tw.Flush()

	for i, r := range batch.Results {
		if r.Explanation != "" {
			fmt.Fprintf(w, "%d. %s: %s\n", i+1, r.Name, r.Explanation)
		}
	}
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

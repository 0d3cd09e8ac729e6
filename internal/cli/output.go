package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"fleximart-catalog/internal/models"
)

const (
	outputJSON  = "json"
	outputTable = "table"
)

type pingResult struct {
	Namespace string  `json:"namespace"`
	LatencyMS float64 `json:"latency_ms"`
}

// printer escribe los resultados en stdout; los logs van a stderr
type printer struct {
	w      io.Writer
	format string
}

// print escribe v, precedido de un título si title no está vacío
func (p *printer) print(title string, v interface{}) error {
	if title != "" {
		if _, err := fmt.Fprintf(p.w, "== %s ==\n", title); err != nil {
			return err
		}
	}

	if p.format == outputTable {
		if ok, err := p.table(v); ok {
			return err
		}
	}

	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// table devuelve false si no sabe mostrar v como tabla
func (p *printer) table(v interface{}) (bool, error) {
	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)

	switch rows := v.(type) {
	case []models.ProductSummary:
		fmt.Fprintln(tw, "NAME\tPRICE\tSTOCK")
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Name, formatNumber(r.Price), formatNumber(r.Stock))
		}
	case []models.ProductRating:
		fmt.Fprintln(tw, "NAME\tAVG RATING")
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%s\n", r.Name, formatAverage(r.AvgRating))
		}
	case []models.CategoryPrice:
		fmt.Fprintln(tw, "CATEGORY\tAVG PRICE\tCOUNT")
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%s\t%d\n", r.Category, formatAverage(r.AvgPrice), r.Count)
		}
	case *models.ReviewResult:
		fmt.Fprintln(tw, "PRODUCT\tMATCHED\tMODIFIED\tREVIEWS")
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", rows.ProductID, rows.Matched, rows.Modified, rows.Reviews)
	case *models.ImportResult:
		fmt.Fprintln(tw, "SOURCE\tREAD\tINSERTED\tFAILED\tSKIPPED\tNORMALIZED\tDUPLICATES\tMISSING FIELDS\tDROPPED")
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%t\n", rows.Source, rows.Read, rows.Inserted, rows.Failed,
			rows.Skipped, rows.Normalized, rows.Duplicates, rows.MissingFields, rows.Dropped)
	case pingResult:
		fmt.Fprintln(tw, "NAMESPACE\tLATENCY (ms)")
		fmt.Fprintf(tw, "%s\t%.3f\n", rows.Namespace, rows.LatencyMS)
	default:
		return false, nil
	}

	return true, tw.Flush()
}

// formatNumber muestra "-" si el documento no tenía el campo
func formatNumber(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// formatAverage muestra "-" para promedios nulos (arreglo vacío o sin campo)
func formatAverage(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

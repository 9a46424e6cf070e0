package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/vetverify/internal/lookup"
	"github.com/sells-group/vetverify/internal/model"
	"github.com/sells-group/vetverify/internal/monitoring"
	"github.com/sells-group/vetverify/internal/region"
)

// printJSON writes v as indented JSON.
func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return eris.Wrap(err, "encode output")
	}
	return nil
}

// formatResults writes a tabular view of license results to out.
func formatResults(out io.Writer, results []model.VerificationResult) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tLICENSE\tSTATUS\tEXPIRES\tTYPE")
	_, _ = fmt.Fprintln(w, "----\t-------\t------\t-------\t----")
	for _, r := range results {
		expires := r.ExpirationDate
		if expires == "" {
			expires = r.Expiration
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			r.Name,
			dash(r.LicenseNumber),
			dash(r.Status),
			dash(expires),
			dash(r.LicenseType),
		)
	}
	_ = w.Flush()
}

// formatRegions writes the registered regions to out.
func formatRegions(out io.Writer, adapters []region.Adapter) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "CODE\tNAME\tSOURCE")
	_, _ = fmt.Fprintln(w, "----\t----\t------")
	for _, a := range adapters {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", a.Code(), a.Name(), a.Kind())
	}
	_ = w.Flush()
}

// formatRefreshReport writes a refresh run summary to out.
func formatRefreshReport(out io.Writer, report *lookup.RefreshReport) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "REGION\tOUTCOME\tCOUNT\tDURATION\tERROR")
	_, _ = fmt.Fprintln(w, "------\t-------\t-----\t--------\t-----")
	for _, r := range report.Regions {
		outcome := string(r.Outcome)
		switch {
		case r.Skipped:
			outcome = "skipped"
		case r.Error != "":
			outcome = "failed"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			r.Region,
			outcome,
			r.Count,
			r.Duration.Round(time.Millisecond),
			truncate(r.Error, 60),
		)
	}
	_ = w.Flush()
	_, _ = fmt.Fprintf(out, "\nrefreshed=%d skipped=%d failed=%d\n", report.Refreshed, report.Skipped, report.Failed)
}

// formatStatus writes per-region snapshot freshness to out.
func formatStatus(out io.Writer, snap *monitoring.Snapshot) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "REGION\tCODE\tSNAPSHOT\tCOUNT\tAGE\tSTALE\tCIRCUIT")
	_, _ = fmt.Fprintln(w, "------\t----\t--------\t-----\t---\t-----\t-------")
	for _, r := range snap.Regions {
		ts, age := "-", "-"
		if r.Present {
			ts = r.Timestamp.Format("2006-01-02 15:04")
			age = r.Age.Round(time.Minute).String()
		}
		if r.Error != "" {
			ts = "unreadable"
		}
		stale := ""
		if r.Stale {
			stale = "yes"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			r.Region, r.Code, ts, r.Count, age, stale, dash(r.Circuit),
		)
	}
	_ = w.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/tidwall/gjson"

	"github.com/securo-skn/crimefeed/internal/utils"
	"github.com/securo-skn/crimefeed/pkg/incident"
)

const titleWidth = 60

// printJSON writes v as indented JSON. A non-empty gjson path narrows the
// output to the matching value.
func printJSON(w io.Writer, v interface{}, path string) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if path == "" {
		_, err = fmt.Fprintln(w, string(raw))
		return err
	}
	res := gjson.GetBytes(raw, path)
	if !res.Exists() {
		return fmt.Errorf("path %q matched nothing", path)
	}
	if res.Type == gjson.String {
		_, err = fmt.Fprintln(w, res.String())
		return err
	}
	_, err = fmt.Fprintln(w, res.Raw)
	return err
}

func printIncidents(w io.Writer, incidents []incident.Incident, now time.Time) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tAGE\tSEVERITY\tCATEGORY\tZONE\tTIER\tSOURCE\tTITLE")
	for _, inc := range incidents {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			inc.ID,
			age(now, inc.Timestamp),
			inc.Severity,
			inc.Category,
			inc.Zone,
			inc.Tier,
			inc.SourceName,
			utils.Truncate(inc.Title, titleWidth),
		)
	}
	tw.Flush()
}

func age(now, t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	d := now.Sub(t)
	switch {
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 48*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/securo-skn/crimefeed/internal/utils"
	"github.com/securo-skn/crimefeed/pkg/sources"
	"github.com/securo-skn/crimefeed/pkg/sources/builtin"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the configured news sources",
	Long: `Lists the sources built from the "sources" config list.

With --check every enabled source page is fetched once: its status and page
title show the site answered, then one aggregation cycle reports how many
incidents each source produced.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		check, _ := cmd.Flags().GetBool("check")
		kinds, _ := cmd.Flags().GetBool("kinds")

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		defer w.Flush()

		if kinds {
			printKinds(w)
			return nil
		}

		a, err := newApp("")
		if err != nil {
			return err
		}
		defer a.Close()

		if !check {
			fmt.Fprintln(w, "ID\tKIND\tENABLED\tOFFICIAL\tLIMIT\tDOMAIN\tURL")
			for _, d := range a.aggregator.Descriptors() {
				fmt.Fprintf(w, "%s\t%s\t%t\t%t\t%d\t%s\t%s\n", d.ID, d.Kind, d.Enabled, d.Official, d.Limit, d.Domain(), d.URL)
			}
			return nil
		}

		timeout, _ := cmd.Flags().GetDuration("timeout")
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		probes := map[string]sources.ProbeResult{}
		for _, d := range a.aggregator.Descriptors() {
			if !d.Enabled {
				continue
			}
			res := sources.Probe(ctx, a.client, d)
			if res.Err != nil {
				utils.Log.Debugf("Probe of %s failed: %v", d.ID, res.Err)
			}
			probes[d.ID] = res
		}

		a.aggregator.FetchIncidents(ctx)

		st := a.aggregator.State()
		fmt.Fprintln(w, "ID\tENABLED\tHTTP\tLATENCY\tPAGE TITLE\tITEMS\tLAST FETCH\tERROR")
		for _, s := range st.Sources {
			lastFetch := "never"
			if !s.LastFetch.IsZero() {
				lastFetch = s.LastFetch.Format(time.RFC3339)
			}
			status, latency, title := "-", "-", "-"
			if p, ok := probes[s.Descriptor.ID]; ok {
				latency = p.Latency.Round(time.Millisecond).String()
				if p.StatusCode != 0 {
					status = fmt.Sprint(p.StatusCode)
				}
				if p.Title != "" {
					title = utils.Truncate(p.Title, 40)
				}
			}
			fmt.Fprintf(w, "%s\t%t\t%s\t%s\t%s\t%d\t%s\t%s\n",
				s.Descriptor.ID, s.Descriptor.Enabled, status, latency, title, s.LastCount, lastFetch, s.LastError)
		}
		return nil
	},
}

// printKinds lists every registered kind. Generic kinds need a url in their
// config entry, profile kinds bring their own.
func printKinds(w *tabwriter.Writer) {
	generic := map[string]bool{}
	for _, k := range builtin.GenericKinds {
		generic[k] = true
	}
	profiles := map[string]sources.Descriptor{}
	for _, d := range builtin.Profiles() {
		profiles[d.ID] = d
	}

	fmt.Fprintln(w, "KIND\tTYPE\tDEFAULT URL")
	for _, k := range sources.Kinds() {
		switch {
		case generic[k]:
			fmt.Fprintf(w, "%s\tgeneric\t(url required)\n", k)
		default:
			fmt.Fprintf(w, "%s\tprofile\t%s\n", k, profiles[k].URL)
		}
	}
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
	sourcesCmd.Flags().Bool("check", false, "Fetch every enabled source once and report the result")
	sourcesCmd.Flags().Bool("kinds", false, "List the registered source kinds instead")
	sourcesCmd.Flags().Duration("timeout", time.Minute, "Timeout for --check")
}

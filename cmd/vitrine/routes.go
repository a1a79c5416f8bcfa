package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/go-while/go-vitrine/internal/site"
	"github.com/spf13/cobra"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Print the route table",
	Args:  cobra.NoArgs,
	RunE:  runRoutes,
}

func init() {
	rootCmd.AddCommand(routesCmd)
}

func runRoutes(cmd *cobra.Command, args []string) error {
	// the catalog does not change the table shape
	table, err := site.NewTable(site.DefaultPages(), nil)
	if err != nil {
		return err
	}
	inNav := make(map[string]bool)
	for _, p := range table.Pages() {
		inNav[p.Name] = p.InNav
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPATTERN\tTEMPLATE\tTAG\tNAV")
	for _, r := range table.Routes() {
		nav := ""
		if inNav[r.Name] {
			nav = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.Name, r.Pattern, r.Template, r.Current, nav)
	}
	return w.Flush()
}

package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/talgya/warband/internal/engine"
	"github.com/talgya/warband/internal/persistence"
	"github.com/talgya/warband/internal/tree"
	"github.com/talgya/warband/internal/troops"
)

func inspectCmd() *cobra.Command {
	var summary bool
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Load a save and print its custom troop trees",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(os.Stdout, summary)
		},
	}
	cmd.Flags().BoolVar(&summary, "summary", false, "print faction totals only")
	return cmd
}

func runInspect(w io.Writer, summary bool) error {
	cfg, cat, err := setup()
	if err != nil {
		return err
	}
	if _, err := os.Stat(cfg.Database); err != nil {
		return fmt.Errorf("inspect %s: %w", cfg.Database, err)
	}
	st, err := persistence.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	if !st.HasTrees() {
		fmt.Fprintln(w, "No custom troop trees saved.")
		return nil
	}

	campaign := engine.NewCampaign(cat, nil)
	gaps, err := campaign.AfterLoad(st)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Campaign %s\n", campaign.ID)
	if raw, err := st.GetMeta(engine.MetaSavedAt); err == nil {
		if at, err := time.Parse(time.RFC3339, raw); err == nil {
			fmt.Fprintf(w, "Saved %s\n", humanize.Time(at))
		}
	}
	if gaps > 0 {
		fmt.Fprintf(w, "%s records loaded with gaps\n", humanize.Comma(int64(gaps)))
	}

	for _, f := range campaign.Registry.Factions() {
		nodes := f.Troops()
		fmt.Fprintf(w, "\n%s (%s): %s troops\n", f.Scope, f.Culture, humanize.Comma(int64(len(nodes))))
		if summary {
			continue
		}
		for _, top := range f.Tops() {
			printTree(w, top)
		}
	}
	return nil
}

func printTree(w io.Writer, top *troops.Troop) {
	depth := map[*troops.Troop]int{top: 0}
	for n := range tree.Walk(top) {
		d := depth[n]
		for _, c := range tree.Children(n) {
			depth[c] = d + 1
		}
		fmt.Fprintf(w, "  %s%-28s %-26s tier %d  %-12s <- %s\n",
			strings.Repeat("  ", d), n.ID, n.Name, n.Tier, n.Formation(), n.VanillaID)
	}
}

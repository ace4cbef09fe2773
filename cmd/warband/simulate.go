package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/talgya/warband/internal/engine"
	"github.com/talgya/warband/internal/persistence"
	"github.com/talgya/warband/internal/social"
)

type simulateOpts struct {
	days     int
	seed     uint64
	fresh    bool
	realtime bool
	interval time.Duration
}

func simulateCmd() *cobra.Command {
	var opts simulateOpts
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a scripted campaign session and save it",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd, opts)
		},
	}
	cmd.Flags().IntVar(&opts.days, "days", -1, "campaign days to simulate (default from config)")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "random seed (default from config)")
	cmd.Flags().BoolVar(&opts.fresh, "fresh", false, "start a new campaign even if a save exists")
	cmd.Flags().BoolVar(&opts.realtime, "realtime", false, "pace ticks in real time until interrupted")
	cmd.Flags().DurationVar(&opts.interval, "interval", time.Second, "tick interval in realtime mode")
	return cmd
}

func runSimulate(cmd *cobra.Command, opts simulateOpts) error {
	cfg, cat, err := setup()
	if err != nil {
		return err
	}
	days := cfg.Simulation.Days
	if opts.days >= 0 {
		days = opts.days
	}
	seed := cfg.Simulation.Seed
	if cmd.Flags().Changed("seed") {
		seed = opts.seed
	}

	// ── Database ──────────────────────────────────────────────────────
	if dir := filepath.Dir(cfg.Database); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}
	st, err := persistence.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer st.Close()
	slog.Info("database opened", "path", cfg.Database)

	// ── World ─────────────────────────────────────────────────────────
	factions := social.SeedFactions(cfg.Clan.Culture, cfg.Kingdom.Culture, cfg.Simulation.NPCCultures...)
	setts := engine.SeedSettlements(cat, factions)

	bus := engine.NewBus()
	campaign := engine.NewCampaign(cat, bus)
	sim := engine.NewSimulation(campaign, bus, factions, setts, seed)
	sim.Store = st

	// ── Load or Start ─────────────────────────────────────────────────
	if st.HasTrees() && !opts.fresh {
		slog.Info("found saved custom trees, loading...")
		gaps, err := campaign.AfterLoad(st)
		if err != nil {
			return err
		}
		if gaps > 0 {
			slog.Warn("save loaded with gaps", "records", gaps)
		}
	} else {
		if err := campaign.Start(cfg.Scopes()...); err != nil {
			return err
		}
	}

	eng := engine.NewEngine()
	eng.OnHour = sim.TickHour
	eng.OnDay = sim.TickDay
	eng.OnWeek = sim.TickWeek

	if opts.realtime {
		eng.Interval = opts.interval
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		fmt.Println("Starting campaign... (Ctrl+C to stop)")
		eng.Run(ctx)
	} else {
		eng.Advance(uint64(days) * engine.TicksPerDay)
	}

	slog.Info("final save...")
	if err := sim.Save(); err != nil {
		return fmt.Errorf("final save: %w", err)
	}

	s := sim.Stats
	fmt.Printf("\nCampaign %s ran until %s.\n", campaign.ID, engine.SimTime(eng.Tick))
	fmt.Printf("%s parties, %s men, %s of them custom troops.\n",
		humanize.Comma(int64(s.Parties)), humanize.Comma(int64(s.Men)), humanize.Comma(int64(s.CustomMen)))
	fmt.Printf("Converted %s men in %s parties; swapped %s volunteer slots; sanitized %s stacks.\n",
		humanize.Comma(int64(s.MenConverted)), humanize.Comma(int64(s.PartiesConverted)),
		humanize.Comma(int64(s.SlotsSwapped)), humanize.Comma(int64(s.StacksSanitized)))
	fmt.Printf("Player clan fields %s men. %s saves written to %s.\n",
		humanize.Comma(int64(sim.MenOf(social.PlayerClanID))), humanize.Comma(int64(s.Saves)), cfg.Database)
	return nil
}

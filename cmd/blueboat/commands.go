// cmd/blueboat/commands.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/blueboat-sim/blueboat/math"
	"github.com/blueboat-sim/blueboat/nav"
	"github.com/blueboat-sim/blueboat/rand"
	"github.com/blueboat-sim/blueboat/scope"
	"github.com/blueboat-sim/blueboat/sim"
	"github.com/blueboat-sim/blueboat/util"

	"github.com/gdamore/tcell/v2"
	"github.com/goforj/godump"
	"github.com/spf13/cobra"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

///////////////////////////////////////////////////////////////////////////
// run

func (a *app) newRunCommand() *cobra.Command {
	var trackFile, scenarioFile, saveScenario string
	var dump bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fly a single mission headless and print the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := a.scenario(scenarioFile)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if saveScenario != "" {
				f, err := os.Create(saveScenario)
				if err != nil {
					return err
				}
				err = writeJSON(f, sc)
				if cerr := f.Close(); err == nil {
					err = cerr
				}
				if err != nil {
					return err
				}
			}
			if dump {
				godump.Fdump(out, sc)
			}

			stream := sim.NewEventStream(a.lg)
			m, err := sim.NewMission(sc, a.cfg.Boat, stream, a.lg)
			if err != nil {
				return err
			}
			defer m.Close()

			var rec *sim.Recorder
			if trackFile != "" {
				rec = sim.NewRecorder(sc, a.cfg.Seed, a.cfg.DT, stream)
			}

			res, runErr := sim.Run(cmd.Context(), m, a.cfg.DT, a.cfg.MaxTicks, rec)
			res.Seed = a.cfg.Seed
			a.lg.Info("mission finished", slog.Any("result", res))

			if rec != nil {
				if err := sim.StoreTrack(trackFile, rec.Track()); err != nil {
					return err
				}
			}
			if err := writeJSON(out, res); err != nil {
				return err
			}
			return runErr
		},
	}

	cmd.Flags().StringVar(&trackFile, "track", "", "write a per-tick track of the mission to this file")
	cmd.Flags().StringVar(&scenarioFile, "scenario", "", "fly the scenario in this JSON file instead of generating one")
	cmd.Flags().StringVar(&saveScenario, "save-scenario", "", "write the scenario to this JSON file")
	cmd.Flags().BoolVar(&dump, "dump", false, "print the scenario before flying it")

	return cmd
}

// scenario returns the scenario stored in path or, if path is empty, one
// generated from the configured seed. A stored scenario without
// waypoints gets the route between its buoys.
func (a *app) scenario(path string) (sim.Scenario, error) {
	if path == "" {
		return sim.GenerateScenario(rand.Make(a.cfg.Seed), a.cfg.Scenario, nil), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return sim.Scenario{}, err
	}
	defer f.Close()

	var sc sim.Scenario
	if err := util.UnmarshalJSON(f, &sc); err != nil {
		return sim.Scenario{}, fmt.Errorf("%s: %w", path, err)
	}
	if sc.Config == (sim.ScenarioConfig{}) {
		sc.Config = a.cfg.Scenario
	}
	if len(sc.Waypoints) == 0 {
		sc.Waypoints = nav.GenerateLemniscate(sc.Buoys[0], sc.Buoys[1], sc.Config.Route)
	}
	return sc, nil
}

///////////////////////////////////////////////////////////////////////////
// batch

func (a *app) newBatchCommand() *cobra.Command {
	var showResults bool

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Fly many seeded missions concurrently and print statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := sim.RunBatch(cmd.Context(), a.cfg.BatchConfig(), a.lg)
			if err != nil {
				return err
			}

			summary := sim.Summarize(results)
			a.lg.Info("batch finished", slog.Int("missions", len(results)))
			if showResults {
				summary.Set("results", results)
			}
			return writeJSON(cmd.OutOrStdout(), summary)
		},
	}

	cmd.Flags().Int("count", 100, "number of missions")
	cmd.Flags().Int("concurrency", 0, "missions to fly at once (0: one per CPU)")
	cmd.Flags().BoolVar(&showResults, "results", false, "include the per-mission results")
	a.v.BindPFlag("batch.count", cmd.Flags().Lookup("count"))
	a.v.BindPFlag("batch.concurrency", cmd.Flags().Lookup("concurrency"))

	return cmd
}

///////////////////////////////////////////////////////////////////////////
// route

// parsePoint parses "x,y".
func parsePoint(s string) (math.Vector2, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return math.Vector2{}, fmt.Errorf("%q: expected x,y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return math.Vector2{}, fmt.Errorf("%q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return math.Vector2{}, fmt.Errorf("%q: %w", s, err)
	}
	return math.V2(x, y), nil
}

func (a *app) newRouteCommand() *cobra.Command {
	var p1s, p2s string

	cmd := &cobra.Command{
		Use:   "route",
		Short: "Print the figure-eight route between two buoys as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p1, err := parsePoint(p1s)
			if err != nil {
				return err
			}
			p2, err := parsePoint(p2s)
			if err != nil {
				return err
			}

			opts := a.cfg.Scenario.Route
			if cmd.Flags().Changed("points") {
				opts.NumPoints, _ = cmd.Flags().GetInt("points")
			}
			if cmd.Flags().Changed("margin") {
				opts.Margin, _ = cmd.Flags().GetFloat64("margin")
			}
			if opts.NumPoints <= 0 {
				return fmt.Errorf("points %d: must be positive", opts.NumPoints)
			}

			return writeJSON(cmd.OutOrStdout(), nav.GenerateLemniscate(p1, p2, opts))
		},
	}

	cmd.Flags().StringVar(&p1s, "p1", "400,350", "first buoy, x,y")
	cmd.Flags().StringVar(&p2s, "p2", "700,350", "second buoy, x,y")
	cmd.Flags().Int("points", 0, "number of route points (default from the config)")
	cmd.Flags().Float64("margin", 0, "distance the route extends past the buoys (default from the config)")

	return cmd
}

///////////////////////////////////////////////////////////////////////////
// track

func (a *app) newTrackCommand() *cobra.Command {
	var showEvents bool

	cmd := &cobra.Command{
		Use:   "track FILE",
		Short: "Summarize a recorded track",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := sim.RetrieveTrack(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "seed %d, %d samples\n", t.Seed, len(t.Samples))
			if showEvents {
				for _, e := range t.Events {
					fmt.Fprintf(out, "tick %6d  %s\n", e.Tick, e)
				}
			}
			return writeJSON(out, t.Summary())
		},
	}

	cmd.Flags().BoolVar(&showEvents, "events", false, "list the guidance events")

	return cmd
}

///////////////////////////////////////////////////////////////////////////
// view

func (a *app) newViewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Watch missions in the terminal: q quits, r restarts, space pauses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			screen, err := tcell.NewScreen()
			if err != nil {
				return err
			}
			if err := screen.Init(); err != nil {
				return err
			}
			defer screen.Fini()

			screen.SetStyle(tcell.StyleDefault.
				Background(tcell.ColorReset).
				Foreground(tcell.ColorReset))
			screen.HideCursor()

			v, err := scope.NewViewer(screen, a.cfg.Boat, a.cfg.Scenario, a.cfg.DT, rand.Make(a.cfg.Seed), a.lg)
			if err != nil {
				return err
			}

			if err := v.Run(cmd.Context()); err != nil && !errors.Is(err, cmd.Context().Err()) {
				return err
			}
			return nil
		},
	}
}

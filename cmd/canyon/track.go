package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/parker-boom/polycanyon"
)

// fixLine is one JSONL record on the track input.
type fixLine struct {
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Accuracy float64 `json:"accuracy,omitempty"`
	Time     string  `json:"time,omitempty"` // RFC 3339; empty = now
}

func newTrackCmd() *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "track",
		Short: "Track a stream of GPS fixes and record visits",
		Long: `Track reads JSONL fixes ({"lat":..,"lng":..,"accuracy":..}) from a file
or stdin, detects safe-zone transitions and marks structures visited.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			c, err := openCanyon(cfg)
			if err != nil {
				return err
			}
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			log, err := newLogger()
			if err != nil {
				return err
			}
			defer log.Sync()

			var in io.ReadCloser = os.Stdin
			if input != "" && input != "-" {
				in, err = os.Open(input)
				if err != nil {
					return fmt.Errorf("opening input: %w", err)
				}
				defer in.Close()
			}

			opts := []polycanyon.TrackerOption{
				polycanyon.WithLogger(log),
				polycanyon.WithEventHandler(printEvent),
			}
			if cfg.VisitRadiusM > 0 {
				opts = append(opts, polycanyon.WithVisitRadius(cfg.VisitRadiusM))
			}
			if cfg.MaxAccuracyM > 0 {
				opts = append(opts, polycanyon.WithMaxAccuracy(cfg.MaxAccuracyM))
			}
			tracker := polycanyon.NewTracker(c, st, opts...)
			log.Info("tracking session started", zap.String("session", tracker.Session()))

			fixes := make(chan polycanyon.Fix)
			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				defer close(fixes)
				return readFixes(ctx, in, fixes, log)
			})
			g.Go(func() error {
				return tracker.Run(ctx, fixes)
			})
			return g.Wait()
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "JSONL fix file (default stdin)")
	return cmd
}

// readFixes parses JSONL fixes and sends them on the channel. Malformed
// lines are logged and skipped so a bad record cannot kill a live stream.
func readFixes(ctx context.Context, r io.Reader, out chan<- polycanyon.Fix, log *zap.Logger) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var fl fixLine
		if err := json.Unmarshal(line, &fl); err != nil {
			log.Warn("skipping malformed fix", zap.Int("line", lineNo), zap.Error(err))
			continue
		}
		fix := polycanyon.Fix{
			Latitude:  fl.Lat,
			Longitude: fl.Lng,
			Accuracy:  fl.Accuracy,
		}
		if fl.Time != "" {
			if t, err := time.Parse(time.RFC3339, fl.Time); err == nil {
				fix.Time = t
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case out <- fix:
		}
	}
	return scanner.Err()
}

func printEvent(ev polycanyon.Event) {
	switch ev.Type {
	case polycanyon.ZoneEntered:
		fmt.Println("-> entered the canyon")
	case polycanyon.ZoneExited:
		fmt.Println("<- left the canyon")
	case polycanyon.StructureVisited:
		fmt.Printf("** visited %d %s\n", ev.Structure.Number, ev.Structure.Name)
	}
}

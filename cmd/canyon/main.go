// Command canyon is the Poly Canyon guide CLI: it resolves coordinates to
// structures, tracks a stream of GPS fixes against the safe zone, and manages
// the persisted visit log and preferences.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/parker-boom/polycanyon"
	"github.com/parker-boom/polycanyon/internal/store"
)

var (
	flagConfig  string
	flagDB      string
	flagVerbose bool
)

func main() {
	root := &cobra.Command{
		Use:           "canyon",
		Short:         "Poly Canyon structure guide",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "path to YAML config file")
	root.PersistentFlags().StringVar(&flagDB, "db", "", "path to visits database (overrides config)")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newNearestCmd(),
		newTrackCmd(),
		newVisitsCmd(),
		newSettingsCmd(),
		newInfoCmd(),
		newValidateCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newLogger builds the CLI logger. Production config by default so event
// output on stdout stays machine-readable; --verbose switches to the
// development config with debug level.
func newLogger() (*zap.Logger, error) {
	if flagVerbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

// openCanyon loads the dataset using directories from the config file.
func openCanyon(cfg *config) (*polycanyon.Canyon, error) {
	var opts []polycanyon.Option
	if cfg.DataDir != "" {
		opts = append(opts, polycanyon.WithDataDir(cfg.DataDir))
	}
	if cfg.CacheDir != "" {
		opts = append(opts, polycanyon.WithCacheDir(cfg.CacheDir))
	}
	if z := cfg.safeZone(); z != nil {
		opts = append(opts, polycanyon.WithSafeZone(*z))
	}
	return polycanyon.NewCanyon(opts...)
}

// openStore opens the visits database named by --db, the config file, or the
// default path, in that order.
func openStore(cfg *config) (*store.Store, error) {
	path := cfg.DB
	if flagDB != "" {
		path = flagDB
	}
	if path == "" {
		path = defaultDBPath()
	}
	return store.Open(path)
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "canyon.db"
	}
	return home + "/.polycanyon/canyon.db"
}

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/parker-boom/polycanyon"
)

func newInfoCmd() *cobra.Command {
	var exact bool

	cmd := &cobra.Command{
		Use:   "info <name>",
		Short: "Show a structure by name (typo-tolerant)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			c, err := openCanyon(cfg)
			if err != nil {
				return err
			}

			name := strings.Join(args, " ")
			opts := polycanyon.LookupOptions{FuzzyDistance: 2}
			if exact {
				opts.FuzzyDistance = 0
			}
			s, ok := c.FindStructure(name, opts)
			if !ok {
				return fmt.Errorf("no structure matching %q", name)
			}

			fmt.Printf("%d %s (%d)\n", s.Number, s.Name, s.Year)
			fmt.Printf("  %.5f, %.5f\n", s.Latitude, s.Longitude)
			fmt.Printf("  %s\n", s.Description)
			return nil
		},
	}
	cmd.Flags().BoolVar(&exact, "exact", false, "require an exact name match")
	return cmd
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check dataset integrity",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			var opts []polycanyon.Option
			if cfg.DataDir != "" {
				opts = append(opts, polycanyon.WithDataDir(cfg.DataDir))
			}
			if cfg.CacheDir != "" {
				opts = append(opts, polycanyon.WithCacheDir(cfg.CacheDir))
			}
			if err := polycanyon.ValidateData(opts...); err != nil {
				return err
			}
			fmt.Println("Dataset OK.")
			return nil
		},
	}
}

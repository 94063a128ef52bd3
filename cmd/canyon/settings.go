package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/parker-boom/polycanyon"
)

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change preferences",
	}
	cmd.AddCommand(newSettingsGetCmd(), newSettingsSetCmd())
	return cmd
}

func newSettingsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Show current preferences",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			s, err := polycanyon.LoadSettings(cmd.Context(), st)
			if err != nil {
				return err
			}
			fmt.Printf("theme: %s\nmode:  %s\n", s.Theme, s.Mode)
			return nil
		},
	}
}

func newSettingsSetCmd() *cobra.Command {
	var theme, mode string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change preferences",
		RunE: func(cmd *cobra.Command, args []string) error {
			if theme == "" && mode == "" {
				return fmt.Errorf("nothing to set: pass --theme and/or --mode")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			s, err := polycanyon.LoadSettings(cmd.Context(), st)
			if err != nil {
				return err
			}
			if theme != "" {
				t, err := polycanyon.ParseTheme(theme)
				if err != nil {
					return err
				}
				s.Theme = t
			}
			if mode != "" {
				m, err := polycanyon.ParseMode(mode)
				if err != nil {
					return err
				}
				s.Mode = m
			}
			if err := s.Save(cmd.Context(), st); err != nil {
				return err
			}
			fmt.Printf("theme: %s\nmode:  %s\n", s.Theme, s.Mode)
			return nil
		},
	}
	cmd.Flags().StringVar(&theme, "theme", "", "light, dark or system")
	cmd.Flags().StringVar(&mode, "mode", "", "adventure or virtual")
	return cmd
}

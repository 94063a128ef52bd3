package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newVisitsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "visits",
		Short: "Manage the visit log",
	}
	cmd.AddCommand(newVisitsListCmd(), newVisitsResetCmd())
	return cmd
}

func newVisitsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List visited structures",
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

			visits, err := st.Visits(cmd.Context())
			if err != nil {
				return err
			}
			if len(visits) == 0 {
				fmt.Println("No structures visited yet.")
				return nil
			}
			for _, v := range visits {
				name := fmt.Sprintf("structure %d", v.Structure)
				if s, ok := c.StructureByNumber(v.Structure); ok {
					name = s.Name
				}
				fmt.Printf("%3d  %-30s %s\n", v.Structure, name, v.At.Local().Format("2006-01-02 15:04"))
			}
			fmt.Printf("\n%d of %d structures visited.\n", len(visits), len(c.Structures))
			return nil
		},
	}
}

func newVisitsResetCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear all visited flags",
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

			if !force {
				fmt.Print("Clear all visited structures? [y/N] ")
				reader := bufio.NewReader(os.Stdin)
				answer, _ := reader.ReadString('\n')
				if !strings.EqualFold(strings.TrimSpace(answer), "y") {
					fmt.Println("Aborted.")
					return nil
				}
			}

			if err := st.Reset(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("Visit log cleared.")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation")
	return cmd
}

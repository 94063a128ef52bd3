package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newNearestCmd() *cobra.Command {
	var lat, lng float64

	cmd := &cobra.Command{
		Use:   "nearest",
		Short: "Resolve a coordinate to the nearest structure",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			c, err := openCanyon(cfg)
			if err != nil {
				return err
			}

			inZone := c.InZone(lat, lng)
			fmt.Printf("In zone: %v\n", inZone)

			p, dist, ok := c.NearestPoint(lat, lng)
			if !ok {
				return fmt.Errorf("no map point for coordinate (%v, %v)", lat, lng)
			}
			fmt.Printf("Nearest point: #%d (%.6f, %.6f), %.1fm away\n",
				p.ID, p.Latitude, p.Longitude, dist)

			if s, sdist, sok := c.NearestStructure(lat, lng); sok {
				fmt.Printf("Structure: %d %s (%.1fm)\n", s.Number, s.Name, sdist)
			} else {
				fmt.Println("Structure: none (trail point)")
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude")
	cmd.Flags().Float64Var(&lng, "lng", 0, "longitude")
	cmd.MarkFlagRequired("lat")
	cmd.MarkFlagRequired("lng")
	return cmd
}

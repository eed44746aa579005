package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/HenryLodge/viro-sub000/internal/routing"
)

var (
	rankTop    int
	rankAssign bool
	rankJSON   bool
)

var errNoLocation = errors.New("patient has no coordinates")

var rankCmd = &cobra.Command{
	Use:   "rank <patient-id>",
	Short: "Rank hospitals for a patient by beds, distance, specialty and wait",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := OpenDatabase()
		if err != nil {
			return err
		}
		defer d.Close()

		p, err := d.ResolvePatient(args[0])
		if err != nil {
			return err
		}
		origin, ok := p.Location()
		if !ok {
			return fmt.Errorf("ranking %s: %w", p.ID, errNoLocation)
		}

		hospitals, err := d.AllHospitals()
		if err != nil {
			return fmt.Errorf("loading hospitals: %w", err)
		}

		ranked := routing.Top(routing.Rank(origin, p.Tier, hospitals, appConfig.Routing), rankTop)
		logger.Debug("ranked hospitals",
			zap.String("patient", p.ID),
			zap.String("tier", string(p.Tier)),
			zap.Int("candidates", len(hospitals)),
		)

		if rankAssign && len(ranked) > 0 {
			if err := d.AssignFacility(p.ID, ranked[0].ID); err != nil {
				return err
			}
			logger.Info("facility assigned", zap.String("patient", p.ID), zap.String("hospital", ranked[0].ID))
		}

		if rankJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(ranked)
		}

		tier := string(p.Tier)
		if tier == "" {
			tier = "unassigned"
		}
		fmt.Printf("\n  Patient %s  tier=%s\n\n", truncID(p.ID), tier)
		if len(ranked) == 0 {
			fmt.Println("  No hospitals on file.")
			fmt.Println()
			return nil
		}
		for i, h := range ranked {
			fmt.Printf("  %d. %-30s score=%.4f  %6.1f km  beds=%d  wait=%dm\n",
				i+1, truncTitle(h.Name, 30), h.Score, h.DistanceKm, h.AvailableBeds, h.WaitMinutes)
			fmt.Printf("     beds=%.2f distance=%.2f specialty=%.2f wait=%.2f\n",
				h.Breakdown.Beds, h.Breakdown.Distance, h.Breakdown.Specialty, h.Breakdown.Wait)
		}
		if rankAssign {
			fmt.Printf("\n  Assigned to %s\n", ranked[0].Name)
		}
		fmt.Println()
		return nil
	},
}

func init() {
	rankCmd.Flags().IntVar(&rankTop, "top", 3, "Number of hospitals to show")
	rankCmd.Flags().BoolVar(&rankAssign, "assign", false, "Record the top-ranked hospital on the patient")
	rankCmd.Flags().BoolVar(&rankJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(rankCmd)
}

package cmd

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/HenryLodge/viro-sub000/internal/outbreak"
)

var (
	analyzeJSON     bool
	analyzePersist  bool
	analyzeLookback time.Duration
	analyzeLimit    int
	analyzeWorkers  int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Build the patient linkage graph and report clusters and alerts",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := OpenDatabase()
		if err != nil {
			return err
		}
		defer d.Close()

		lookback := appConfig.Analyze.Lookback
		if cmd.Flags().Changed("lookback") {
			lookback = analyzeLookback
		}
		limit := appConfig.Analyze.Limit
		if cmd.Flags().Changed("limit") {
			limit = analyzeLimit
		}
		if cmd.Flags().Changed("workers") {
			appConfig.Graph.Workers = analyzeWorkers
		}

		now := time.Now()
		patients, err := d.RecentPatients(now.Add(-lookback), limit)
		if err != nil {
			return fmt.Errorf("loading patients: %w", err)
		}

		start := time.Now()
		res := outbreak.Run(patients, appConfig.Graph, appConfig.Outbreak)
		logger.Info("analysis completed",
			zap.Int("patients", len(patients)),
			zap.Int("edges", len(res.Edges)),
			zap.Int("clusters", len(res.Clusters)),
			zap.Int("alerts", len(res.ClusterAlerts)),
			zap.Duration("elapsed", time.Since(start)),
		)

		if analyzePersist && len(res.ClusterAlerts) > 0 {
			if err := d.UpsertAlerts(res.ClusterAlerts, now); err != nil {
				return fmt.Errorf("persisting alerts: %w", err)
			}
			logger.Info("alerts persisted", zap.Int("count", len(res.ClusterAlerts)))
		}

		if analyzeJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}

		printHumanReadable(res, len(patients))
		return nil
	},
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Output as JSON")
	analyzeCmd.Flags().BoolVar(&analyzePersist, "persist", false, "Upsert alerts into the cluster_alerts table")
	analyzeCmd.Flags().DurationVar(&analyzeLookback, "lookback", 72*time.Hour, "Only consider patients created within this window")
	analyzeCmd.Flags().IntVar(&analyzeLimit, "limit", 500, "Maximum number of patients to load (0 = no limit)")
	analyzeCmd.Flags().IntVar(&analyzeWorkers, "workers", 1, "Goroutines used for pairwise scoring")
	rootCmd.AddCommand(analyzeCmd)
}

func printHumanReadable(res *outbreak.Result, loaded int) {
	s := res.Structure

	// Linkage bar
	barLen := int(s.LinkageScore * 20)
	if barLen > 20 {
		barLen = 20
	}
	bar := strings.Repeat("█", barLen) + strings.Repeat("░", 20-barLen)
	fmt.Printf("\n  Linkage: %.0f%%  [%s]\n", s.LinkageScore*100, bar)
	fmt.Printf("  breakdown: clustered=%.2f density=%.2f fragility=%.2f\n\n",
		s.LinkageBreakdown.Clustered,
		s.LinkageBreakdown.Density,
		s.LinkageBreakdown.Fragility)

	// Topology
	t := s.Topology
	fmt.Println("  TOPOLOGY")
	fmt.Println("  ────────────────────────────────────────")
	fmt.Printf("  Patients loaded: %d  Eligible: %d  Links: %d\n", loaded, t.TotalNodes, t.TotalEdges)
	fmt.Printf("  Clusters: %d  Largest: %d  Smallest: %d\n", t.NumClusters, t.LargestCluster, t.SmallestCluster)
	if t.IsolatedCount > 0 {
		fmt.Printf("  Isolated: %d unlinked patients\n", t.IsolatedCount)
	}

	fmt.Println("\n  Connection distribution:")
	for _, b := range t.DegreeHistogram {
		if b.Count > 0 {
			barWidth := int(math.Log2(float64(b.Count))) + 2
			fmt.Printf("    %5s: %4d  %s\n", b.Label, b.Count, strings.Repeat("=", barWidth))
		}
	}

	if len(t.Hubs) > 0 {
		fmt.Println("\n  Hub patients:")
		for _, hub := range t.Hubs {
			fmt.Printf("    %s links=%d  %s\n", truncID(hub.ID), hub.Connections, truncTitle(hub.Label, 50))
		}
	}

	// Bridges
	br := s.Bridges
	if len(br.BridgePatients) > 0 || len(br.CrossMetroLinks) > 0 {
		fmt.Println("\n  BRIDGING CASES")
		fmt.Println("  ────────────────────────────────────────")
		if len(br.BridgePatients) > 0 {
			fmt.Printf("  %d patients link otherwise separate groups:\n", len(br.BridgePatients))
			for _, bp := range firstN(br.BridgePatients, 10) {
				fmt.Printf("    %s links=%d  %s\n", truncID(bp.ID), bp.Connections, truncTitle(bp.Label, 50))
			}
		}
		if len(br.BridgeEdges) > 0 {
			fmt.Printf("  %d single links hold groups together\n", len(br.BridgeEdges))
		}
		for _, cm := range firstN(br.CrossMetroLinks, 10) {
			plural := ""
			if cm.Links != 1 {
				plural = "s"
			}
			fmt.Printf("    %s <-> %s (%d link%s)\n", cm.MetroA, cm.MetroB, cm.Links, plural)
		}
	}

	// Clusters
	if len(res.Clusters) > 0 {
		fmt.Println("\n  CLUSTERS")
		fmt.Println("  ────────────────────────────────────────")
		for _, c := range res.Clusters {
			flag := " "
			if c.Alert {
				flag = "!"
			}
			fmt.Printf("  %s %-11s size=%d avg=%.3f recency=%.2f severity=%.3f\n",
				flag, c.ID, c.Size, c.AvgEdgeWeight, c.RecencyFactor, c.SeverityScore)
			if len(c.SharedSymptoms) > 0 {
				fmt.Printf("      symptoms: %s\n", strings.Join(c.SharedSymptoms, ", "))
			}
		}
	}

	// Alerts
	if len(res.ClusterAlerts) > 0 {
		fmt.Println("\n  ALERTS")
		fmt.Println("  ────────────────────────────────────────")
		for _, a := range res.ClusterAlerts {
			fmt.Printf("  [%s] %s  (%d patients, severity %.2f)\n", a.GrowthRate, a.Label, a.PatientCount, a.Severity)
			fmt.Printf("      spread: %s  travel: %s\n", a.GeographicSpread, a.TravelCommonalities)
			fmt.Printf("      action: %s\n", a.RecommendedAction)
		}
	} else {
		fmt.Println("\n  No clusters above the alert threshold.")
	}

	fmt.Println()
}

func firstN[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func truncID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncTitle(s string, max int) string {
	if len(s) <= max {
		return s
	}
	// Back off to a rune boundary
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

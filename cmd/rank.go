package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pawmap/pawmap/internal/dataset"
	"github.com/pawmap/pawmap/internal/model"
	"github.com/pawmap/pawmap/internal/scorer"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank districts by weighted facility counts",
	Long: `Score every district as hospital*w1 + cafe*w2 + park*w3 and print the top N.

Examples:
  # Top 5 with the configured weights
  rank

  # Parks matter twice as much, top 10 as CSV
  rank --park 2 --top 10 --format csv --output top10.csv`,
	RunE: runRank,
}

func init() {
	f := rankCmd.Flags()
	f.String("input", "", "district table (json, csv or xlsx; default from config)")
	f.Float64("hospital", -1, "animal hospital weight (default from config)")
	f.Float64("cafe", -1, "pet cafe weight (default from config)")
	f.Float64("park", -1, "park weight (default from config)")
	f.Int("top", 0, "number of districts to list (default from config)")
	f.String("format", "table", "output format: table, csv or json")
	f.String("output", "", "output file path (default: stdout)")

	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, _ []string) error {
	input, _ := cmd.Flags().GetString("input")
	if input != "" {
		cfg.Data.Districts = input
	}
	top, _ := cmd.Flags().GetInt("top")
	if top > 0 {
		cfg.Ranking.TopN = top
	}
	if err := cfg.Validate("rank"); err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	if format != "table" && format != "csv" && format != "json" {
		return eris.Errorf("rank: --format must be table, csv or json (got %q)", format)
	}

	w := cfg.Ranking.Weights()
	if v, _ := cmd.Flags().GetFloat64("hospital"); cmd.Flags().Changed("hospital") {
		w.Hospital = v
	}
	if v, _ := cmd.Flags().GetFloat64("cafe"); cmd.Flags().Changed("cafe") {
		w.Cafe = v
	}
	if v, _ := cmd.Flags().GetFloat64("park"); cmd.Flags().Changed("park") {
		w.Park = v
	}

	records, err := dataset.LoadDistricts(cfg.Data.Districts)
	if err != nil {
		return eris.Wrap(err, "rank: load districts")
	}
	if err := scorer.ValidateDistricts(records); err != nil {
		zap.L().Warn("rank: district table has problems", zap.Error(err))
	}

	ranking := scorer.Rank(records, w, cfg.Ranking.TopN)
	zap.L().Info("rank: scored districts",
		zap.Int("districts", len(records)),
		zap.Int("listed", len(ranking)),
		zap.Float64("hospital_weight", w.Hospital),
		zap.Float64("cafe_weight", w.Cafe),
		zap.Float64("park_weight", w.Park),
	)

	outputPath, _ := cmd.Flags().GetString("output")
	out, closeFn, err := openOutput(outputPath, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer closeFn()

	return writeRanking(out, ranking, format)
}

func writeRanking(w io.Writer, ranking []model.ScoredDistrict, format string) error {
	switch format {
	case "csv":
		return writeRankCSV(w, ranking)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(ranking), "rank: write json")
	case "table":
		return writeRankTable(w, ranking)
	default:
		return eris.Errorf("rank: unsupported format %q", format)
	}
}

func writeRankCSV(w io.Writer, ranking []model.ScoredDistrict) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"rank", "district", "score", "hospital_score", "cafe_score", "park_score", "hospital", "cafe", "park"}
	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "rank: write CSV header")
	}
	for i, d := range ranking {
		row := []string{
			fmt.Sprintf("%d", i+1),
			d.Name,
			fmt.Sprintf("%.1f", d.Score),
			fmt.Sprintf("%.1f", d.HospitalScore),
			fmt.Sprintf("%.1f", d.CafeScore),
			fmt.Sprintf("%.1f", d.ParkScore),
			fmt.Sprintf("%d", d.HospitalCount),
			fmt.Sprintf("%d", d.CafeCount),
			fmt.Sprintf("%d", d.ParkCount),
		}
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "rank: write CSV row")
		}
	}
	return nil
}

func writeRankTable(w io.Writer, ranking []model.ScoredDistrict) error {
	header := fmt.Sprintf("%-4s %-20s %8s %8s %8s %8s\n", "#", "District", "Score", "Hospital", "Cafe", "Park")
	if _, err := fmt.Fprint(w, header); err != nil {
		return eris.Wrap(err, "rank: write table header")
	}
	if _, err := fmt.Fprintln(w, strings.Repeat("-", 62)); err != nil {
		return eris.Wrap(err, "rank: write table separator")
	}
	for i, d := range ranking {
		line := fmt.Sprintf("%-4d %-20s %8.1f %8d %8d %8d\n",
			i+1, d.Name, d.Score, d.HospitalCount, d.CafeCount, d.ParkCount)
		if _, err := fmt.Fprint(w, line); err != nil {
			return eris.Wrap(err, "rank: write table row")
		}
	}
	return nil
}

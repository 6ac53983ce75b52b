package main

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pawmap/pawmap/internal/dataset"
	"github.com/pawmap/pawmap/internal/geo"
	"github.com/pawmap/pawmap/internal/model"
)

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Count facilities per district from coordinates and boundary polygons",
	Long: `Assign every hospital, cafe and park to the district polygon containing it and write the
per-district count table used by rank and cluster.

Examples:
  count --boundaries data/seoul_dong.shp --hospitals data/hospitals.csv \
        --cafes data/cafes.json --parks data/parks.xlsx --output data/district_facility_counts.csv`,
	RunE: runCount,
}

func init() {
	f := countCmd.Flags()
	f.String("boundaries", "", "district boundary file, .shp or .geojson (default from config)")
	f.String("hospitals", "", "animal hospital list (json, csv or xlsx)")
	f.String("cafes", "", "pet cafe list (json, csv or xlsx)")
	f.String("parks", "", "park list (json, csv or xlsx)")
	f.String("name-col", dataset.DefaultColumns.Name, "facility name column for csv/xlsx input")
	f.String("x-col", dataset.DefaultColumns.X, "longitude column for csv/xlsx input")
	f.String("y-col", dataset.DefaultColumns.Y, "latitude column for csv/xlsx input")
	f.String("output", "", "count table path, .csv or .json (default: stdout CSV)")
	f.String("located", "", "also write each facility with its district to this CSV")

	rootCmd.AddCommand(countCmd)
}

func runCount(cmd *cobra.Command, _ []string) error {
	if b, _ := cmd.Flags().GetString("boundaries"); b != "" {
		cfg.Data.Boundaries = b
	}
	if err := cfg.Validate("count"); err != nil {
		return err
	}

	boundaries, err := loadBoundaries(cfg)
	if err != nil {
		return err
	}

	cols := dataset.Columns{}
	cols.Name, _ = cmd.Flags().GetString("name-col")
	cols.X, _ = cmd.Flags().GetString("x-col")
	cols.Y, _ = cmd.Flags().GetString("y-col")

	lists := map[string][]model.Facility{}
	for _, kind := range []string{model.FacilityHospital, model.FacilityCafe, model.FacilityPark} {
		path, _ := cmd.Flags().GetString(kind + "s")
		if path == "" {
			continue
		}
		fs, err := dataset.LoadFacilities(path, kind, cols)
		if err != nil {
			return err
		}
		lists[kind] = fs
	}
	if len(lists) == 0 {
		return eris.New("count: at least one of --hospitals, --cafes or --parks is required")
	}

	records, located := geo.Tally(boundaries,
		lists[model.FacilityHospital], lists[model.FacilityCafe], lists[model.FacilityPark])
	zap.L().Info("count: facilities assigned",
		zap.Int("districts", len(records)),
		zap.Int("facilities", len(located)),
	)

	outputPath, _ := cmd.Flags().GetString("output")
	out, closeFn, err := openOutput(outputPath, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer closeFn()

	if strings.EqualFold(filepath.Ext(outputPath), ".json") {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(records); err != nil {
			return eris.Wrap(err, "count: write json")
		}
	} else if err := dataset.WriteDistrictsCSV(out, records); err != nil {
		return err
	}

	if locatedPath, _ := cmd.Flags().GetString("located"); locatedPath != "" {
		lw, closeLocated, err := openOutput(locatedPath, nil)
		if err != nil {
			return err
		}
		defer closeLocated()
		if err := dataset.WriteLocatedCSV(lw, located); err != nil {
			return err
		}
	}
	return nil
}

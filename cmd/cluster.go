package main

import (
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pawmap/pawmap/internal/cluster"
	"github.com/pawmap/pawmap/internal/dataset"
	"github.com/pawmap/pawmap/internal/model"
)

var clusterCmd = &cobra.Command{
	Use:   "cluster",
	Short: "Build and inspect district cluster reference data",
}

var clusterAssignCmd = &cobra.Command{
	Use:   "assign",
	Short: "Group districts into facility-profile clusters and write the reference files",
	Long: `Split districts by the median and quartiles of their facility counts into five profile types,
then write district_clusters.json and cluster_info.json (paths from data.clusters and
data.cluster_info). Colours and type names come from data.palette when set.`,
	RunE: runClusterAssign,
}

var clusterLookupCmd = &cobra.Command{
	Use:   "lookup <district>",
	Short: "Print a district's cluster descriptor and map style",
	Args:  cobra.ExactArgs(1),
	RunE:  runClusterLookup,
}

func init() {
	clusterAssignCmd.Flags().String("input", "", "district table (default from config)")
	clusterCmd.AddCommand(clusterAssignCmd, clusterLookupCmd)
	rootCmd.AddCommand(clusterCmd)
}

func runClusterAssign(cmd *cobra.Command, _ []string) error {
	input, _ := cmd.Flags().GetString("input")
	if input != "" {
		cfg.Data.Districts = input
	}
	if err := cfg.Validate("cluster"); err != nil {
		return err
	}

	records, err := dataset.LoadDistricts(cfg.Data.Districts)
	if err != nil {
		return eris.Wrap(err, "cluster: load districts")
	}
	palette, err := loadPalette(cfg)
	if err != nil {
		return err
	}

	ref := cluster.Assign(records, palette)
	if err := cluster.Save(ref, cfg.Data.Clusters, cfg.Data.ClusterInfo); err != nil {
		return err
	}

	zap.L().Info("cluster: reference files written",
		zap.Int("districts", len(ref.Assignments)),
		zap.Int("clusters", len(ref.Descriptors)),
		zap.String("assignments", cfg.Data.Clusters),
		zap.String("descriptors", cfg.Data.ClusterInfo),
	)
	for _, d := range ref.Descriptors {
		fmt.Fprintf(cmd.OutOrStdout(), "%d  %-12s %3d districts  hospital %.1f  cafe %.1f  park %.1f\n",
			d.Cluster, d.TypeLabel, d.Districts, d.Hospital, d.Cafe, d.Park)
	}
	return nil
}

type lookupResult struct {
	District   string                   `json:"district"`
	Clustered  bool                     `json:"clustered"`
	Descriptor *model.ClusterDescriptor `json:"descriptor,omitempty"`
	Style      cluster.Style            `json:"style"`
	Hover      cluster.Style            `json:"hover_style"`
}

func runClusterLookup(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ref, err := cluster.Load(ctx, cfg.Data.Clusters, cfg.Data.ClusterInfo)
	if err != nil {
		return err
	}

	d := ref.Describe(args[0])
	style := cluster.StyleFor(d)
	res := lookupResult{
		District:   args[0],
		Clustered:  d != nil,
		Descriptor: d,
		Style:      style,
		Hover:      cluster.Highlight(style),
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(res), "cluster: write lookup")
}

package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pawmap/pawmap/internal/classify"
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Filter saved place-search results to walkable places",
	Long: `Read a JSON array of place-search results ({place_name, category_name, ...}) and print
the places accepted by the chosen policy.

Policies:
  lenient  category path contains a walkable label (park, trail, mountain, lake, ...)
  strict   lenient, and the path starts with 여행 > 관광,명소
  park     path contains 공원 and no facility keyword (화장실, 주차장, ...) appears`,
	RunE: runClassify,
}

func init() {
	f := classifyCmd.Flags()
	f.String("input", "", "JSON file of places (default: stdin)")
	f.String("policy", "", "lenient, strict or park (default from config)")
	f.String("output", "", "output file path (default: stdout)")

	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, _ []string) error {
	name, _ := cmd.Flags().GetString("policy")
	if name != "" {
		cfg.Search.Policy = name
	}
	if err := cfg.Validate("classify"); err != nil {
		return err
	}
	policy, err := policyFlag(name)
	if err != nil {
		return err
	}

	input, _ := cmd.Flags().GetString("input")
	var raw []byte
	if input == "" {
		raw, err = io.ReadAll(cmd.InOrStdin())
	} else {
		raw, err = os.ReadFile(input)
	}
	if err != nil {
		return eris.Wrap(err, "classify: read input")
	}

	places, err := classify.ClassifyJSON(raw, policy)
	if err != nil {
		return err
	}
	zap.L().Info("classify: filtered places",
		zap.String("policy", policy.String()),
		zap.Int("kept", len(places)),
	)

	outputPath, _ := cmd.Flags().GetString("output")
	out, closeFn, err := openOutput(outputPath, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer closeFn()

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(places), "classify: write output")
}

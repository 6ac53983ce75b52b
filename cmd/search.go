package main

import (
	"encoding/json"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pawmap/pawmap/internal/model"
)

var searchCmd = &cobra.Command{
	Use:   "search [keyword...]",
	Short: "Search Kakao Local and keep walkable places",
	Long: `Run keyword searches against the Kakao Local API, follow every result page, and print
the places accepted by the policy. Without arguments the configured search.keywords are used.`,
	RunE: runSearch,
}

func init() {
	f := searchCmd.Flags()
	f.String("policy", "", "lenient, strict or park (default from config)")
	f.String("output", "", "output file path (default: stdout)")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	name, _ := cmd.Flags().GetString("policy")
	if name != "" {
		cfg.Search.Policy = name
	}
	if err := cfg.Validate("search"); err != nil {
		return err
	}
	policy, err := policyFlag(name)
	if err != nil {
		return err
	}

	keywords := args
	if len(keywords) == 0 {
		keywords = cfg.Search.Keywords
	}
	if len(keywords) == 0 {
		return eris.New("search: no keywords given")
	}

	svc, closeFn, err := newSearchService(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	var places []model.Place
	if len(keywords) == 1 {
		places, err = svc.Search(ctx, keywords[0], policy)
	} else {
		places, err = svc.SearchMany(ctx, keywords, policy, cfg.Search.Concurrency)
	}
	if err != nil {
		return err
	}
	zap.L().Info("search: done", zap.Strings("keywords", keywords), zap.Int("places", len(places)))

	outputPath, _ := cmd.Flags().GetString("output")
	out, closeOut, err := openOutput(outputPath, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer closeOut()

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(places), "search: write output")
}

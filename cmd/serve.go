package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pawmap/pawmap/internal/classify"
	"github.com/pawmap/pawmap/internal/dataset"
	"github.com/pawmap/pawmap/internal/geo"
	"github.com/pawmap/pawmap/internal/model"
	"github.com/pawmap/pawmap/internal/presenter"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve ranking, place search and cluster map data over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		districts, err := dataset.LoadDistricts(cfg.Data.Districts)
		if err != nil {
			return eris.Wrap(err, "serve: load districts")
		}
		boundaries, err := loadBoundaries(cfg)
		if err != nil {
			return err
		}

		p := presenter.New(districts, cfg.Ranking.Weights(), cfg.Ranking.TopN,
			presenter.WithClusters(loadClusters(ctx, cfg)))
		p.Dispatcher().Subscribe(presenter.EventSearch, func(e presenter.Event) {
			zap.L().Info("serve: search finished",
				zap.String("keyword", e.View.Keyword),
				zap.Int("places", len(e.View.Places)),
				zap.String("error", e.View.SearchError),
			)
		})

		s := &server{
			presenter:  p,
			boundaries: boundaries,
			nameField:  cfg.Data.NameField,
			policy:     cfg.Search.Policy,
		}
		if cfg.Kakao.Key != "" {
			svc, closeFn, err := newSearchService(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeFn()
			s.searcher = svc
		} else {
			zap.L().Warn("serve: kakao.key not set, place search disabled")
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
			Handler: buildRouter(s, cfg.Server.AllowedOrigins),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// server holds what the HTTP handlers read. searcher and boundaries may be nil.
type server struct {
	presenter  *presenter.Presenter
	searcher   presenter.Searcher
	boundaries []geo.Boundary
	nameField  string
	policy     string
}

func buildRouter(s *server, origins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/rank", s.handleRank)
		r.Get("/rank/tooltip", s.handleTooltip)
		r.Get("/places", s.handlePlaces)
		r.Get("/clusters/{district}", s.handleCluster)
		r.Get("/view", s.handleView)
		r.Post("/view/toggle", s.handleToggle)
		r.Put("/view/mode", s.handleSetMode)
		r.Get("/map", s.handleMap)
		r.Get("/legend", s.handleLegend)
	})

	return r
}

type rankResponse struct {
	Weights model.Weights           `json:"weights"`
	Ranking []model.ScoredDistrict  `json:"ranking"`
	Chart   presenter.Chart         `json:"chart"`
	List    []presenter.RankingItem `json:"list"`
}

// handleRank reranks with the query weights. Missing weights keep the current value.
func (s *server) handleRank(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	set := map[string]float64{}
	for _, name := range []string{model.FacilityHospital, model.FacilityCafe, model.FacilityPark} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("%s must be a number", name))
			return
		}
		set[name] = v
	}
	top := 0
	if raw := q.Get("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "top must be a positive integer")
			return
		}
		top = n
	}

	var weights model.Weights
	ranking := s.presenter.UpdateRanking(func(cur *model.Weights, topN *int) {
		if v, ok := set[model.FacilityHospital]; ok {
			cur.Hospital = v
		}
		if v, ok := set[model.FacilityCafe]; ok {
			cur.Cafe = v
		}
		if v, ok := set[model.FacilityPark]; ok {
			cur.Park = v
		}
		if top > 0 {
			*topN = top
		}
		weights = *cur
	})
	writeJSON(w, http.StatusOK, rankResponse{
		Weights: weights,
		Ranking: ranking,
		Chart:   presenter.BuildChart(ranking),
		List:    presenter.BuildRankingList(ranking),
	})
}

func (s *server) handleTooltip(w http.ResponseWriter, r *http.Request) {
	ds, err1 := strconv.Atoi(r.URL.Query().Get("dataset"))
	idx, err2 := strconv.Atoi(r.URL.Query().Get("index"))
	if err1 != nil || err2 != nil {
		writeError(w, http.StatusBadRequest, "dataset and index must be integers")
		return
	}
	text, ok := s.presenter.Tooltip(ds, idx)
	if !ok {
		writeError(w, http.StatusNotFound, "no such chart point")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"tooltip": text})
}

func (s *server) handlePlaces(w http.ResponseWriter, r *http.Request) {
	if s.searcher == nil {
		writeError(w, http.StatusServiceUnavailable, "place search is not configured")
		return
	}
	keyword := r.URL.Query().Get("q")
	if keyword == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}
	name := r.URL.Query().Get("policy")
	if name == "" {
		name = s.policy
	}
	policy, err := classify.ParsePolicy(name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	view := s.presenter.Search(r.Context(), s.searcher, keyword, policy)
	if view.SearchError != "" {
		writeError(w, http.StatusBadGateway, view.SearchError)
		return
	}
	places := view.Places
	if places == nil {
		places = []model.Place{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"keyword": view.Keyword,
		"policy":  view.Policy,
		"places":  places,
	})
}

func (s *server) handleCluster(w http.ResponseWriter, r *http.Request) {
	district := chi.URLParam(r, "district")
	writeJSON(w, http.StatusOK, map[string]any{
		"popup":       s.presenter.Popup(district),
		"style":       s.presenter.Style(district),
		"hover_style": s.presenter.Hover(district),
	})
}

func (s *server) handleView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.presenter.View())
}

func (s *server) handleToggle(w http.ResponseWriter, r *http.Request) {
	mode := s.presenter.Toggle()
	writeJSON(w, http.StatusOK, map[string]any{"mode": mode, "legend": s.presenter.Legend()})
}

func (s *server) handleSetMode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mode string `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var mode presenter.DisplayMode
	switch req.Mode {
	case presenter.Clustered.String():
		mode = presenter.Clustered
	case presenter.Unclustered.String():
		mode = presenter.Unclustered
	default:
		writeError(w, http.StatusBadRequest, "mode must be clustered or unclustered")
		return
	}

	changed := s.presenter.SetMode(mode)
	writeJSON(w, http.StatusOK, map[string]any{"mode": mode, "changed": changed})
}

func (s *server) handleMap(w http.ResponseWriter, r *http.Request) {
	if len(s.boundaries) == 0 {
		writeError(w, http.StatusNotFound, "no district boundaries loaded")
		return
	}
	fc := presenter.MapFeatures(s.boundaries, s.nameField, s.presenter.Mode(), s.presenter.Clusters())
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(fc); err != nil {
		zap.L().Error("serve: encode map features", zap.Error(err))
	}
}

func (s *server) handleLegend(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.presenter.Legend())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("serve: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

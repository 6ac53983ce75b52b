package presenter

import (
	"fmt"

	"github.com/pawmap/pawmap/internal/model"
)

// ChartTitle heads the stacked score chart.
const ChartTitle = "행정동별 시설 점수 (가중치 적용)"

// YAxisTitle labels the chart's score axis.
const YAxisTitle = "가중치 적용 점수"

// Dataset is one stacked bar series.
type Dataset struct {
	Label           string    `json:"label"`
	Data            []float64 `json:"data"`
	BackgroundColor string    `json:"backgroundColor"`
	BorderColor     string    `json:"borderColor"`
	BorderWidth     int       `json:"borderWidth"`
}

// Chart is the stacked bar chart of weighted sub-scores for the ranked districts.
type Chart struct {
	Title    string    `json:"title"`
	YAxis    string    `json:"yAxis"`
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

type series struct {
	label string
	kind  string
	fill  string
	line  string
}

var chartSeries = []series{
	{model.LabelHospital, model.FacilityHospital, "rgba(255, 99, 132, 0.7)", "rgba(255, 99, 132, 1)"},
	{model.LabelCafe, model.FacilityCafe, "rgba(54, 162, 235, 0.7)", "rgba(54, 162, 235, 1)"},
	{model.LabelPark, model.FacilityPark, "rgba(75, 192, 192, 0.7)", "rgba(75, 192, 192, 1)"},
}

// BuildChart lays out ranking as three stacked datasets in hospital, cafe, park order.
func BuildChart(ranking []model.ScoredDistrict) Chart {
	c := Chart{
		Title:    ChartTitle,
		YAxis:    YAxisTitle,
		Labels:   make([]string, 0, len(ranking)),
		Datasets: make([]Dataset, len(chartSeries)),
	}
	for i, s := range chartSeries {
		c.Datasets[i] = Dataset{
			Label:           s.label,
			Data:            make([]float64, 0, len(ranking)),
			BackgroundColor: s.fill,
			BorderColor:     s.line,
			BorderWidth:     1,
		}
	}
	for _, d := range ranking {
		c.Labels = append(c.Labels, d.Name)
		c.Datasets[0].Data = append(c.Datasets[0].Data, d.HospitalScore)
		c.Datasets[1].Data = append(c.Datasets[1].Data, d.CafeScore)
		c.Datasets[2].Data = append(c.Datasets[2].Data, d.ParkScore)
	}
	return c
}

// Tooltip formats the hover label for one bar segment; datasetIndex follows BuildChart's order.
// It reports false when either index is out of range.
func Tooltip(ranking []model.ScoredDistrict, datasetIndex, dataIndex int) (string, bool) {
	if dataIndex < 0 || dataIndex >= len(ranking) || datasetIndex < 0 || datasetIndex >= len(chartSeries) {
		return "", false
	}
	d := ranking[dataIndex]
	var score float64
	var count int
	switch chartSeries[datasetIndex].kind {
	case model.FacilityHospital:
		score, count = d.HospitalScore, d.HospitalCount
	case model.FacilityCafe:
		score, count = d.CafeScore, d.CafeCount
	case model.FacilityPark:
		score, count = d.ParkScore, d.ParkCount
	}
	return fmt.Sprintf("%s: %.1f점 (%d개)", chartSeries[datasetIndex].label, score, count), true
}

// RankingItem is one entry of the ranking list.
type RankingItem struct {
	Rank    int    `json:"rank"`
	Name    string `json:"name"`
	Score   string `json:"score"`
	Summary string `json:"summary"`
}

// BuildRankingList formats ranking for the list beside the chart.
func BuildRankingList(ranking []model.ScoredDistrict) []RankingItem {
	items := make([]RankingItem, 0, len(ranking))
	for i, d := range ranking {
		items = append(items, RankingItem{
			Rank:  i + 1,
			Name:  d.Name,
			Score: fmt.Sprintf("%.1f점", d.Score),
			Summary: fmt.Sprintf("%s: %d개, %s: %d개, %s: %d개",
				model.LabelHospital, d.HospitalCount,
				model.LabelCafe, d.CafeCount,
				model.LabelPark, d.ParkCount),
		})
	}
	return items
}

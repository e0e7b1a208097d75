package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/samber/lo"
)

// FailedLabel groups the images that produced no prediction
const FailedLabel = "Error"

// Row is the outcome of classifying one file in a batch
type Row struct {
	File       string
	Prediction string // empty when the request failed
	Message    string // error message shown to the user
}

// Failed reports whether the row holds an error
func (r Row) Failed() bool {
	return r.Prediction == ""
}

// Bucket is one bar of the chart
type Bucket struct {
	Label string
	Count int
}

// CountPredictions groups rows by prediction, most frequent first.
// Failed rows are counted under FailedLabel.
func CountPredictions(rows []Row) []Bucket {
	labels := lo.Map(rows, func(r Row, _ int) string {
		if r.Failed() {
			return FailedLabel
		}
		return r.Prediction
	})

	buckets := lo.MapToSlice(lo.CountValues(labels), func(label string, n int) Bucket {
		return Bucket{Label: label, Count: n}
	})
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Count != buckets[j].Count {
			return buckets[i].Count > buckets[j].Count
		}
		return buckets[i].Label < buckets[j].Label
	})
	return buckets
}

// RenderChart writes an HTML bar chart of the prediction counts
func RenderChart(w io.Writer, title string, rows []Row) error {
	buckets := CountPredictions(rows)

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("%d imágenes", len(rows)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	labels := lo.Map(buckets, func(b Bucket, _ int) string { return b.Label })
	data := lo.Map(buckets, func(b Bucket, _ int) opts.BarData { return opts.BarData{Value: b.Count} })
	bar.SetXAxis(labels).AddSeries("Predicciones", data)

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// WriteChart renders the chart into the file at path
func WriteChart(path, title string, rows []Row) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create chart directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()

	return RenderChart(f, title, rows)
}

package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/christiemegill/social-media-analysis/stats"
)

// ReportFile is the name of the generated HTML document.
const ReportFile = "report.html"

// Render writes the overview charts as a single HTML page into dir, creating
// the directory when needed, and returns the path of the generated file.
func Render(dir string, overview stats.Overview) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	page := components.NewPage()
	page.PageTitle = "Social Media Analysis"
	page.AddCharts(
		postsPerHourChart(overview.ByHour),
		postsPerWeekdayChart(overview.ByWeekday),
		mediaChart(overview.ByMedia),
		engagementPerHourChart(overview.ByHour),
	)

	path := filepath.Join(dir, ReportFile)
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := page.Render(file); err != nil {
		file.Close()
		return "", fmt.Errorf("failed to render report: %w", err)
	}

	return path, file.Close()
}

func postsPerHourChart(buckets []stats.Bucket) *charts.Bar {
	labels, values := barSeries(buckets)

	bar := charts.NewBar()
	bar.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Posts per hour (UTC)"}))
	bar.SetXAxis(labels).AddSeries("posts", values)
	return bar
}

func postsPerWeekdayChart(buckets []stats.Bucket) *charts.Bar {
	labels, values := barSeries(buckets)

	bar := charts.NewBar()
	bar.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Posts per weekday (UTC)"}))
	bar.SetXAxis(labels).AddSeries("posts", values)
	return bar
}

func mediaChart(buckets []stats.Bucket) *charts.Pie {
	values := make([]opts.PieData, 0, len(buckets))
	for _, bucket := range buckets {
		values = append(values, opts.PieData{Name: bucket.Label, Value: bucket.Posts})
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Media types"}))
	pie.AddSeries("media", values)
	return pie
}

func engagementPerHourChart(buckets []stats.Bucket) *charts.Line {
	labels := make([]string, 0, len(buckets))
	values := make([]opts.LineData, 0, len(buckets))
	for _, bucket := range buckets {
		labels = append(labels, bucket.Label)
		values = append(values, opts.LineData{Value: bucket.AvgEngagement})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Average engagement per hour (UTC)"}))
	line.SetXAxis(labels).AddSeries("avg engagement", values)
	return line
}

func barSeries(buckets []stats.Bucket) ([]string, []opts.BarData) {
	labels := make([]string, 0, len(buckets))
	values := make([]opts.BarData, 0, len(buckets))
	for _, bucket := range buckets {
		labels = append(labels, bucket.Label)
		values = append(values, opts.BarData{Value: bucket.Posts})
	}
	return labels, values
}

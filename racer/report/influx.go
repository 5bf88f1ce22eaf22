package report

import (
	"context"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/baldhumanity/lidar-racer/racer"
)

// Measurement is the InfluxDB measurement generation points are written to.
const Measurement = "generation"

// PointWriter is the subset of the blocking write API the reporter needs.
type PointWriter interface {
	WritePoint(ctx context.Context, point ...*influxdb2_write.Point) error
}

// InfluxConfig locates the InfluxDB bucket.
type InfluxConfig struct {
	URL    string
	Token  string
	Org    string
	Bucket string
}

// InfluxReporter writes one point per generation. It implements racer.Reporter.
type InfluxReporter struct {
	client influxdb2.Client
	writer PointWriter
}

// NewInfluxReporter connects to InfluxDB and writes synchronously to the bucket.
func NewInfluxReporter(cfg InfluxConfig) *InfluxReporter {
	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	return &InfluxReporter{
		client: client,
		writer: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
	}
}

// NewInfluxReporterWithWriter uses an existing writer.
func NewInfluxReporterWithWriter(w PointWriter) *InfluxReporter {
	return &InfluxReporter{writer: w}
}

// GenerationPoint converts a report to a line-protocol point.
func GenerationPoint(r *racer.GenerationReport) *influxdb2_write.Point {
	p := influxdb2.NewPointWithMeasurement(Measurement).
		AddTag("run", r.RunID.String()).
		AddTag("driver", r.Driver).
		AddField("generation", r.Generation).
		AddField("ticks", r.Ticks).
		AddField("wins", r.Wins).
		AddField("crashes", r.Crashes).
		AddField("best", r.Best).
		AddField("mean", r.Mean).
		AddField("median", r.Median).
		AddField("stdev", r.Stdev).
		AddField("elapsed_ms", r.Elapsed.Milliseconds())
	if len(r.Ranking) > 0 {
		p.AddField("leader", r.Ranking[0].Index)
	}
	return p
}

// ReportGeneration writes the report as one point.
func (i *InfluxReporter) ReportGeneration(ctx context.Context, r *racer.GenerationReport) error {
	if err := i.writer.WritePoint(ctx, GenerationPoint(r)); err != nil {
		return fmt.Errorf("writing generation %d to influx: %w", r.Generation, err)
	}
	return nil
}

// Close releases the client, if the reporter owns one.
func (i *InfluxReporter) Close() {
	if i.client != nil {
		i.client.Close()
	}
}

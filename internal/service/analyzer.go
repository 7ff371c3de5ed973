package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/planbiir/gpause/internal/gpx"
	"github.com/planbiir/gpause/internal/metrics"
	"github.com/planbiir/gpause/internal/pause"
	"github.com/planbiir/gpause/internal/report"
)

// ErrInvalidGPX is returned when the input cannot be decoded as GPX.
var ErrInvalidGPX = errors.New("invalid GPX")

// Analyzer runs pause detection on GPX documents.
type Analyzer struct {
	detector *pause.Detector
	log      logrus.FieldLogger
}

// NewAnalyzer returns an Analyzer using detector. A nil logger falls back to
// the logrus standard logger.
func NewAnalyzer(detector *pause.Detector, logger logrus.FieldLogger) *Analyzer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Analyzer{detector: detector, log: logger}
}

// WithConfig returns an Analyzer sharing a's logger with different thresholds.
func (a *Analyzer) WithConfig(cfg pause.Config) (*Analyzer, error) {
	detector, err := pause.NewDetector(cfg, a.log)
	if err != nil {
		return nil, err
	}
	return &Analyzer{detector: detector, log: a.log}, nil
}

// Config returns the detection thresholds in use.
func (a *Analyzer) Config() pause.Config {
	return a.detector.Config()
}

// Analysis is the outcome of one run. Points holds the timestamped GPX points
// in the same order as Result.Fixes, so interval indices address both.
type Analysis struct {
	Doc    *gpx.GPX
	Points []gpx.Point
	Result *pause.Result
	Report *report.Report
}

// Analyze detects pauses in doc.
func (a *Analyzer) Analyze(ctx context.Context, doc *gpx.GPX, source string) (analysis *Analysis, err error) {
	started := time.Now()
	defer func() {
		pauses := 0
		if analysis != nil {
			pauses = len(analysis.Result.Intervals)
		}
		metrics.ObserveAnalysis(outcome(err), pauses, time.Since(started))
	}()

	log := a.log.WithField("source", source)

	points, dropped := doc.TimedPoints()
	if dropped > 0 {
		log.WithField("dropped", dropped).Warn("Ignoring points without timestamp")
	}

	fixes := make([]pause.Fix, len(points))
	for i, p := range points {
		fixes[i] = pause.Fix{Lat: p.Lat, Lon: p.Lon, Time: p.Time}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := a.detector.Detect(fixes)
	if err != nil {
		return nil, fmt.Errorf("detect pauses in %s: %w", source, err)
	}

	r := report.Build(source, result, a.detector.Config())
	r.DroppedPoints = dropped

	log.WithFields(logrus.Fields{
		"points":   len(fixes),
		"pauses":   len(result.Intervals),
		"elapsed":  time.Since(started),
		"pause_s":  r.Summary.PauseDuration,
		"moving_m": r.Summary.MovingDistance,
	}).Info("Track analyzed")

	return &Analysis{Doc: doc, Points: points, Result: result, Report: r}, nil
}

// AnalyzeGPX parses a GPX document from r and returns its report.
func (a *Analyzer) AnalyzeGPX(ctx context.Context, r io.Reader, source string) (*report.Report, error) {
	doc, err := gpx.ParseReader(r)
	if err != nil {
		metrics.ObserveAnalysis(metrics.OutcomeInvalidInput, 0, 0)
		return nil, fmt.Errorf("%w: %w", ErrInvalidGPX, err)
	}

	analysis, err := a.Analyze(ctx, doc, source)
	if err != nil {
		return nil, err
	}
	return analysis.Report, nil
}

// AnalyzeFile reads and analyzes the GPX file at path.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) (*Analysis, error) {
	doc, err := gpx.Parse(path)
	if err != nil {
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			return nil, err
		}
		metrics.ObserveAnalysis(metrics.OutcomeInvalidInput, 0, 0)
		return nil, fmt.Errorf("%w: %w", ErrInvalidGPX, err)
	}

	return a.Analyze(ctx, doc, path)
}

// IsInvalidInput reports whether err was caused by the track rather than by
// the service.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidGPX) ||
		errors.Is(err, pause.ErrInsufficientData) ||
		errors.Is(err, pause.ErrUnordered) ||
		errors.Is(err, pause.ErrMissingTimestamp)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case IsInvalidInput(err):
		return metrics.OutcomeInvalidInput
	default:
		return metrics.OutcomeError
	}
}

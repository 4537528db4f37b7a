package app

import (
	"context"
	"time"

	"abtest/domain/core"
	"abtest/domain/dataset"
	"abtest/domain/stats"
	"abtest/internal"
	"abtest/internal/errors"
	"abtest/internal/profiling"
	"abtest/internal/report"
	"abtest/ports"
)

// ABTestService runs the load, describe, select and test pipeline for one
// experiment
type ABTestService struct {
	source   ports.GroupSource
	selector ports.TestSelector
	metric   string
	maxRows  int
	logger   *internal.Logger
}

// ABTestRequest configures a service
type ABTestRequest struct {
	Metric  string // column compared between the groups
	MaxRows int    // rows kept in head/tail excerpts
}

// NewABTestService creates an A/B test service
func NewABTestService(source ports.GroupSource, selector ports.TestSelector, req ABTestRequest, logger *internal.Logger) *ABTestService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &ABTestService{
		source:   source,
		selector: selector,
		metric:   req.Metric,
		maxRows:  req.MaxRows,
		logger:   logger,
	}
}

type loadedGroups struct {
	tables  [2]*dataset.Table
	samples [2]stats.Sample
	report  *report.Report
}

// Describe loads both groups and summarises them without testing
func (s *ABTestService) Describe(ctx context.Context) (*report.Report, error) {
	loaded, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return loaded.report, nil
}

// Run loads both groups, summarises them and runs the selected test on the metric
func (s *ABTestService) Run(ctx context.Context) (*report.Report, error) {
	startTime := time.Now()

	loaded, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	decision, err := s.selector.Select(ctx, loaded.samples[0], loaded.samples[1])
	if err != nil {
		return nil, errors.Wrapf(err, "failed to compare %s", s.metric)
	}
	loaded.report.Decision = decision

	s.logger.Info("[ABTestService] Run %s finished in %s: %s (%s)",
		loaded.report.RunID, time.Since(startTime).Round(time.Millisecond), decision.Verdict, decision.Reason)
	return loaded.report, nil
}

func (s *ABTestService) load(ctx context.Context) (*loadedGroups, error) {
	if s.metric == "" {
		return nil, errors.ConfigInvalid("no metric column configured")
	}

	runID := core.NewRunID()
	s.logger.Info("[ABTestService] Run %s: comparing %q from %s", runID, s.metric, s.source.Location())

	control, test, err := s.source.LoadGroups(ctx)
	if err != nil {
		return nil, err
	}

	r := &report.Report{
		RunID:  runID,
		Source: s.source.Location(),
		Metric: s.metric,
	}
	loaded := &loadedGroups{tables: [2]*dataset.Table{control, test}, report: r}

	groups := [2]stats.Group{stats.GroupControl, stats.GroupTest}
	for i, table := range loaded.tables {
		summary, err := profiling.Describe(table, s.maxRows)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to describe %s", table.Name)
		}
		r.Summaries = append(r.Summaries, summary)

		values, skipped, err := table.Column(s.metric)
		if err != nil {
			return nil, err
		}
		if skipped > 0 {
			s.logger.Warn("[ABTestService] %s: skipped %d empty %q cells", table.Name, skipped, s.metric)
		}

		s.logger.Trace("[ABTestService] %s %q values: %v", table.Name, s.metric, values)
		sample := stats.NewSample(groups[i], s.metric, values)
		loaded.samples[i] = sample
		r.Groups = append(r.Groups, report.GroupStats{
			Group:   groups[i],
			Sheet:   table.Name,
			N:       sample.Len(),
			Skipped: skipped,
			Mean:    sample.Mean(),
		})
	}

	return loaded, nil
}

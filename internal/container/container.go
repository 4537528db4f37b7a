package container

import (
	"abtest/adapters/excel"
	"abtest/adapters/stats/hypothesis"
	"abtest/app"
	"abtest/internal"
	"abtest/internal/config"
	"abtest/internal/errors"
	"abtest/internal/report"
)

// Container holds the wired components of one CLI invocation
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	Source   *excel.SheetSource
	Selector *hypothesis.Selector
	Service  *app.ABTestService
	Renderer report.Renderer
}

// New wires the source, selector, service and renderer from cfg. A nil
// logger is derived from the configured log level.
func New(cfg *config.Config, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, errors.ConfigInvalid("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Data.Workbook == "" {
		return nil, errors.ConfigInvalid("no workbook given; pass a path or set ABTEST_WORKBOOK")
	}
	if logger == nil {
		logger = internal.NewLogger(internal.ParseLogLevel(cfg.Logging.Level))
	}

	renderer, err := report.NewRenderer(ReportOptions(cfg.Output))
	if err != nil {
		return nil, err
	}

	c := &Container{
		Config:   cfg,
		Logger:   logger,
		Source:   excel.NewSheetSource(SourceConfig(cfg.Data), logger),
		Selector: hypothesis.NewSelector(logger),
		Renderer: renderer,
	}
	c.Service = app.NewABTestService(c.Source, c.Selector, app.ABTestRequest{
		Metric:  cfg.Data.Metric,
		MaxRows: cfg.Output.MaxRows,
	}, logger)

	return c, nil
}

// SourceConfig maps data settings onto the sheet source layout
func SourceConfig(data config.DataConfig) excel.SourceConfig {
	src := excel.SourceConfig{
		ControlFile:  data.Workbook,
		ControlSheet: data.ControlSheet,
		TestFile:     data.Workbook,
		TestSheet:    data.TestSheet,
	}
	if data.TestWorkbook != "" {
		src.TestFile = data.TestWorkbook
	}
	return src
}

// ReportOptions maps output settings onto renderer options
func ReportOptions(out config.OutputConfig) report.Options {
	return report.Options{
		Format:    out.Format,
		Precision: out.Precision,
		MaxRows:   out.MaxRows,
		Color:     out.Color,
	}
}

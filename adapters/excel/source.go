package excel

import (
	"context"

	"abtest/domain/dataset"
	"abtest/internal"
	"abtest/internal/errors"
)

// SheetSource loads the two experiment groups from workbook sheets or CSV files
type SheetSource struct {
	config SourceConfig
	logger *internal.Logger
}

// NewSheetSource creates a source for the configured files
func NewSheetSource(config SourceConfig, logger *internal.Logger) *SheetSource {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &SheetSource{config: config, logger: logger}
}

// LoadGroups reads the control table, then the test table
func (s *SheetSource) LoadGroups(ctx context.Context) (control, test *dataset.Table, err error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if s.config.ControlFile == "" || s.config.TestFile == "" {
		return nil, nil, errors.ConfigInvalid("no input file given for the control and test groups")
	}

	control, err = NewDataReader(s.config.ControlFile, s.logger).ReadSheet(s.config.ControlSheet)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to load control group")
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	test, err = NewDataReader(s.config.TestFile, s.logger).ReadSheet(s.config.TestSheet)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to load test group")
	}

	return control, test, nil
}

// Location names the file or files the groups are read from
func (s *SheetSource) Location() string {
	if s.config.ControlFile == s.config.TestFile {
		return s.config.ControlFile
	}
	return s.config.ControlFile + ", " + s.config.TestFile
}

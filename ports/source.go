package ports

import (
	"context"

	"abtest/domain/dataset"
)

// GroupSource loads the raw control and test tables of an experiment
type GroupSource interface {
	LoadGroups(ctx context.Context) (control, test *dataset.Table, err error)
	// Location names where the tables come from, for reports
	Location() string
}

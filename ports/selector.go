package ports

import (
	"context"

	"abtest/domain/stats"
)

// TestSelector checks the assumptions on two samples, picks the location
// test they allow and runs it
type TestSelector interface {
	Select(ctx context.Context, control, test stats.Sample) (*stats.Decision, error)
}

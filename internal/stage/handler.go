package stage

import (
	"context"

	"voltcheck/internal/records"
)

// Handler describes the contract the workflow manager needs from each stage.
type Handler interface {
	Prepare(context.Context, *records.Item) error
	Execute(context.Context, *records.Item) error
	HealthCheck(context.Context) Health
}

// Package pipeline provides the stage infrastructure and the frame types the
// stages exchange.
package pipeline

import (
	"context"
)

// Stage is one step of an encode run. The source and encode stages run
// concurrently and meet on a frame channel.
type Stage[In, Out any] interface {
	Execute(ctx context.Context, input In) (Out, error)
}

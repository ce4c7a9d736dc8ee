package clock

import (
	"time"

	"go.uber.org/fx"
)

var Module = fx.Module("clock",
	fx.Provide(New),
)

// Clock abstracts time so services can be tested deterministically.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func New() Clock {
	return systemClock{}
}

// Now returns the wall clock in the process location. Stored timestamps are
// compared without zone conversion, so the local zone is kept.
func (systemClock) Now() time.Time {
	return time.Now()
}

package ecgheader

//go:generate mockgen -destination=mock_ecgheader.go -package=ecgheader github.com/carverauto/ecgprobe/pkg/ecgheader Clock

import "time"

// Clock supplies the reference time for the plausibility check.
type Clock interface {
	Now() time.Time
}

// realClock implements Clock using the local wall clock.
type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

// SystemClock returns the Clock a Decoder uses by default.
func SystemClock() Clock {
	return realClock{}
}

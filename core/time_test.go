package core_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/koru3d/gpu/core"
)

func TestNewTime(t *testing.T) {
	c := qt.New(t)

	timeService := core.NewTime(core.TimeConfiguration{
		FramesPerSecond: 30,
		EventPollDelay:  5,
	})
	defer timeService.Stop()

	c.Assert(timeService.Fps(), qt.Equals, 30)
	c.Assert(timeService.FpsTicker(), qt.Not(qt.IsNil))
	c.Assert(timeService.EventTicker(), qt.Not(qt.IsNil))
}

func TestNewTimeUnlimited(t *testing.T) {
	c := qt.New(t)

	timeService := core.NewTime(core.TimeConfiguration{})
	defer timeService.Stop()

	c.Assert(timeService.Fps(), qt.Equals, 0)

	// An unlimited ticker must still deliver
	<-timeService.FpsTicker().C
}

package entity

import (
	"github.com/tsinghua-fib-lab/fuzzysim/clock"
	"github.com/tsinghua-fib-lab/fuzzysim/utils/config"
)

type ITaskContext interface {
	Clock() *clock.Clock
	Road() IRoad
	TrafficLight() ITrafficLight
	CarManager() ICarManager
	RuntimeConfig() *config.RuntimeConfig
}

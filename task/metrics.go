package task

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var metrics = struct {
	step         prometheus.Gauge
	activeCars   prometheus.Gauge
	spawned      prometheus.Counter
	finished     prometheus.Counter
	evaluations  prometheus.Counter
	nonFinite    prometheus.Counter
	overtakes    prometheus.Counter
	redLightRuns prometheus.Counter
}{
	step: promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fuzzysim_step",
		Help: "The current simulation step",
	}),
	activeCars: promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fuzzysim_active_cars",
		Help: "The number of cars on the road",
	}),
	spawned: promauto.NewCounter(prometheus.CounterOpts{
		Name: "fuzzysim_cars_spawned_total",
		Help: "The total number of cars spawned, oncoming cars included",
	}),
	finished: promauto.NewCounter(prometheus.CounterOpts{
		Name: "fuzzysim_cars_finished_total",
		Help: "The total number of cars that left the road",
	}),
	evaluations: promauto.NewCounter(prometheus.CounterOpts{
		Name: "fuzzysim_controller_evaluations_total",
		Help: "The total number of fuzzy controller evaluations",
	}),
	nonFinite: promauto.NewCounter(prometheus.CounterOpts{
		Name: "fuzzysim_controller_non_finite_total",
		Help: "The total number of evaluations whose steering or speed output was not finite",
	}),
	overtakes: promauto.NewCounter(prometheus.CounterOpts{
		Name: "fuzzysim_overtakes_total",
		Help: "The total number of overtaking maneuvers started",
	}),
	redLightRuns: promauto.NewCounter(prometheus.CounterOpts{
		Name: "fuzzysim_red_light_runs_total",
		Help: "The total number of cars that crossed the stop line on red",
	}),
}

// observe 把车辆统计的增量同步到监控指标
func (ctx *Context) observe() {
	s := ctx.carManager.Stats()
	last := ctx.lastStats
	metrics.step.Set(float64(ctx.clock.Step))
	metrics.activeCars.Set(float64(len(ctx.carManager.Data())))
	metrics.spawned.Add(float64(s.Spawned - last.Spawned))
	metrics.finished.Add(float64(s.Finished - last.Finished))
	metrics.evaluations.Add(float64(s.Evaluations - last.Evaluations))
	metrics.nonFinite.Add(float64(s.NonFinite - last.NonFinite))
	metrics.overtakes.Add(float64(s.Overtakes - last.Overtakes))
	metrics.redLightRuns.Add(float64(s.RedLightRuns - last.RedLightRuns))
	ctx.lastStats = s
}

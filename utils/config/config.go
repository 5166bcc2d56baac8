package config

import "fmt"

// 默认值
const (
	DefaultLaneWidth     = 3.5
	DefaultRoadMaxSpeed  = 16.7
	DefaultCarLength     = 4.5
	DefaultMaxSpeedMean  = 13.9
	DefaultSlowSpeed     = 6
	DefaultOncomingSpeed = 11
)

// RuntimeConfig 运行时配置
// 功能：存储补全默认值并校验后的配置
type RuntimeConfig struct {
	All Config  // 全部配置
	C   Control // 全局控制配置
}

// NewRuntimeConfig 根据配置初始化运行时配置
// 功能：补全缺省项并校验取值范围
// 参数：config-原始配置对象
// 返回：运行时配置指针，配置非法时返回错误
func NewRuntimeConfig(config Config) (*RuntimeConfig, error) {
	setDefault(&config.Road.LaneWidth, DefaultLaneWidth)
	setDefault(&config.Road.MaxSpeed, DefaultRoadMaxSpeed)
	setDefault(&config.Cars.Length, DefaultCarLength)
	setDefault(&config.Cars.MaxSpeedMean, DefaultMaxSpeedMean)
	setDefault(&config.Cars.SlowSpeed, DefaultSlowSpeed)
	setDefault(&config.Cars.OncomingSpeed, DefaultOncomingSpeed)
	if err := validate(config); err != nil {
		return nil, err
	}
	return &RuntimeConfig{All: config, C: config.Control}, nil
}

func setDefault(v *float64, d float64) {
	if *v == 0 {
		*v = d
	}
}

func validate(c Config) error {
	switch {
	case c.Control.Step.Interval <= 0:
		return fmt.Errorf("config: control.step.interval must be positive, got %v", c.Control.Step.Interval)
	case c.Control.Step.Total <= 0:
		return fmt.Errorf("config: control.step.total must be positive, got %v", c.Control.Step.Total)
	case c.Road.Length <= 0:
		return fmt.Errorf("config: road.length must be positive, got %v", c.Road.Length)
	case c.Light.Position < 0 || c.Light.Position > c.Road.Length:
		return fmt.Errorf("config: light.position %v out of road [0, %v]", c.Light.Position, c.Road.Length)
	case !c.Light.Disabled && c.Light.Green+c.Light.Yellow+c.Light.Red+c.Light.RedYellow <= 0:
		return fmt.Errorf("config: light cycle must be positive")
	case c.Light.Green < 0 || c.Light.Yellow < 0 || c.Light.Red < 0 || c.Light.RedYellow < 0:
		return fmt.Errorf("config: light phase durations must be non-negative")
	case c.Cars.Count < 0:
		return fmt.Errorf("config: cars.count must be non-negative, got %v", c.Cars.Count)
	case c.Cars.Count > 0 && c.Cars.SpawnInterval <= 0:
		return fmt.Errorf("config: cars.spawn_interval must be positive, got %v", c.Cars.SpawnInterval)
	case c.Cars.SlowRatio < 0 || c.Cars.SlowRatio > 1:
		return fmt.Errorf("config: cars.slow_ratio must be in [0, 1], got %v", c.Cars.SlowRatio)
	case c.Cars.OncomingInterval < 0:
		return fmt.Errorf("config: cars.oncoming_interval must be non-negative, got %v", c.Cars.OncomingInterval)
	case c.Fuzzy.IntegralSteps < 0:
		return fmt.Errorf("config: fuzzy.integral_steps must be non-negative, got %v", c.Fuzzy.IntegralSteps)
	}
	for i, o := range c.Light.Outages {
		if o.Start >= o.End {
			return fmt.Errorf("config: light.outages[%d] is empty: [%d, %d)", i, o.Start, o.End)
		}
	}
	for i, o := range c.Light.PhaseOverrides {
		if o.Phase < 0 || o.Remaining <= 0 {
			return fmt.Errorf("config: light.phase_overrides[%d] needs phase >= 0 and remaining > 0, got %d and %v", i, o.Phase, o.Remaining)
		}
	}
	return nil
}

// InOutage 第step步是否处于某个失效时段内
func (l Light) InOutage(step int32) bool {
	for _, o := range l.Outages {
		if step >= o.Start && step < o.End {
			return true
		}
	}
	return false
}

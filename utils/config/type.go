package config

// ControlStep 指定模拟器模拟时间范围和间隔的配置项
// 功能：定义仿真时间控制参数
type ControlStep struct {
	Start    int32   `yaml:"start"`    // 开始步数
	Total    int32   `yaml:"total"`    // 总步数
	Interval float64 `yaml:"interval"` // 每步的时间间隔（秒）
}

// Control 模拟器控制配置
type Control struct {
	Step ControlStep `yaml:"step"`
	Seed uint64      `yaml:"seed,omitempty"` // 随机数种子
}

// Road 直线双车道道路
// 说明：右侧车道为本向车道，左侧车道为对向车道，超车时借用
type Road struct {
	Length    float64 `yaml:"length"`               // 道路长度（米）
	LaneWidth float64 `yaml:"lane_width,omitempty"` // 车道宽度（米），默认3.5
	MaxSpeed  float64 `yaml:"max_speed,omitempty"`  // 道路限速（米/秒）
}

// Light 定周期信号灯
type Light struct {
	Position  float64 `yaml:"position"`             // 停止线位置（米）
	Green     float64 `yaml:"green"`                // 绿灯时长（秒）
	Yellow    float64 `yaml:"yellow"`               // 黄灯时长（秒）
	Red       float64 `yaml:"red"`                  // 红灯时长（秒）
	RedYellow float64 `yaml:"red_yellow,omitempty"` // 红黄灯时长（秒），可为0
	Offset    float64 `yaml:"offset,omitempty"`     // 相位偏移（秒）
	Disabled  bool    `yaml:"disabled,omitempty"`   // 失效（常绿）

	Outages        []LightOutage   `yaml:"outages,omitempty"`         // 失效时段
	PhaseOverrides []PhaseOverride `yaml:"phase_overrides,omitempty"` // 强制切换相位
}

// LightOutage 信号灯失效（常绿）的步数区间[Start, End)
type LightOutage struct {
	Start int32 `yaml:"start"`
	End   int32 `yaml:"end"`
}

// PhaseOverride 在Step步的更新阶段把信号灯切到指定相位
type PhaseOverride struct {
	Step      int32   `yaml:"step"`
	Phase     int32   `yaml:"phase"`     // 相位下标，时长为0的相位不计入
	Remaining float64 `yaml:"remaining"` // 剩余时间（秒），不超过该相位时长
}

// Cars 车辆生成配置
type Cars struct {
	Count            int32   `yaml:"count"`                       // 本向车辆总数
	SpawnInterval    float64 `yaml:"spawn_interval"`              // 本向车辆生成间隔（秒）
	Length           float64 `yaml:"length,omitempty"`            // 车长（米），默认4.5
	MaxSpeedMean     float64 `yaml:"max_speed_mean,omitempty"`    // 期望最大速度均值（米/秒）
	MaxSpeedStd      float64 `yaml:"max_speed_std,omitempty"`     // 期望最大速度标准差
	SlowRatio        float64 `yaml:"slow_ratio,omitempty"`        // 慢车比例
	SlowSpeed        float64 `yaml:"slow_speed,omitempty"`        // 慢车最大速度（米/秒）
	SensorNoise      float64 `yaml:"sensor_noise,omitempty"`      // 偏离程度观测噪声标准差
	OncomingInterval float64 `yaml:"oncoming_interval,omitempty"` // 对向车辆生成间隔（秒），0表示无对向车
	OncomingSpeed    float64 `yaml:"oncoming_speed,omitempty"`    // 对向车辆速度（米/秒）
}

// Fuzzy 模糊控制器配置
type Fuzzy struct {
	IntegralSteps int    `yaml:"integral_steps,omitempty"` // 去模糊化积分步数，0表示规则库或引擎默认值
	RuleBase      string `yaml:"rule_base,omitempty"`      // 规则库文件路径，为空则使用内置规则库
}

// Output 输出配置
type Output struct {
	URI string `yaml:"uri,omitempty"` // MongoDB连接字符串，为空则只保存在内存中
	DB  string `yaml:"db,omitempty"`  // 数据库名
	Col string `yaml:"col,omitempty"` // 集合名，默认为任务名
}

// Config YAML配置文件的根结构
type Config struct {
	Control Control `yaml:"control"` // 模拟过程控制
	Road    Road    `yaml:"road"`
	Light   Light   `yaml:"light"`
	Cars    Cars    `yaml:"cars"`
	Fuzzy   Fuzzy   `yaml:"fuzzy,omitempty"`
	Output  Output  `yaml:"output,omitempty"`
}

// GetDb 数据库名
func (o Output) GetDb() string {
	return o.DB
}

// GetColl 集合名
func (o Output) GetColl() string {
	return o.Col
}

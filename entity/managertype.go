package entity

// Manager依赖倒置

// CarStats 车辆管理器的累计统计
type CarStats struct {
	Spawned      int32 // 已生成车辆数（含对向车）
	Finished     int32 // 驶离道路的车辆数
	Evaluations  int64 // 模糊推理次数
	NonFinite    int64 // 推理结果出现NaN/Inf并被替换的次数
	Overtakes    int32 // 进入借道超车状态的次数
	RedLightRuns int32 // 红灯时越过停止线的次数
}

// entity/car/manager.go的依赖倒置
type ICarManager interface {
	Init() // 初始化

	// 已生效的全部车辆
	Cars() []ICar
	// 累计统计
	Stats() CarStats

	Prepare()          // 准备阶段
	Update(dt float64) // 更新阶段
}

package car

// State 车道变换状态
// 状态转移：Normal -> GoLeftLane -> StayLeftLane -> BackToRightLane -> Normal，
// GoLeftLane遇到对向来车时直接进入BackToRightLane
type State int32

const (
	StateNormal          State = iota // 在本车道行驶
	StateGoLeftLane                   // 驶入左侧车道
	StateStayLeftLane                 // 在左侧车道超越前车
	StateBackToRightLane              // 返回本车道
	numStates
)

// String 状态名，同时也是规则库中对应规则集的名字
func (s State) String() string {
	switch s {
	case StateNormal:
		return "normal"
	case StateGoLeftLane:
		return "go_left_lane"
	case StateStayLeftLane:
		return "stay_left_lane"
	case StateBackToRightLane:
		return "back_to_right_lane"
	default:
		return "unknown"
	}
}

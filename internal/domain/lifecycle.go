package domain

// 状态机：active -> cancelled | completed；cancelled/completed 为终态。
// 所有迁移都由 organizer 显式调用，没有自动迁移。
var eventTransitions = map[EventStatus][]EventStatus{
	EventStatusActive: {EventStatusCancelled, EventStatusCompleted},
}

// CanTransition 同状态视为 no-op，允许
func CanTransition(from, to EventStatus) error {
	if !to.Valid() {
		return Invalid("status", "unknown status "+string(to))
	}
	if from == to {
		return nil
	}
	for _, next := range eventTransitions[from] {
		if next == to {
			return nil
		}
	}
	return ErrInvalidTransition
}

package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Hook names called by the world.
const (
	HookPopulation   = "population"
	HookRespawnFloor = "respawn_floor"
)

// Population calls population(floor) and returns the per-group entity counts
// the script sets. Only non-negative integer fields of the returned table are
// reported; the caller keeps its own count for any group left out.
//
// Postcondition: ok is false when the hook is absent or returns a non-table.
func (m *Manager) Population(floor int) (map[string]int, bool) {
	ret, err := m.CallHook(HookPopulation, lua.LNumber(floor))
	if err != nil {
		return nil, false
	}
	tbl, isTable := ret.(*lua.LTable)
	if !isTable {
		return nil, false
	}
	counts := make(map[string]int)
	tbl.ForEach(func(k, v lua.LValue) {
		key, isString := k.(lua.LString)
		n, isNumber := v.(lua.LNumber)
		if !isString || !isNumber {
			return
		}
		if n < 0 || float64(n) != float64(int(n)) {
			m.logger.Warn("population hook returned invalid count",
				zap.Int("floor", floor),
				zap.String("group", string(key)),
				zap.Float64("count", float64(n)),
			)
			return
		}
		counts[string(key)] = int(n)
	})
	return counts, true
}

// RespawnFloor calls respawn_floor(from, floors) and returns the floor a
// delivered item should reappear on.
//
// Postcondition: ok is false when the hook is absent or the result is not an
// integer in [0, floors).
func (m *Manager) RespawnFloor(from, floors int) (int, bool) {
	ret, err := m.CallHook(HookRespawnFloor, lua.LNumber(from), lua.LNumber(floors))
	if err != nil {
		return 0, false
	}
	n, isNumber := ret.(lua.LNumber)
	if !isNumber {
		return 0, false
	}
	floor := int(n)
	if float64(floor) != float64(n) || floor < 0 || floor >= floors {
		m.logger.Warn("respawn_floor hook returned out-of-range floor",
			zap.Int("from", from),
			zap.Float64("floor", float64(n)),
			zap.Int("floors", floors),
		)
		return 0, false
	}
	return floor, true
}

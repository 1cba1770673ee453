// Package scripting runs the Lua world hooks that tune population and respawn.
// Scripts see a reduced standard library and a per-call opcode allowance; the
// domain reaches them only through the typed adapters in hooks.go.
package scripting

import (
	"context"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit is the opcode allowance for one hook call or one
// script file when sim.script_instruction_limit is 0.
const DefaultInstructionLimit = 100_000

// blockedGlobals are removed from every world VM: they load code from disk or
// outside the loaded script set, or reach into the collector.
var blockedGlobals = []string{"dofile", "loadfile", "load", "collectgarbage", "require"}

// opcodeContext cancels itself once Done has been polled limit times.
// gopher-lua polls Done once per executed opcode, so the poll count is the
// instruction count.
type opcodeContext struct {
	context.Context
	cancel context.CancelFunc
	left   atomic.Int64
}

// Done implements context.Context, spending one opcode of the allowance.
func (c *opcodeContext) Done() <-chan struct{} {
	if c.left.Add(-1) <= 0 {
		c.cancel()
	}
	return c.Context.Done()
}

func newOpcodeContext(limit int) (*opcodeContext, context.CancelFunc) {
	base, cancel := context.WithCancel(context.Background())
	c := &opcodeContext{Context: base, cancel: cancel}
	c.left.Store(int64(limit))
	return c, cancel
}

// ArmLimit gives L a fresh allowance of limit opcodes and returns the
// function that releases it. A runaway hook fails its own call without
// starving later ones.
//
// Precondition: limit >= 0; 0 uses DefaultInstructionLimit.
func ArmLimit(L *lua.LState, limit int) context.CancelFunc {
	if limit <= 0 {
		limit = DefaultInstructionLimit
	}
	ctx, cancel := newOpcodeContext(limit)
	L.SetContext(ctx)
	return cancel
}

// NewSandboxedState returns a world VM with the base, table, string and math
// libraries, none of blockedGlobals, and an armed allowance of instLimit
// opcodes.
//
// Precondition: instLimit >= 0; 0 uses DefaultInstructionLimit.
// Postcondition: The caller owns the state and must Close it.
func NewSandboxedState(instLimit int) *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, open := range []lua.LGFunction{lua.OpenBase, lua.OpenTable, lua.OpenString, lua.OpenMath} {
		open(L)
	}
	for _, name := range blockedGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	ArmLimit(L, instLimit)
	return L
}

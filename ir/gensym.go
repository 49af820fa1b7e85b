package ir

import (
	"fmt"

	"github.com/rs/xid"
)

// gensym generates auto-generated identifiers guaranteed unique within a
// module by appending a counter to the caller's prefix; no sigil is added,
// so a "loom_" prefix is the caller's choice. Each Module owns one gensym counter (an increasing generator, the
// same shape as the teacher's valgen.MakeIncreasingGen closures) so that
// fresh wire/cell names never collide with source-level names or with each
// other across repeated pass runs on the same module.
type gensym struct {
	next int
}

func newGensym() *gensym {
	return &gensym{}
}

// fresh returns a new name with the given prefix, e.g. fresh("loom_mux") ->
// "loom_mux_3".
func (g *gensym) fresh(prefix string) string {
	g.next++
	return fmt.Sprintf("%s_%d", prefix, g.next)
}

// freshGlobal returns a name unique across the whole design: prefix plus a
// short random xid suffix. No pass calls it; mem_shadow names its
// controller module loom_mem_ctrl and the dispatch table names wrappers
// loom_wrap_<name>, both without a random suffix.
func freshGlobal(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, xid.New().String())
}

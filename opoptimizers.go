package goocio

import (
	"github.com/yzigangirova/ocio-go/mem"
)

const maxOptimizationPasses = 8

// RemoveNoOpTypes drops the bookkeeping kinds that never touch pixels,
// whatever their parameters.
func RemoveNoOpTypes(ops *OpVec) int {
	removed := 0
	out := (*ops)[:0]
	for _, op := range *ops {
		switch op.Data().GetType() {
		case OpTypeNoOp, OpTypeAllocation:
			removed++
		default:
			out = append(out, op)
		}
	}
	*ops = out
	return removed
}

// RemoveNoOps drops every op whose data reports itself a no-op.
func RemoveNoOps(ops *OpVec) int {
	removed := 0
	out := (*ops)[:0]
	for _, op := range *ops {
		if op.IsNoOp() {
			removed++
			continue
		}
		out = append(out, op)
	}
	*ops = out
	return removed
}

// RemoveInverseOps erases adjacent pairs that cancel exactly. After a
// deletion the cursor re-anchors at max(0, i-1) so a pair made adjacent by
// the deletion is examined in the same sweep; nested patterns such as
// A, B, B', A' collapse to nothing in one call.
func RemoveInverseOps(ops *OpVec) int {
	removed := 0
	i := 0
	for i < len(*ops)-1 {
		if (*ops)[i].IsInverse((*ops)[i+1]) {
			*ops = append((*ops)[:i], (*ops)[i+2:]...)
			removed += 2
			if i > 0 {
				i--
			}
			continue
		}
		i++
	}
	return removed
}

// CombineOps merges adjacent compatible pairs, splicing in whatever the
// combination yields (possibly nothing). The cursor re-anchors at
// max(0, i-1) after each splice for the same cascade reason as inverse
// removal.
func CombineOps(ops *OpVec) (int, error) {
	combined := 0
	i := 0
	for i < len(*ops)-1 {
		first := (*ops)[i]
		second := (*ops)[i+1]
		if !first.CanCombineWith(second) {
			i++
			continue
		}
		var result OpVec
		if err := first.CombineWith(second, &result); err != nil {
			return combined, err
		}
		tail := append(OpVec{}, (*ops)[i+2:]...)
		*ops = append((*ops)[:i], result...)
		*ops = append(*ops, tail...)
		combined++
		if i > 0 {
			i--
		}
	}
	return combined, nil
}

// isCheapOp classifies ops that a baked lookup table would not beat.
func isCheapOp(op *Op) bool {
	switch op.Data().GetType() {
	case OpTypeMatrix, OpTypeRange:
		return true
	}
	return false
}

// FindSeparablePrefix returns the length of the maximal leading run of ops
// that are channel separable and not runtime dynamic, or zero when baking
// the run into a table would gain nothing.
func FindSeparablePrefix(ops OpVec) int {
	n := 0
	for _, op := range ops {
		if op.HasChannelCrosstalk() || op.IsDynamic() {
			break
		}
		n++
	}
	if n == 0 {
		return 0
	}
	if n == 1 {
		op := ops[0]
		if op.Data().GetType() == OpTypeLut1D && op.GetDirection() == TransformDirForward {
			return 0
		}
	}
	expensive := 0
	for _, op := range ops[:n] {
		if !isCheapOp(op) {
			expensive++
		}
	}
	if expensive == 0 {
		return 0
	}
	return n
}

// OptimizeSeparablePrefix replaces a qualifying leading run with a single
// forward 1D LUT sampled over a domain sized for the input bit depth. Float
// and 32-bit integer depths are left alone since their domains are too
// large to tabulate.
func OptimizeSeparablePrefix(mm mem.Manager, ops *OpVec, in BitDepth) error {
	if in == BitDepthF32 || in == BitDepthUint32 {
		return nil
	}
	prefixLen := FindSeparablePrefix(*ops)
	if prefixLen == 0 {
		return nil
	}

	prefix := (*ops)[:prefixLen].Clone()
	if err := FinalizeOpVec(prefix); err != nil {
		return err
	}
	domain := MakeLookupDomain(mm, in)
	ComposeVec(mm, domain, prefix)

	var baked OpVec
	if err := CreateLut1DOp(&baked, domain, TransformDirForward); err != nil {
		return err
	}
	tail := append(OpVec{}, (*ops)[prefixLen:]...)
	*ops = append(baked, tail...)
	return nil
}

// OptimizeOpVec reduces the sequence to a local fixed point in place. The
// rewrite loop runs at most maxOptimizationPasses sweeps and stops early
// once a full sweep changes nothing; hitting the budget is logged and is
// not an error.
func OptimizeOpVec(mm mem.Manager, ops *OpVec, in BitDepth, oFlags OptimizationFlags) error {
	if IsDebugLoggingEnabled() {
		LogDebug("Optimizing Op Vec...\n%s", SerializeOpVec(*ops, 4))
	}

	RemoveNoOpTypes(ops)

	total := 0
	passes := 0
	for passes < maxOptimizationPasses {
		changed := RemoveNoOps(ops)
		changed += RemoveInverseOps(ops)
		combined, err := CombineOps(ops)
		if err != nil {
			return err
		}
		changed += combined
		total += changed
		passes++
		if changed == 0 {
			break
		}
	}
	if passes == maxOptimizationPasses {
		LogDebug("Optimizer did not converge after %d passes.", passes)
	}

	if oFlags&OptimizationCompSeparablePrefix != 0 {
		if err := OptimizeSeparablePrefix(mm, ops, in); err != nil {
			return err
		}
	}

	if IsDebugLoggingEnabled() {
		LogDebug("Optimized %d ops away.\n%s", total, SerializeOpVec(*ops, 4))
	}
	return nil
}

package isel

import "errors"

// ErrIselFail is returned for a structurally invalid MIR instruction: a
// tag/family/operand combination this dispatcher has no rule for. This is
// a structural failure, not a lowering (operand-size) or resource
// (out-of-memory/overflow) failure; it means the MIR producer emitted
// something this backend was never told how to encode.
var ErrIselFail = errors.New("isel: no dispatch rule for this mir instruction")

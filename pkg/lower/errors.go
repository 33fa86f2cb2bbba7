package lower

import "errors"

// The lowering layer returns exactly these error categories (and wraps
// encbuf's ErrOutOfMemory); everything else invalid at this layer is a
// structural bug and panics instead of returning an error.
var (
	ErrOperandSizeMismatch = errors.New("lower: operand size mismatch")
	ErrRaxOperandExpected  = errors.New("lower: rax-family operand expected")
	ErrOverflow            = errors.New("lower: displacement does not fit in 32 bits")
)

package encbuf

import "errors"

// ErrOutOfMemory is returned by Reserve when the requested capacity cannot
// be satisfied. In practice this only fires on pathological (overflowing)
// size requests, since Go slices grow on demand, but the session's error
// surface still needs this category to exist and be distinguishable from a
// lowering error.
var ErrOutOfMemory = errors.New("encbuf: out of memory")

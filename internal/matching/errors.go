package matching

import "errors"

// Sentinel errors for the matching core. Matches the spec.md §7 error
// table: kinds that must surface as events never escape a worker loop as
// a Go error, they are translated at the point they occur. ErrBookOverflow
// is the one exception — it is fatal and propagates to kill the owning
// shard.
var (
	ErrInvalidFill    = errors.New("matching: fill exceeds open quantity")
	ErrDuplicateID    = errors.New("matching: order id already resting")
	ErrZeroQuantity   = errors.New("matching: order quantity must be > 0")
	ErrInvalidPrice   = errors.New("matching: market order carries nonzero price")
	ErrSymbolMismatch = errors.New("matching: order symbol does not match book symbol")
	ErrNotFound       = errors.New("matching: order id not resting")
	ErrBookOverflow   = errors.New("matching: price level volume overflow")
)

package probds

import "github.com/pkg/errors"

// Sentinel error kinds. Callers should compare with errors.Is; the
// concrete error returned from a failing call is usually wrapped with
// extra context via errors.Wrap.
var (
	// ErrInvalidIndex is returned for an out-of-range bit or counter
	// array access.
	ErrInvalidIndex = errors.New("probds: index out of range")

	// ErrCounterOverflow is returned when a counter cannot absorb an
	// increment without exceeding its maximum representable value.
	ErrCounterOverflow = errors.New("probds: counter overflow")

	// ErrCounterUnderflow is returned when a counter cannot absorb a
	// decrement without going below zero.
	ErrCounterUnderflow = errors.New("probds: counter underflow")

	// ErrFilterFull is returned by Cuckoo's insertion when eviction
	// exhausts its kick budget without finding room.
	ErrFilterFull = errors.New("probds: filter is full")

	// ErrInvalidParameters is returned for out-of-domain arguments
	// (percentile outside [0,1], zero width/depth, epsilon or delta
	// outside (0,1), a q-digest value outside its universe, and
	// similar).
	ErrInvalidParameters = errors.New("probds: invalid parameters")

	// ErrInvalidCompression is returned when a t-digest or q-digest
	// compression factor falls outside its supported range.
	ErrInvalidCompression = errors.New("probds: invalid compression factor")

	// ErrInvalidUniverseSize is returned when a q-digest universe is
	// not a positive power of two.
	ErrInvalidUniverseSize = errors.New("probds: universe size must be a positive power of two")

	// ErrInvalidPrecision is returned when a HyperLogLog precision
	// falls outside [4,16].
	ErrInvalidPrecision = errors.New("probds: precision out of range [4,16]")

	// ErrIncompatiblePrecision is returned when merging two
	// HyperLogLogs with different precisions.
	ErrIncompatiblePrecision = errors.New("probds: incompatible precision")

	// ErrIncompatibleDimensions is returned when merging two Count-Min
	// sketches whose width or depth don't match.
	ErrIncompatibleDimensions = errors.New("probds: incompatible sketch dimensions")

	// ErrEmptyDigest is returned by Quantile (t-digest and q-digest)
	// and TDigest.CDF on a digest that has never received a value.
	ErrEmptyDigest = errors.New("probds: digest is empty")
)

// Package storage defines the persistence contracts for cart snapshots plus
// the bundled adapters (memory, file, Redis, GORM).
//
// Responsibilities:
//   - Store[T] loads/saves a single serialized snapshot for a single Ref.
//   - Adapters own only the serialized copy; the live snapshot stays with the
//     cart container. Every save writes the record wholesale, so a crash
//     between transition and save loses at most the latest transition and
//     never corrupts an earlier record.
//   - A Load that finds nothing reports ok=false with a nil error; callers
//     fall back to their seed state.
//
// Deterministic keys:
//
//	Ref.Identifier() yields "<namespace>" for the implicit shared cart and
//	"<namespace>/<cart id>" when an explicit cart id is set, so multiple
//	carts can coexist in one medium without cross-cart coordination.
package storage

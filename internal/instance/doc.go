// Package instance provides the dense in-memory tables that rewriting
// operates on: one element table per schema sort plus total foreign-key
// and attribute columns.
//
// The representation keeps three invariants:
//
//   - Dense indexing: the elements of a sort are exactly 1..n with no
//     gaps. Index 0 is never a valid element; freshly allocated
//     foreign-key slots hold 0 until assigned.
//   - Totality: a validated instance has every foreign-key slot inside
//     the target sort's range and every attribute slot set.
//   - Referential integrity: foreign keys point at currently valid
//     indices, re-checked by Validate after construction.
//
// # Ownership
//
// Construction (AddElements, SetHom, SetAttr, and the per-slot setters)
// mutates the instance in place. Once an instance enters a rule or a
// rewrite call it is treated as read-only; rewriting never mutates its
// inputs and returns freshly built instances. Column accessors return the
// live backing slices for cheap reads, so callers must not write through
// them; the bulk setters copy their input.
//
// # Identity
//
// Fingerprint computes a content address over the canonical encoding
// (RFC 8785 canonical JSON, SHA-256 with domain separation), so two
// instances with identical tables have equal fingerprints regardless of
// construction order.
//
// Unknown sort or column names and out-of-range indices passed to
// accessors are programmer errors and panic; everything a caller can get
// wrong with well-formed names returns an error.
package instance

// Package rewrite applies double-pushout rewrite rules to instances.
//
// A rule is a span of homomorphisms L <-l- I -r-> R: the pattern L, the
// replacement R, and the interface I naming what survives. Applying the
// rule at a match m : L -> G deletes the host images of pattern elements
// outside l's image, keeps everything else, and glues in R.
//
// ARCHITECTURE:
//
// Check, carve, glue:
//  1. Applicability: the identification and dangling conditions are
//     decided BEFORE anything is built. A failed check costs nothing;
//     the host is never touched on any failure path.
//  2. Complement: the context K is carved out of the host with dense
//     renumbering (per sort, survivors keep their relative order and
//     indices compact by the orphan-offset sweep), producing k : I -> K
//     and g : K -> G.
//  3. Gluing: the result H is the pushout of R <-r- I -k-> K, delegated
//     to the pushout package.
//
// DETERMINISM:
//
// Rewrite enumerates candidate matches in the match package's fixed
// search order and filters them by applicability without reordering, so
// the n-th valid match is a pure function of (rule, host, options).
// Renumbering and gluing are deterministic, so equal inputs produce
// fingerprint-equal results.
//
// Errors are split by blame: PreconditionError for inputs that violate a
// caller-checkable contract, ConditionError inside it for the verbose
// applicability verdict, and ConsistencyError for states valid inputs
// cannot reach. Absence of a result is not an error: Rewrite reports it
// with ok == false.
package rewrite

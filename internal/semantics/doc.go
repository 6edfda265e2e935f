// Package semantics adds structural and accessibility markup to
// cleaned chapter HTML: section wrapping, heading-level normalization,
// verse-block detection, and semantic spans for Roman numerals,
// honorific abbreviations, and units of measure.
//
// Every pass is additive. No existing content is removed or reordered,
// and each pass is idempotent: enhancing a chapter twice yields the
// same markup as enhancing it once.
package semantics

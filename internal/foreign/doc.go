// Package foreign marks likely non-English spans in chapter HTML with
// a language attribute.
//
// Tagging runs in two phases. Phase 1 is a curated dictionary of
// phrases that are not common English loanwords; it either attributes
// an existing italic element or, for unambiguous multi-word phrases,
// wraps a plain-text match in a new italic element. Phase 2 is a
// statistical fallback over the remaining italic elements: elements
// whose tokens are mostly absent from a fixed English frequency set
// are tagged, with the language guessed from diagnostic diacritics.
// The dictionary phase runs first because the fallback skips elements
// that already carry a language.
//
// The tradeoff is deliberate: precision over recall. A missed foreign
// phrase reads fine; an English phrase mislabelled as foreign does not.
package foreign

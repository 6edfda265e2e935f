// Package spelling modernizes archaic spellings in chapter prose using
// a fixed, ordered rule table.
//
// Rules span six classes: archaic spellings, compound-word closures,
// punctuation fixes, geographic and cultural name modernizations,
// diacritical-mark corrections, and Latin ligature expansion. Every
// entry was pre-vetted as unambiguous, so rules apply unconditionally.
// Matching is whole-word and case-insensitive unless the source term
// is inherently capitalized; replacements preserve the casing of the
// matched text.
package spelling

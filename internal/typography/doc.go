// Package typography converts ASCII typewriter punctuation into
// typeset-quality Unicode forms: curly quotes, em and en dashes,
// ellipses, non-breaking spaces after honorifics, and hair spaces
// between nested quote marks.
//
// All passes operate on text segments only (see htmlseg) and must run
// in the documented order. Contraction apostrophes are resolved before
// quote marks, and double quotes before single quotes, because a
// later pass would otherwise misclassify the earlier pass's input.
package typography

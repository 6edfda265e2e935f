// Package htmlseg splits HTML strings into alternating tag and text
// segments so that text transforms can rewrite prose without touching
// markup.
//
// The scanner is deliberately non-validating: the source material is
// historical, uncurated HTML and cannot be assumed well-formed. An
// unterminated tag is returned as a trailing text segment rather than
// an error. Joining the segments always reproduces the input exactly.
package htmlseg

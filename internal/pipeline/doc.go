// Package pipeline sequences the per-chapter text transforms in their
// mandated order and carries the data model shared by the processing
// stages.
//
// Processing is two-phase. Phase one runs the pure transform chain per
// chapter (captions, base64 extraction, cleaning, typography,
// spelling, semantics, foreign tagging) and collects pending image
// uploads. Phase two runs after storage URLs are known and rewrites
// image references in the already-cleaned chapters. Network calls
// never happen inside the transforms themselves.
package pipeline

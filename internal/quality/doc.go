// Package quality scores a fully-processed book for publishability.
//
// Scoring starts at 100 and subtracts a fixed penalty per triggered
// signal: structural completeness, content volume, encoding integrity,
// and chapter-sequence sanity. The result is clamped to [0,100] and a
// book passes at 60 or above. Penalty weights are carried in a Weights
// struct so they can be tuned without touching the evaluation logic;
// DefaultWeights preserves the established constants.
package quality

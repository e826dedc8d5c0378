// Package joint defines box (finger) joint configurations and the pure
// functions that turn them into segments: the segment generator, the
// validation engine and the geometry list parser.
//
// Everything in this package is deterministic and free of side effects.
// Configuration problems are reported as error values (*ValidationError,
// *ParseError) so callers can decide whether to apply or reject an edit.
package joint

// Package carve turns a board's joint configuration into solid geometry.
//
// The groove mapper converts each groove segment into an axis-aligned box
// in the board's local frame (centered at the origin, before the board's
// pose is applied). The Carver subtracts all of a board's groove boxes
// from a fresh base box in one batch. Carving is all-or-nothing per board:
// when the kernel fails, the board keeps the last solid that carved cleanly.
package carve

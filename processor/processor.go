// Package processor parses HTML documents, extracts their translatable units,
// writes translations back and adjusts markup for right-to-left rendering.
package processor

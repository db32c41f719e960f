// Package util holds small helpers shared across packages: size parsing,
// string truncation for log previews, and filename sanitizing.
package util

// Package stacked combines several authentication back-ends into one, for
// example a local user table in front of a directory service.
package stacked

// Package batch runs one tool operation over several meeting keys.
//
// Tools that accept either a single key or an array of keys parse them with
// ParseKeys and report per-key outcomes through Summary, so one failed key
// does not hide the others.
package batch

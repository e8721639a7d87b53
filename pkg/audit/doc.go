// Package audit builds the tamper-evident record of every execution cycle.
//
// Records form an append-only, hash-chained sequence: each record embeds the
// hash of its predecessor, so altering any archived record invalidates the
// chain for everything after it. Appends are sequenced through a single
// writer; the recorder is write-only and nothing in the live decision path
// ever reads from it.
package audit

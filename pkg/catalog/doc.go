// Package catalog loads the field and rule catalogs into immutable
// snapshots and keeps the active snapshot current.
//
// A Manager swaps snapshots atomically, so evaluations in flight keep the
// snapshot they started with while new evaluations see the reloaded one.
// With Watch, edits to either catalog file are picked up after a debounce
// period; a catalog that fails to load or lint is rejected and the previous
// snapshot stays active.
package catalog

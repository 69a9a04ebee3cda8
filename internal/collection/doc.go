// Package collection reconciles pages of an owner's posts fetched from the
// server into a local view.
//
// Fetched pages accumulate in a PageCache. Deleted ids are tombstoned in a
// DeletedSet and never come back, even if a later fetch returns them. The
// server's total replaces TotalCount on every fetch and is decremented
// locally on every successful delete. The visible window is derived from
// the cache either by slicing a page out of it or, while a search query is
// active, by returning every cached match.
package collection

// Package search keeps recipe search state synchronized with a location query string.
//
// The location (a url.Values in the shape of the web address bar: query, page, adv and the
// repeated filter parameters) is the single source of truth. A [Controller] reads it once per
// navigation and writes it through one commit path; every user action (typing, submitting,
// applying filters, paging) produces a new location and, when the effective query changed, one
// backend search. Responses from superseded requests are discarded.
//
// [Panel] is the draft filter selection edited before it is applied, and [Catalog] the tag and
// ingredient lists it is built from.
package search

// Package views holds the state behind every screen of the client other than search.
//
// A view loads data through the backend client, keeps the result (or a user-facing error
// message) as its state and exposes a copy of it. Each query surface is guarded by a [Latest], so
// when requests overlap only the most recently started one commits. Errors are recorded on the
// view; methods also return them so commands can set an exit status. An auth failure is handed
// to the session, which logs out, and leaves no message on the view.
package views

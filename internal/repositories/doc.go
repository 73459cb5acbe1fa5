// Package repositories implements SQLite persistence for the client's local state.
//
// The backend owns every domain record; locally the client only keeps what it needs between runs.
//
// Key Implementations:
//   - [SessionRepository] : the persisted login token, at most one active row
//   - [SearchHistoryRepository] : committed search locations for the history command and TUI
//
// Row ids are UUIDs generated by [shared.GenerateID]. Schemas live in the embedded migrations of
// package shared.
package repositories

package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/search"
	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/views"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgSnapshot MsgKind = iota
	MsgUpdatesClosed
	MsgCatalogLoaded
	MsgDetailLoaded
	MsgActionDone
)

// snapshotMsg is the constructor for [MsgSnapshot]
func snapshotMsg(s search.Snapshot) Msg {
	return Msg{kind: MsgSnapshot, data: s}
}

// updatesClosedMsg is the constructor for [MsgUpdatesClosed]
func updatesClosedMsg() Msg {
	return Msg{kind: MsgUpdatesClosed}
}

type catalogResult struct {
	catalog *search.Catalog
	err     error
}

// catalogLoadedMsg is the constructor for [MsgCatalogLoaded]
func catalogLoadedMsg(c *search.Catalog, err error) Msg {
	return Msg{kind: MsgCatalogLoaded, data: catalogResult{c, err}}
}

type detailResult struct {
	id    int
	state views.DetailState
}

// detailLoadedMsg is the constructor for [MsgDetailLoaded]
func detailLoadedMsg(id int, state views.DetailState) Msg {
	return Msg{kind: MsgDetailLoaded, data: detailResult{id, state}}
}

type actionResult struct {
	notice string
	err    error
}

// actionDoneMsg is the constructor for [MsgActionDone]. notice is shown when err is nil.
func actionDoneMsg(notice string, err error) Msg {
	return Msg{kind: MsgActionDone, data: actionResult{notice, err}}
}

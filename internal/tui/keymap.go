package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/pders01/postdeck/internal/config"
)

type keyMap struct {
	Quit      key.Binding
	Back      key.Binding
	Open      key.Binding
	Confirm   key.Binding
	Search    key.Binding
	Delete    key.Binding
	Refresh   key.Binding
	PageSize  key.Binding
	SortName  key.Binding
	SortEmail key.Binding
	NextPage  key.Binding
	PrevPage  key.Binding
}

func newKeyMap(cfg *config.Config) keyMap {
	mod := cfg.Keys.Modifier + "+"
	b := cfg.Keys.Bindings

	bind := func(k, desc string, extra ...string) key.Binding {
		return key.NewBinding(
			key.WithKeys(append([]string{k}, extra...)...),
			key.WithHelp(k, desc),
		)
	}

	return keyMap{
		Quit:      bind(b.Quit, "quit", "ctrl+c"),
		Back:      bind(b.Back, "back"),
		Open:      bind("enter", "open"),
		Confirm:   bind("enter", "confirm"),
		Search:    bind(mod+b.Search, "search"),
		Delete:    bind(mod+b.Delete, "delete"),
		Refresh:   bind(mod+b.Refresh, "refresh"),
		PageSize:  bind(mod+b.PageSize, "rows/page"),
		SortName:  bind(mod+b.SortName, "sort name"),
		SortEmail: bind(mod+b.SortEmail, "sort email"),
		NextPage:  bind(b.NextPage, "next page"),
		PrevPage:  bind(b.PrevPage, "prev page"),
	}
}

package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/postdeck/internal/config"
	"github.com/pders01/postdeck/internal/owners"
)

type KeyHandler struct {
	app         *App
	config      *config.Config
	keys        keyMap
	modifierKey string
}

func NewKeyHandler(app *App, cfg *config.Config) *KeyHandler {
	modifierKey := cfg.Keys.Modifier + "+"
	return &KeyHandler{app: app, config: cfg, keys: newKeyMap(cfg), modifierKey: modifierKey}
}

func (kh *KeyHandler) HandleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if kh.isInTextInputMode() {
		return kh.handleTextInputMode(msg)
	}

	if model, cmd, handled := kh.handleCustomKeys(msg); handled {
		return model, cmd
	}

	return kh.delegateToCharm(msg)
}

func (kh *KeyHandler) isInTextInputMode() bool {
	return kh.app.view == ViewPosts && kh.app.searchInput.Focused()
}

// handleTextInputMode feeds the search box. The window is recomputed on
// every change since filtering only touches the local cache.
func (kh *KeyHandler) handleTextInputMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return kh.app, tea.Quit
	case "esc", "enter", "tab", "down":
		kh.app.blurSearch()
		return kh.app, nil
	}

	prev := kh.app.searchInput.Value()
	newSearchInput, cmd := kh.app.searchInput.Update(msg)
	kh.app.searchInput = newSearchInput

	if kh.app.searchInput.Value() != prev {
		kh.app.refreshPosts()
	}
	return kh.app, cmd
}

// handleCustomKeys handles only our custom action keys
func (kh *KeyHandler) handleCustomKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, kh.keys.Quit):
		return kh.app, tea.Quit, true
	case key.Matches(msg, kh.keys.Back):
		model, cmd := kh.navigateBack()
		return model, cmd, true
	}

	switch kh.app.view {
	case ViewOwners:
		return kh.handleOwnersCustomKeys(msg)
	case ViewPosts:
		return kh.handlePostsCustomKeys(msg)
	case ViewDeleteConfirm:
		return kh.handleDeleteConfirmKeys(msg)
	default:
		return kh.app, nil, false
	}
}

func (kh *KeyHandler) handleOwnersCustomKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, kh.keys.SortName):
		return kh.app, kh.app.toggleSort(owners.SortByName), true
	case key.Matches(msg, kh.keys.SortEmail):
		return kh.app, kh.app.toggleSort(owners.SortByEmail), true
	case key.Matches(msg, kh.keys.PageSize):
		return kh.app, kh.app.cyclePageSize(), true
	case key.Matches(msg, kh.keys.NextPage):
		return kh.app, kh.app.changePage(1), true
	case key.Matches(msg, kh.keys.PrevPage):
		return kh.app, kh.app.changePage(-1), true
	case key.Matches(msg, kh.keys.Refresh):
		return kh.app, kh.app.reloadOwners(), true
	case key.Matches(msg, kh.keys.Open):
		if o, ok := kh.app.selectedOwner(); ok {
			return kh.app, kh.app.openOwner(o), true
		}
		return kh.app, nil, true
	}
	return kh.app, nil, false
}

func (kh *KeyHandler) handlePostsCustomKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, kh.keys.Search):
		kh.app.focusSearch()
		return kh.app, nil, true
	case key.Matches(msg, kh.keys.PageSize):
		return kh.app, kh.app.cyclePageSize(), true
	case key.Matches(msg, kh.keys.NextPage):
		return kh.app, kh.app.changePage(1), true
	case key.Matches(msg, kh.keys.PrevPage):
		return kh.app, kh.app.changePage(-1), true
	case key.Matches(msg, kh.keys.Refresh):
		return kh.app, kh.app.fetchPage(kh.app.page), true
	case key.Matches(msg, kh.keys.Delete):
		if p, ok := kh.app.selectedPost(); ok {
			kh.app.postToDelete = &p
			kh.app.view = ViewDeleteConfirm
		}
		return kh.app, nil, true
	case key.Matches(msg, kh.keys.Open):
		if p, ok := kh.app.selectedPost(); ok {
			return kh.app, kh.app.openPost(p), true
		}
		return kh.app, nil, true
	}
	return kh.app, nil, false
}

func (kh *KeyHandler) handleDeleteConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	if key.Matches(msg, kh.keys.Confirm) {
		if kh.app.postToDelete == nil {
			kh.app.view = ViewPosts
			return kh.app, nil, true
		}
		post := *kh.app.postToDelete
		kh.app.postToDelete = nil
		kh.app.view = ViewPosts
		return kh.app, kh.app.deletePost(post), true
	}
	// Swallow everything else while the modal is open
	return kh.app, nil, true
}

// delegateToCharm lets Charm handle all keys we don't intercept
func (kh *KeyHandler) delegateToCharm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch kh.app.view {
	case ViewOwners:
		kh.app.ownersTable, cmd = kh.app.ownersTable.Update(msg)
		return kh.app, cmd

	case ViewPosts:
		kh.app.postsTable, cmd = kh.app.postsTable.Update(msg)
		return kh.app, cmd

	case ViewReader:
		kh.app.viewport, cmd = kh.app.viewport.Update(msg)
		return kh.app, cmd

	default:
		return kh.app, nil
	}
}

// navigateBack implements smart back navigation
func (kh *KeyHandler) navigateBack() (tea.Model, tea.Cmd) {
	switch kh.app.view {
	case ViewDeleteConfirm:
		kh.app.view = ViewPosts
		kh.app.postToDelete = nil
		return kh.app, nil

	case ViewReader:
		kh.app.view = ViewPosts
		kh.app.currentPost = nil
		kh.app.loadingPost = false
		return kh.app, nil

	case ViewPosts:
		kh.app.closePosts()
		return kh.app, nil

	default:
		return kh.app, tea.Quit
	}
}

// GetHelpForCurrentView returns only our custom help bindings (Charm handles the rest)
func (kh *KeyHandler) GetHelpForCurrentView() []key.Binding {
	k := kh.keys
	switch kh.app.view {
	case ViewOwners:
		return []key.Binding{k.Open, k.SortName, k.SortEmail, k.PageSize, k.PrevPage, k.NextPage, k.Quit}

	case ViewPosts:
		if kh.app.searchInput.Focused() {
			return []key.Binding{
				key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter/esc", "done")),
			}
		}
		return []key.Binding{k.Open, k.Search, k.Delete, k.PageSize, k.PrevPage, k.NextPage, k.Refresh, k.Back}

	case ViewReader:
		return []key.Binding{k.Back}

	case ViewDeleteConfirm:
		return []key.Binding{k.Confirm, key.NewBinding(key.WithKeys(k.Back.Keys()...), key.WithHelp(k.Back.Help().Key, "cancel"))}

	default:
		return []key.Binding{}
	}
}

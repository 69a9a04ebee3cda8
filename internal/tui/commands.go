package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/postdeck/internal/api"
	"github.com/pders01/postdeck/internal/collection"
	"github.com/pders01/postdeck/internal/debuglog"
	"github.com/pders01/postdeck/internal/owners"
	"github.com/pders01/postdeck/internal/storage"
)

func (a *App) loadOwners() tea.Cmd {
	client := a.client
	return func() tea.Msg {
		list, err := client.ListOwners(context.Background())
		if err != nil {
			return ownersLoadedMsg{err: wrapErr("loading owners", err)}
		}
		return ownersLoadedMsg{owners: list}
	}
}

func (a *App) reloadOwners() tea.Cmd {
	a.ownersLoading = true
	a.ownersErr = nil
	return tea.Batch(a.spinner.Tick, a.loadOwners())
}

// fetchPage issues a fetch for page of the open owner. The request is
// numbered here, on the update goroutine, so lastRequest always names the
// newest fetch.
func (a *App) fetchPage(page int) tea.Cmd {
	if a.reconciler == nil {
		return nil
	}
	req := a.reconciler.NewRequest(page, a.pageSize)
	a.lastRequest = req
	a.loading = true
	a.fetchErr = nil

	return tea.Batch(a.spinner.Tick, a.doFetch(req))
}

// backfill asks again for a page the current window is built on, leaving
// the loading state to the newest fetch.
func (a *App) backfill(page, pageSize int) tea.Cmd {
	if a.reconciler == nil {
		return nil
	}
	return a.doFetch(a.reconciler.NewRequest(page, pageSize))
}

func (a *App) doFetch(req collection.Request) tea.Cmd {
	rec, state := a.reconciler, a.state
	return func() tea.Msg {
		res, err := rec.Do(context.Background(), req)
		return postsFetchedMsg{state: state, result: res, err: err}
	}
}

func (a *App) deletePost(post api.Post) tea.Cmd {
	if a.coordinator == nil {
		return nil
	}
	w := a.window()
	coord, state, store := a.coordinator, a.state, a.store

	return func() tea.Msg {
		out, err := coord.DeletePost(context.Background(), post.ID, w)
		if err == nil && store != nil {
			entry := &storage.Deletion{PostID: post.ID, OwnerID: state.OwnerID(), Title: post.Title}
			if jerr := store.RecordDeletion(entry); jerr != nil {
				debuglog.Warnf("journaling deletion of post %d: %v", post.ID, jerr)
			}
		}
		return postDeletedMsg{state: state, post: post, page: w.Page, outcome: out, err: err}
	}
}

func postMarkdown(post api.Post, owner *api.Owner) string {
	var content strings.Builder
	title := post.Title
	if title == "" {
		title = "Untitled post"
	}
	content.WriteString(fmt.Sprintf("# %s\n\n", title))
	if owner != nil {
		content.WriteString(fmt.Sprintf("*By %s <%s>*\n\n", owner.Name, owner.Email))
	}
	content.WriteString(fmt.Sprintf("Post #%d\n\n", post.ID))
	content.WriteString("---\n\n")
	content.WriteString(post.Body)
	return content.String()
}

// renderPost builds the renderer up front so the command never touches App.
func (a *App) renderPost(post api.Post) tea.Cmd {
	markdown := postMarkdown(post, a.currentOwner)
	r, err := a.getRenderer()

	return func() tea.Msg {
		if err != nil {
			return postRenderedMsg{postID: post.ID, content: "Error initializing renderer: " + err.Error()}
		}
		rendered, rerr := r.Render(markdown)
		if rerr != nil {
			// Still answer with postRenderedMsg so loadingPost is cleared
			return postRenderedMsg{postID: post.ID, content: fmt.Sprintf("Failed to render post: %v\n\n%s", rerr, markdown)}
		}
		return postRenderedMsg{postID: post.ID, content: rendered}
	}
}

func (a *App) savePreferences() tea.Cmd {
	if a.store == nil {
		return nil
	}
	store := a.store
	prefs := &storage.Preferences{
		PageSize: a.pageSize,
		SortKey:  a.sorter.Key.String(),
		SortDesc: a.sorter.Order == owners.Descending,
	}
	return func() tea.Msg {
		if err := store.SavePreferences(prefs); err != nil {
			return errorMsg{err: wrapErr("saving preferences", err)}
		}
		return nil
	}
}

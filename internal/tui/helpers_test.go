package tui

import (
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/pders01/postdeck/internal/api"
	"github.com/pders01/postdeck/internal/apitest"
	"github.com/pders01/postdeck/internal/config"
	"github.com/pders01/postdeck/internal/storage"
)

// startApp wires an App to a fake backend and runs Init to completion.
func startApp(t *testing.T, srv *apitest.Server, store *storage.Store) *App {
	t.Helper()
	hs := srv.Start()
	t.Cleanup(hs.Close)
	return startAppAt(t, hs, store)
}

func startAppAt(t *testing.T, hs *httptest.Server, store *storage.Store) *App {
	t.Helper()
	app := NewApp(store, api.NewClient(hs.URL), config.TestConfig())
	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	run(t, app, app.Init())
	return app
}

func newTestStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.NewStore(storage.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// run executes cmd and every command it leads to, feeding the messages back
// into app. Spinner ticks are dropped so the loop terminates.
func run(t *testing.T, app *App, cmd tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		require.Less(t, steps, 1000, "command loop did not settle")
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case nil, spinner.TickMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			_, next := app.Update(msg)
			queue = append(queue, next)
		}
	}
}

// collect executes cmd without feeding anything back, returning the messages
// it produced so a test can deliver them in its own order.
func collect(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	var msgs []tea.Msg
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case nil, spinner.TickMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			msgs = append(msgs, msg)
		}
	}
	return msgs
}

// deliver feeds msgs to app and runs whatever they lead to.
func deliver(t *testing.T, app *App, msgs []tea.Msg) {
	t.Helper()
	for _, msg := range msgs {
		_, cmd := app.Update(msg)
		run(t, app, cmd)
	}
}

func press(t *testing.T, app *App, msg tea.KeyMsg) {
	t.Helper()
	_, cmd := app.Update(msg)
	run(t, app, cmd)
}

func typeText(t *testing.T, app *App, s string) {
	t.Helper()
	for _, r := range s {
		press(t, app, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func visibleIDs(app *App) []int {
	ids := make([]int, 0, len(app.visible))
	for _, p := range app.visible {
		ids = append(ids, p.ID)
	}
	return ids
}

func ownerNames(list []api.Owner) []string {
	names := make([]string, 0, len(list))
	for _, o := range list {
		names = append(names, o.Name)
	}
	return names
}

// lettered builds n posts for owner 1 with recognizable titles.
func lettered(n int) []api.Post {
	titles := []string{"alpha one", "Bravo two", "charlie three", "Delta four", "echo five", "alpha six", "golf seven", "hotel eight"}
	posts := make([]api.Post, n)
	for i := range posts {
		posts[i] = api.Post{ID: i + 1, Title: titles[i%len(titles)], Body: "body", UserID: 1}
	}
	return posts
}

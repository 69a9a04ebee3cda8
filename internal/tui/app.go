package tui

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/postdeck/internal/api"
	"github.com/pders01/postdeck/internal/collection"
	"github.com/pders01/postdeck/internal/config"
	"github.com/pders01/postdeck/internal/debuglog"
	"github.com/pders01/postdeck/internal/owners"
	"github.com/pders01/postdeck/internal/search"
	"github.com/pders01/postdeck/internal/storage"
)

type App struct {
	config     *config.Config
	store      *storage.Store
	client     *api.Client
	filter     search.Filter
	keyHandler *KeyHandler
	help       help.Model
	spinner    spinner.Model
	pager      paginator.Model
	viewport   viewport.Model
	view       View
	width      int
	height     int
	err        error
	status     string
	statusKind StatusKind

	pageSizes []int
	pageSize  int

	ownersTable   table.Model
	owners        []api.Owner
	ownerRows     []api.Owner // the owners currently shown, in table order
	sorter        owners.Sorter
	ownersPage    int
	ownersLoading bool
	ownersErr     error

	postsTable   table.Model
	searchInput  textinput.Model
	currentOwner *api.Owner
	state        *collection.State
	reconciler   *collection.Reconciler
	coordinator  *collection.Coordinator
	paginator    *collection.Paginator
	page         int
	visible      []api.Post
	loading      bool
	fetchErr     error
	lastRequest  collection.Request
	postToDelete *api.Post

	currentPost     *api.Post
	loadingPost     bool
	glamourRenderer *glamour.TermRenderer
	rendererWidth   int // Track the width used for the renderer
}

func NewApp(store *storage.Store, client *api.Client, cfg *config.Config) *App {
	ApplyColors(cfg.UI.Colors)

	filter, err := search.New(cfg.Search.Engine)
	if err != nil {
		debuglog.Warnf("search engine %q unavailable, using substring: %v", cfg.Search.Engine, err)
		filter = search.Substring{}
	}

	si := textinput.New()
	si.Placeholder = "Search titles..."
	si.Prompt = "› "
	si.CharLimit = 256

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(PrimaryColor)

	pg := paginator.New()
	pg.Type = paginator.Arabic

	h := help.New()
	h.Styles.ShortKey = lipgloss.NewStyle().Foreground(SecondaryColor)
	h.Styles.ShortDesc = lipgloss.NewStyle().Foreground(MutedColor)
	h.Styles.ShortSeparator = lipgloss.NewStyle().Foreground(MutedColor)

	app := &App{
		config:      cfg,
		store:       store,
		client:      client,
		filter:      filter,
		help:        h,
		spinner:     sp,
		pager:       pg,
		viewport:    viewport.New(0, 0),
		view:        ViewOwners,
		pageSizes:   append([]int(nil), cfg.Pagination.PageSizes...),
		pageSize:    cfg.Pagination.DefaultPageSize,
		searchInput: si,
	}

	app.loadPreferences()
	app.ownersTable = newTable(app.ownerColumns(80))
	app.postsTable = newTable(postColumns(80))
	app.keyHandler = NewKeyHandler(app, cfg)

	return app
}

func (a *App) loadPreferences() {
	if a.store == nil {
		return
	}
	prefs, err := a.store.LoadPreferences()
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			debuglog.Warnf("loading preferences: %v", err)
		}
		return
	}
	if slices.Contains(a.pageSizes, prefs.PageSize) {
		a.pageSize = prefs.PageSize
	}
	if key, err := owners.ParseSortKey(prefs.SortKey); err == nil {
		a.sorter.Key = key
	}
	if prefs.SortDesc {
		a.sorter.Order = owners.Descending
	}
}

func (a *App) getRenderer() (*glamour.TermRenderer, error) {
	wordWrapWidth := (a.width * 9) / 10
	if wordWrapWidth > 120 {
		wordWrapWidth = 120 // maximum for readability
	}
	if wordWrapWidth < 40 {
		wordWrapWidth = 40 // minimum for readability
	}
	if a.width < 50 {
		wordWrapWidth = max(20, a.width-4)
	}

	if a.glamourRenderer == nil || abs(a.rendererWidth-wordWrapWidth) > 10 {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wordWrapWidth),
		)
		if err != nil {
			return nil, err
		}
		a.glamourRenderer = r
		a.rendererWidth = wordWrapWidth
	}

	return a.glamourRenderer, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (a *App) Init() tea.Cmd {
	a.ownersLoading = true
	return tea.Batch(
		a.loadOwners(),
		a.spinner.Tick,
		tea.EnterAltScreen,
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)

	case tea.KeyMsg:
		a.err = nil
		return a.keyHandler.HandleKey(msg)

	case spinner.TickMsg:
		if !a.busy() {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case ownersLoadedMsg:
		a.ownersLoading = false
		if msg.err != nil {
			debuglog.Errorf("loading owners: %v", msg.err)
			a.ownersErr = msg.err
			return a, nil
		}
		a.ownersErr = nil
		a.owners = msg.owners
		a.refreshOwners()

	case postsFetchedMsg:
		return a.handlePostsFetched(msg)

	case postDeletedMsg:
		return a.handlePostDeleted(msg)

	case postRenderedMsg:
		if a.view == ViewReader && a.currentPost != nil && a.currentPost.ID == msg.postID {
			a.viewport.SetContent(msg.content)
			a.viewport.GotoTop()
			a.loadingPost = false
		}

	case errorMsg:
		a.err = msg.err
	}

	return a, nil
}

func (a *App) handlePostsFetched(msg postsFetchedMsg) (tea.Model, tea.Cmd) {
	if msg.state == nil || msg.state != a.state {
		return a, nil
	}
	req := msg.result.Request
	latest := req.Seq == a.lastRequest.Seq

	switch {
	case errors.Is(msg.err, collection.ErrStale):
		// A delete landed while this fetch was in flight
		if latest {
			return a, a.fetchPage(a.page)
		}
		if req.Page*req.PageSize < (a.page+1)*a.pageSize {
			return a, a.backfill(req.Page, req.PageSize)
		}
		return a, nil
	case msg.err != nil:
		debuglog.Errorf("owner %d: %v", msg.state.OwnerID(), msg.err)
		if latest {
			a.loading = false
			a.fetchErr = msg.err
		}
		return a, nil
	}

	if latest {
		a.loading = false
		a.fetchErr = nil
	}
	a.refreshPosts()
	return a, nil
}

func (a *App) handlePostDeleted(msg postDeletedMsg) (tea.Model, tea.Cmd) {
	if msg.state == nil || msg.state != a.state {
		return a, nil
	}
	if msg.err != nil {
		debuglog.WithFields(map[string]any{
			"owner": msg.state.OwnerID(),
			"post":  msg.post.ID,
		}).Errorf("%v", msg.err)
		return a, nil
	}

	a.setStatus(MsgPostDeleted, StatusSuccess)
	if a.page != msg.page {
		// The user paged away while the delete was in flight
		a.refreshPosts()
		return a, nil
	}

	a.page = msg.outcome.Page
	a.refreshPosts()
	if msg.outcome.Refetch {
		return a, a.fetchPage(msg.outcome.Page)
	}
	return a, nil
}

func (a *App) busy() bool {
	return a.ownersLoading || a.loading || a.loadingPost
}

func (a *App) setStatus(text string, kind StatusKind) {
	a.status = text
	a.statusKind = kind
}

// Layout: header (2) + search frame (3) + footer (1) + status bar (2).
func (a *App) resize(width, height int) {
	a.width = width
	a.height = height

	a.ownersTable.SetColumns(a.ownerColumns(width))
	a.ownersTable.SetHeight(max(3, height-6))
	a.ownersTable.SetWidth(width)

	a.postsTable.SetColumns(postColumns(width))
	a.postsTable.SetHeight(max(3, height-9))
	a.postsTable.SetWidth(width)

	a.searchInput.Width = max(10, width-8)

	a.viewport.Width = width
	a.viewport.Height = max(1, height-5)
}

func (a *App) ownerColumns(width int) []table.Column {
	cols := []table.Column{
		{Title: a.sorter.Label(owners.SortByName, "Name")},
		{Title: a.sorter.Label(owners.SortByEmail, "Email")},
		{Title: "Address"},
	}
	return splitWidths(width, cols, []int{3, 3, 4})
}

func postColumns(width int) []table.Column {
	cols := []table.Column{
		{Title: "ID", Width: 5},
		{Title: "Title"},
		{Title: "Body"},
	}
	return splitWidths(width, cols, []int{0, 2, 3})
}

// setTableRows replaces the rows and keeps the cursor on one of them. An
// empty table leaves the cursor at -1, so it is moved back once rows arrive.
func setTableRows(t *table.Model, rows []table.Row) {
	t.SetRows(rows)
	switch {
	case len(rows) == 0:
	case t.Cursor() < 0:
		t.SetCursor(0)
	case t.Cursor() >= len(rows):
		t.SetCursor(len(rows) - 1)
	}
}

func (a *App) refreshOwners() {
	if pages := collection.PageCount(len(a.owners), a.pageSize); a.ownersPage >= pages {
		a.ownersPage = max(0, pages-1)
	}
	a.ownerRows = a.sorter.Page(a.owners, a.ownersPage, a.pageSize)

	rows := make([]table.Row, 0, len(a.ownerRows))
	for _, o := range a.ownerRows {
		rows = append(rows, table.Row{o.Name, o.Email, o.Address.String()})
	}
	a.ownersTable.SetColumns(a.ownerColumns(a.width))
	setTableRows(&a.ownersTable, rows)
}

func (a *App) window() collection.Window {
	return collection.Window{
		Page:     a.page,
		PageSize: a.pageSize,
		Query:    sanitizeSearchInput(a.searchInput.Value()),
	}
}

func (a *App) refreshPosts() {
	if a.paginator == nil {
		return
	}
	a.visible = a.paginator.VisibleSlice(a.window())

	rows := make([]table.Row, 0, len(a.visible))
	for _, p := range a.visible {
		rows = append(rows, table.Row{strconv.Itoa(p.ID), oneLine(p.Title), oneLine(p.Body)})
	}
	setTableRows(&a.postsTable, rows)

	a.pager.PerPage = a.pageSize
	a.pager.TotalPages = max(1, a.paginator.PageCount(a.pageSize))
	a.pager.Page = a.page
}

func (a *App) selectedOwner() (api.Owner, bool) {
	i := a.ownersTable.Cursor()
	if i < 0 || i >= len(a.ownerRows) {
		return api.Owner{}, false
	}
	return a.ownerRows[i], true
}

func (a *App) selectedPost() (api.Post, bool) {
	i := a.postsTable.Cursor()
	if i < 0 || i >= len(a.visible) {
		return api.Post{}, false
	}
	return a.visible[i], true
}

func (a *App) openOwner(o api.Owner) tea.Cmd {
	owner := o
	a.currentOwner = &owner
	a.state = collection.NewState(o.ID)
	a.reconciler = collection.NewReconciler(a.state, a.client,
		collection.WithDiscardStale(a.config.Reconcile.DiscardStale))
	a.coordinator = collection.NewCoordinator(a.state, a.client, a.filter)
	a.paginator = collection.NewPaginator(a.state, a.filter)
	a.page = 0
	a.visible = nil
	a.fetchErr = nil
	a.postToDelete = nil
	a.status = ""

	a.searchInput.Reset()
	a.searchInput.Blur()
	a.postsTable.SetRows(nil)
	a.postsTable.SetCursor(0)
	a.postsTable.Focus()

	a.view = ViewPosts
	return a.fetchPage(0)
}

// closePosts drops the collection state; completions still in flight for it
// are ignored once they arrive.
func (a *App) closePosts() {
	a.currentOwner = nil
	a.state = nil
	a.reconciler = nil
	a.coordinator = nil
	a.paginator = nil
	a.visible = nil
	a.loading = false
	a.fetchErr = nil
	a.status = ""
	a.searchInput.Reset()
	a.searchInput.Blur()
	a.view = ViewOwners
}

func (a *App) focusSearch() {
	a.postsTable.Blur()
	a.searchInput.Focus()
}

func (a *App) blurSearch() {
	a.searchInput.Blur()
	a.postsTable.Focus()
}

// changePage moves the active window. Owners are paged locally; posts
// always go back to the server for the target page.
func (a *App) changePage(delta int) tea.Cmd {
	switch a.view {
	case ViewOwners:
		next := a.ownersPage + delta
		if next < 0 || next >= collection.PageCount(len(a.owners), a.pageSize) {
			return nil
		}
		a.ownersPage = next
		a.refreshOwners()
		return nil

	case ViewPosts:
		if a.paginator == nil {
			return nil
		}
		next := a.page + delta
		if next < 0 || next >= a.paginator.PageCount(a.pageSize) {
			return nil
		}
		a.page = next
		a.refreshPosts()
		return a.fetchPage(next)
	}
	return nil
}

// cyclePageSize moves to the next configured size and resets both screens
// to their first page without refetching.
func (a *App) cyclePageSize() tea.Cmd {
	if len(a.pageSizes) == 0 {
		return nil
	}
	idx := slices.Index(a.pageSizes, a.pageSize)
	a.pageSize = a.pageSizes[(idx+1)%len(a.pageSizes)]
	a.page = 0
	a.ownersPage = 0

	a.refreshOwners()
	a.refreshPosts()
	a.setStatus(MsgPageSize(a.pageSize), StatusInfo)
	return a.savePreferences()
}

func (a *App) toggleSort(key owners.SortKey) tea.Cmd {
	a.sorter.Toggle(key)
	a.refreshOwners()
	a.setStatus(MsgSortedBy(a.sorter.Key.String(), a.sorter.Order.String()), StatusInfo)
	return a.savePreferences()
}

func (a *App) openPost(p api.Post) tea.Cmd {
	post := p
	a.currentPost = &post
	a.loadingPost = true
	a.viewport.SetContent("")
	a.view = ViewReader
	return tea.Batch(a.spinner.Tick, a.renderPost(post))
}

func (a *App) View() string {
	var content string
	bodyHeight := max(1, a.height-2)

	switch a.view {
	case ViewOwners:
		content = a.viewOwners(bodyHeight)
	case ViewPosts:
		content = a.viewPosts(bodyHeight)
	case ViewReader:
		content = a.viewReader(bodyHeight)
	case ViewDeleteConfirm:
		content = a.viewDeleteConfirm(bodyHeight)
	}

	content = ContentWrapper(a.width, bodyHeight).Render(content)

	customStatus := a.getCustomStatusBar()
	if customStatus != "" {
		separator := SeparatorStyle.Render(strings.Repeat("─", max(1, a.width-1)))
		return lipgloss.JoinVertical(lipgloss.Top, content, separator, customStatus)
	}

	return content
}

func (a *App) loadingView(height int, text string) string {
	return renderCentered(a.width, height, a.spinner.View()+" "+renderMuted(text))
}

func (a *App) viewOwners(height int) string {
	header := renderHeader(CompactLogo+" users", MsgSortedBy(a.sorter.Key.String(), a.sorter.Order.String()), a.width)

	switch {
	case a.ownersLoading:
		return lipgloss.JoinVertical(lipgloss.Top, header, a.loadingView(height-2, MsgLoadingOwners))
	case a.ownersErr != nil:
		return lipgloss.JoinVertical(lipgloss.Top, header,
			renderCentered(a.width, height-2, ErrorMessageStyle.Render(MsgOwnersError)))
	case len(a.owners) == 0:
		return lipgloss.JoinVertical(lipgloss.Top, header,
			renderCentered(a.width, height-2, GetCompactBanner(MsgNoOwners)))
	}

	footer := strings.Join([]string{
		MsgPageSize(a.pageSize),
		MsgRange(a.ownersPage, a.pageSize, len(a.owners)),
	}, " • ")

	return lipgloss.JoinVertical(lipgloss.Top,
		header,
		a.ownersTable.View(),
		renderMuted(footer),
	)
}

func (a *App) viewPosts(height int) string {
	title, subtitle := CompactLogo+" posts", ""
	if a.currentOwner != nil {
		title = CompactLogo + " posts of " + a.currentOwner.Name
		subtitle = a.currentOwner.Email
	}
	header := renderHeader(title, subtitle, a.width)
	searchBox := renderInputFrame(a.searchInput.View(), a.searchInput.Focused(), a.searchInput.Width)
	bodyHeight := max(1, height-lipgloss.Height(header)-lipgloss.Height(searchBox))

	var body string
	switch {
	case a.loading:
		body = a.loadingView(bodyHeight, MsgLoadingPosts)
	case a.fetchErr != nil:
		body = renderCentered(a.width, bodyHeight, ErrorMessageStyle.Render(fetchErrorText(a.fetchErr)))
	case len(a.visible) == 0:
		body = renderCentered(a.width, bodyHeight, renderMuted(MsgNoPosts))
	default:
		body = lipgloss.JoinVertical(lipgloss.Top, a.postsTable.View(), renderMuted(a.postsFooter()))
	}

	return lipgloss.JoinVertical(lipgloss.Top, header, searchBox, body)
}

func (a *App) postsFooter() string {
	if a.window().Searching() {
		return MsgMatches(len(a.visible))
	}
	total, _ := a.state.Total()
	return strings.Join([]string{
		MsgPageSize(a.pageSize),
		MsgRange(a.page, a.pageSize, total),
		a.pager.View(),
	}, " • ")
}

func (a *App) viewReader(height int) string {
	if a.loadingPost {
		return a.loadingView(height, MsgLoadingPost)
	}
	return a.viewport.View()
}

func (a *App) viewDeleteConfirm(height int) string {
	title := "Untitled post"
	if a.postToDelete != nil && a.postToDelete.Title != "" {
		title = oneLine(a.postToDelete.Title)
	}

	modalWidth := (a.width * 4) / 5
	if modalWidth < 20 {
		modalWidth = max(15, a.width-4)
	}
	title = truncateEnd(title, modalWidth-4)

	centered := func(style lipgloss.Style, text string) string {
		return style.Width(modalWidth).Align(lipgloss.Center).Render(text)
	}

	return renderCentered(a.width, height,
		lipgloss.JoinVertical(
			lipgloss.Center,
			ErrorMessageStyle.Render("⚠ Delete Post"),
			"",
			centered(ModalTextStyle, "Delete this post?"),
			"",
			centered(ModalHighlightStyle, title),
			"",
			centered(HelpStyle, "This cannot be undone."),
		),
	)
}

func (a *App) getCustomStatusBar() string {
	if a.err != nil {
		return StatusBarStyle.Width(a.width).
			Render(ErrorMessageStyle.Render(fmt.Sprintf("✗ %v", a.err)))
	}

	bindings := a.keyHandler.GetHelpForCurrentView()
	if len(bindings) == 0 {
		return ""
	}

	line := a.help.ShortHelpView(bindings)
	if a.status != "" {
		line = a.statusKind.style().Render(a.status) + "  " + line
	}
	return StatusBarStyle.Width(a.width).MaxHeight(1).Render(line)
}

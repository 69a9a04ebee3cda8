package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/pders01/postdeck/internal/api"
	"github.com/pders01/postdeck/internal/apitest"
	"github.com/pders01/postdeck/internal/collection"
	"github.com/pders01/postdeck/internal/debuglog"
	"github.com/pders01/postdeck/internal/owners"
	"github.com/pders01/postdeck/internal/search"
	"github.com/pders01/postdeck/internal/storage"
	"github.com/pders01/postdeck/internal/tui"
)

var (
	bold  = color.New(color.Bold).SprintFunc()
	faint = color.New(color.Faint).SprintFunc()
	green = color.New(color.FgGreen).SprintFunc()
)

type listOptions struct {
	page  int
	limit int
	json  bool
}

func (o *listOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&o.page, "page", 0, "Zero-based page to show")
	cmd.Flags().IntVar(&o.limit, "limit", 0, "Rows per page (defaults to pagination.default_page_size)")
	cmd.Flags().BoolVar(&o.json, "json", false, "Output as JSON")
}

func (o *listOptions) pageSize(fallback int) int {
	if o.limit > 0 {
		return o.limit
	}
	return fallback
}

var (
	ownersOpts struct {
		listOptions
		sort string
		desc bool
	}
	postsOpts struct {
		listOptions
		search string
	}
	deleteOpts struct {
		owner int
	}
	historyOpts struct {
		owner int
		limit int
		clear bool
	}
	mockOpts struct {
		addr   string
		owners int
		posts  int
	}
)

func addCLICommands(root *cobra.Command) {
	ownersCmd := &cobra.Command{
		Use:   "owners",
		Short: "List users, sorted and paged",
		Args:  cobra.NoArgs,
		RunE:  runOwners,
	}
	ownersOpts.addFlags(ownersCmd)
	ownersCmd.Flags().StringVar(&ownersOpts.sort, "sort", "name", "Sort column: name or email")
	ownersCmd.Flags().BoolVar(&ownersOpts.desc, "desc", false, "Sort descending")

	postsCmd := &cobra.Command{
		Use:   "posts <ownerId>",
		Short: "List one user's posts",
		Example: `
postdeck posts 1 --page 2
postdeck posts 1 --search dolor
`,
		Args: cobra.ExactArgs(1),
		RunE: runPosts,
	}
	postsOpts.addFlags(postsCmd)
	postsCmd.Flags().StringVarP(&postsOpts.search, "search", "s", "", "Filter titles by substring (loads every page)")

	deleteCmd := &cobra.Command{
		Use:   "delete <postId>",
		Short: "Delete a post and record it in the journal",
		Args:  cobra.ExactArgs(1),
		RunE:  runDelete,
	}
	deleteCmd.Flags().IntVar(&deleteOpts.owner, "owner", 0, "Owner id to record with the deletion")

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show posts deleted through postdeck",
		Args:  cobra.NoArgs,
		RunE:  runHistory,
	}
	historyCmd.Flags().IntVar(&historyOpts.owner, "owner", 0, "Only show deletions for this owner")
	historyCmd.Flags().IntVar(&historyOpts.limit, "limit", 20, "Maximum entries to show (0 for all)")
	historyCmd.Flags().BoolVar(&historyOpts.clear, "clear", false, "Empty the journal")

	mockCmd := &cobra.Command{
		Use:   "mock",
		Short: "Serve an in-memory backend for local use",
		Args:  cobra.NoArgs,
		RunE:  runMock,
	}
	mockCmd.Flags().StringVar(&mockOpts.addr, "addr", "127.0.0.1:3001", "Listen address")
	mockCmd.Flags().IntVar(&mockOpts.owners, "owners", 10, "Number of users to seed")
	mockCmd.Flags().IntVar(&mockOpts.posts, "posts", 10, "Posts seeded per user")

	root.AddCommand(ownersCmd, postsCmd, deleteCmd, historyCmd, mockCmd)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable() *uitable.Table {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 48
	return tbl
}

func runOwners(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	key, err := owners.ParseSortKey(ownersOpts.sort)
	if err != nil {
		return err
	}
	sorter := owners.Sorter{Key: key}
	if ownersOpts.desc {
		sorter.Order = owners.Descending
	}

	list, err := newClient(cfg).ListOwners(cmd.Context())
	if err != nil {
		return err
	}

	size := ownersOpts.pageSize(cfg.Pagination.DefaultPageSize)
	page := sorter.Page(list, ownersOpts.page, size)

	out := cmd.OutOrStdout()
	if ownersOpts.json {
		return printJSON(out, page)
	}
	if len(page) == 0 {
		_, _ = fmt.Fprintln(out, tui.MsgNoOwners)
		return nil
	}

	tbl := newTable()
	tbl.AddRow(bold("ID"), bold(sorter.Label(owners.SortByName, "NAME")), bold(sorter.Label(owners.SortByEmail, "EMAIL")), bold("ADDRESS"))
	for _, o := range page {
		tbl.AddRow(o.ID, o.Name, o.Email, o.Address.String())
	}
	_, _ = fmt.Fprintln(out, tbl)
	_, _ = fmt.Fprintln(out, faint(tui.MsgRange(ownersOpts.page, size, len(list))))
	return nil
}

func runPosts(cmd *cobra.Command, args []string) error {
	ownerID, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid owner id %q", args[0])
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := setupLogging(cfg); err != nil {
		return err
	}
	defer closeLog()

	filter, err := search.New(cfg.Search.Engine)
	if err != nil {
		return err
	}

	if postsOpts.page < 0 {
		return fmt.Errorf("invalid page %d", postsOpts.page)
	}

	size := postsOpts.pageSize(cfg.Pagination.DefaultPageSize)
	state := collection.NewState(ownerID)
	rec := collection.NewReconciler(state, newClient(cfg))
	ctx := cmd.Context()
	w := collection.Window{Page: postsOpts.page, PageSize: size, Query: postsOpts.search}

	// The window is cut from the cache by position, so every page before it
	// is loaded first. A search sees the whole collection.
	last := postsOpts.page
	for p := 0; p <= last; p++ {
		if err := rec.FetchPage(ctx, p, size); err != nil {
			return err
		}
		pages := collection.PageCount(knownTotal(state), size)
		if w.Searching() {
			last = pages - 1
		}
		if p+1 >= pages {
			break
		}
	}

	visible := collection.NewPaginator(state, filter).VisibleSlice(w)

	out := cmd.OutOrStdout()
	if postsOpts.json {
		return printJSON(out, visible)
	}
	if len(visible) == 0 {
		_, _ = fmt.Fprintln(out, tui.MsgNoPosts)
		return nil
	}

	tbl := newTable()
	tbl.AddRow(bold("ID"), bold("TITLE"), bold("BODY"))
	for _, p := range visible {
		tbl.AddRow(p.ID, p.Title, p.Body)
	}
	_, _ = fmt.Fprintln(out, tbl)

	if w.Searching() {
		_, _ = fmt.Fprintln(out, faint(tui.MsgMatches(len(visible))))
	} else {
		_, _ = fmt.Fprintln(out, faint(tui.MsgRange(w.Page, size, knownTotal(state))))
	}
	return nil
}

func knownTotal(state *collection.State) int {
	total, _ := state.Total()
	return total
}

func closeLog() {
	_ = debuglog.Close()
}

func runDelete(cmd *cobra.Command, args []string) error {
	postID, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid post id %q", args[0])
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := newClient(cfg).DeletePost(cmd.Context(), postID); err != nil {
		var se *api.StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
			return fmt.Errorf("post %d not found", postID)
		}
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	entry := &storage.Deletion{PostID: postID, OwnerID: deleteOpts.owner}
	if err := store.RecordDeletion(entry); err != nil {
		return fmt.Errorf("post %d deleted but not journaled: %w", postID, err)
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), green(fmt.Sprintf("Post %d deleted", postID)))
	return nil
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	out := cmd.OutOrStdout()
	if historyOpts.clear {
		n, err := store.ClearDeletions()
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "Cleared %d entries\n", n)
		return nil
	}

	entries, err := store.Deletions(historyOpts.owner, historyOpts.limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		_, _ = fmt.Fprintln(out, faint("No deletions recorded."))
		return nil
	}

	tbl := newTable()
	tbl.AddRow(bold("#"), bold("POST"), bold("OWNER"), bold("TITLE"), bold("DELETED"))
	for _, d := range entries {
		owner := "-"
		if d.OwnerID > 0 {
			owner = strconv.Itoa(d.OwnerID)
		}
		tbl.AddRow(d.Seq, d.PostID, owner, d.Title, d.DeletedAt.Local().Format(time.DateTime))
	}
	_, _ = fmt.Fprintln(out, tbl)
	return nil
}

func runMock(cmd *cobra.Command, _ []string) error {
	srv := apitest.New(mockOpts.owners, mockOpts.posts)
	httpSrv := &http.Server{
		Addr:              mockOpts.addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		errc <- httpSrv.ListenAndServe()
	}()

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Serving %d users with %d posts each on http://%s\n",
		mockOpts.owners, mockOpts.posts, mockOpts.addr)

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

package search

import (
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/single"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/pders01/postdeck/internal/api"
	"github.com/pders01/postdeck/internal/debuglog"
)

const titleAnalyzer = "title_exact"

// IndexFilter answers title queries from an in-memory bleve index. Posts are
// indexed the first time they are filtered; hits are intersected with the
// given list so the result keeps its order and never contains posts the
// caller did not pass in.
type IndexFilter struct {
	mu      sync.Mutex
	idx     bleve.Index
	indexed map[int]struct{}
}

func NewIndexFilter() (*IndexFilter, error) {
	im, err := buildIndexMapping()
	if err != nil {
		return nil, err
	}
	idx, err := bleve.NewMemOnly(im)
	if err != nil {
		return nil, err
	}
	return &IndexFilter{idx: idx, indexed: make(map[int]struct{})}, nil
}

// The whole title is kept as one lowercased term so a regexp over it behaves
// like a substring match.
func buildIndexMapping() (mapping.IndexMapping, error) {
	im := bleve.NewIndexMapping()
	if err := im.AddCustomAnalyzer(titleAnalyzer, map[string]any{
		"type":          custom.Name,
		"tokenizer":     single.Name,
		"token_filters": []string{lowercase.Name},
	}); err != nil {
		return nil, err
	}

	dm := bleve.NewDocumentMapping()

	title := bleve.NewTextFieldMapping()
	title.Analyzer = titleAnalyzer
	title.Store = false
	title.IncludeTermVectors = false

	dm.AddFieldMappingsAt("title", title)

	im.DefaultMapping = dm
	return im, nil
}

func (f *IndexFilter) Filter(posts []api.Post, query string) []api.Post {
	if query == "" {
		return posts
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.indexLocked(posts); err != nil {
		debuglog.Warnf("search: indexing failed, falling back to substring: %v", err)
		return Substring{}.Filter(posts, query)
	}

	hits, err := f.matchLocked(query)
	if err != nil {
		debuglog.Warnf("search: query %q failed, falling back to substring: %v", query, err)
		return Substring{}.Filter(posts, query)
	}

	out := make([]api.Post, 0, len(hits))
	for _, p := range posts {
		if _, ok := hits[p.ID]; ok {
			out = append(out, p)
		}
	}
	return out
}

func (f *IndexFilter) indexLocked(posts []api.Post) error {
	batch := f.idx.NewBatch()
	var added []int
	for _, p := range posts {
		if _, ok := f.indexed[p.ID]; ok {
			continue
		}
		if err := batch.Index(docID(p.ID), map[string]any{"title": p.Title}); err != nil {
			return err
		}
		added = append(added, p.ID)
	}
	if len(added) == 0 {
		return nil
	}
	if err := f.idx.Batch(batch); err != nil {
		return err
	}
	for _, id := range added {
		f.indexed[id] = struct{}{}
	}
	return nil
}

func (f *IndexFilter) matchLocked(query string) (map[int]struct{}, error) {
	q := bleve.NewRegexpQuery(".*" + regexp.QuoteMeta(strings.ToLower(query)) + ".*")
	q.SetField("title")

	req := bleve.NewSearchRequestOptions(q, len(f.indexed), 0, false)
	res, err := f.idx.Search(req)
	if err != nil {
		return nil, err
	}

	hits := make(map[int]struct{}, len(res.Hits))
	for _, h := range res.Hits {
		if id, convErr := strconv.Atoi(h.ID); convErr == nil {
			hits[id] = struct{}{}
		}
	}
	return hits, nil
}

// DocCount reports total documents in the index.
func (f *IndexFilter) DocCount() (int, error) {
	n, err := f.idx.DocCount()
	return int(n), err
}

func (f *IndexFilter) Close() error {
	return f.idx.Close()
}

func docID(postID int) string { return strconv.Itoa(postID) }

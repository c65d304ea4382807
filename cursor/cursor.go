// Package cursor implements the store's query/cursor engine: a
// deferred query bound to a store, carrying optional skip, limit, sort and
// projection, executed against a store-provided candidate set.
package cursor

import (
	"fmt"
	"sort"

	"github.com/arthur-debert/nedb/document"
	"github.com/arthur-debert/nedb/storeerr"
)

// CandidateSource is the subset of the store facade a cursor needs: it
// lets this package stay free of an import cycle with store, which
// constructs cursors.
type CandidateSource interface {
	// GetCandidates returns the candidate set for query. When
	// allowStale is false the source may cascade-expire TTL'd documents.
	GetCandidates(query document.D, allowStale bool) ([]document.D, error)
	StringComparator() document.StringComparator
}

// Mode selects what Exec ultimately produces.
type Mode int

const (
	// ModeFind produces the filtered, sorted, sliced, projected document list.
	ModeFind Mode = iota
	// ModeFindOne produces at most one document (the first match).
	ModeFindOne
	// ModeCount produces only the count of matches; sort/projection are
	// skipped since neither affects how many documents matched.
	ModeCount
)

// Cursor is a deferred query awaiting Exec.
type Cursor struct {
	source CandidateSource
	query  document.D
	mode   Mode

	skip       *int
	limit      *int
	sortSpec   []sortKey
	projection document.D
}

type sortKey struct {
	path string
	dir  int // +1 ascending, -1 descending
}

// New creates a cursor over query in mode.
func New(source CandidateSource, query document.D, mode Mode) *Cursor {
	if query == nil {
		query = document.D{}
	}
	return &Cursor{source: source, query: query, mode: mode}
}

// Sort sets the sort specification: an ordered mapping from dotted path to
// +1/-1. Because Go maps don't preserve insertion order, callers pass the
// ordered form directly.
func (c *Cursor) Sort(spec []SortField) *Cursor {
	c.sortSpec = nil
	for _, f := range spec {
		c.sortSpec = append(c.sortSpec, sortKey{path: f.Path, dir: f.Dir})
	}
	return c
}

// SortField is one entry of an ordered sort specification.
type SortField struct {
	Path string
	Dir  int // +1 ascending, -1 descending
}

// Skip sets the number of matching documents to skip before the first
// result.
func (c *Cursor) Skip(n int) *Cursor {
	c.skip = &n
	return c
}

// Limit caps the number of documents returned.
func (c *Cursor) Limit(n int) *Cursor {
	c.limit = &n
	return c
}

// Projection sets a mapping from dotted path to 0 or 1.
func (c *Cursor) Projection(spec document.D) *Cursor {
	c.projection = spec
	return c
}

// Result is what Exec returns: exactly one of its fields is meaningful,
// selected by the cursor's Mode.
type Result struct {
	Docs  []document.D
	One   document.D // nil if ModeFindOne found nothing
	Count int
}

// Exec runs the cursor's five-step pipeline: candidate
// acquisition, match filtering, sort, skip/limit, projection.
func (c *Cursor) Exec() (Result, error) {
	if err := c.validateProjection(); err != nil {
		return Result{}, err
	}

	candidates, err := c.source.GetCandidates(c.query, false)
	if err != nil {
		return Result{}, err
	}

	matcher := document.Matcher{Cmp: c.source.StringComparator()}

	if c.mode == ModeCount {
		n := 0
		for _, d := range candidates {
			if matcher.Match(d, c.query) {
				n++
			}
		}
		return Result{Count: n}, nil
	}

	var matched []document.D

	if len(c.sortSpec) == 0 {
		// No sort: skip/limit can be applied during the filter pass,
		// early-terminating once limit is reached.
		skip := intOr(c.skip, 0)
		limit := c.limit
		skipped := 0
		for _, d := range candidates {
			if !matcher.Match(d, c.query) {
				continue
			}
			if skipped < skip {
				skipped++
				continue
			}
			matched = append(matched, d)
			if c.mode == ModeFindOne {
				break
			}
			if limit != nil && len(matched) >= *limit {
				break
			}
		}
	} else {
		for _, d := range candidates {
			if matcher.Match(d, c.query) {
				matched = append(matched, d)
			}
		}
		c.sortStable(matched, c.source.StringComparator())
		matched = sliceWindow(matched, intOr(c.skip, 0), c.limit)
		if c.mode == ModeFindOne && len(matched) > 1 {
			matched = matched[:1]
		}
	}

	projected := make([]document.D, len(matched))
	for i, d := range matched {
		projected[i] = c.applyProjection(d)
	}

	switch c.mode {
	case ModeFindOne:
		if len(projected) == 0 {
			return Result{}, nil
		}
		return Result{One: projected[0]}, nil
	default:
		return Result{Docs: projected}, nil
	}
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func sliceWindow(docs []document.D, skip int, limit *int) []document.D {
	if skip > 0 {
		if skip >= len(docs) {
			return nil
		}
		docs = docs[skip:]
	}
	if limit != nil && *limit >= 0 && *limit < len(docs) {
		docs = docs[:*limit]
	}
	return docs
}

// sortStable sorts matched docs by the declared sort keys in order, each
// compared via the store's string comparator.
func (c *Cursor) sortStable(docs []document.D, cmp document.StringComparator) {
	sort.SliceStable(docs, func(i, j int) bool {
		for _, key := range c.sortSpec {
			vi := document.GetDotValue(docs[i], key.path)
			vj := document.GetDotValue(docs[j], key.path)
			cmpResult := document.Compare(vi, vj, cmp)
			if cmpResult == 0 {
				continue
			}
			if key.dir < 0 {
				return cmpResult > 0
			}
			return cmpResult < 0
		}
		return false
	})
}

// projectionFlag normalizes a projection value (which may arrive as an int
// literal from Go source or a float64 from decoded JSON) to 0 or 1.
func projectionFlag(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	default:
		return 0
	}
}

func (c *Cursor) validateProjection() error {
	if len(c.projection) == 0 {
		return nil
	}
	hasInclude, hasExclude := false, false
	for k, v := range c.projection {
		if k == "_id" {
			continue
		}
		if projectionFlag(v) == 1 {
			hasInclude = true
		} else {
			hasExclude = true
		}
	}
	if hasInclude && hasExclude {
		return fmt.Errorf("%w: projection mixes inclusion and exclusion", storeerr.ErrInconsistentProjection)
	}
	return nil
}

// applyProjection implements the projection rule. 1-style projections
// populate a fresh object via $set-like writes, omitting paths that read as
// undefined; 0-style projections start from the full document and $unset
// the named paths. _id is included by default and can be excluded
// explicitly with _id: 0.
func (c *Cursor) applyProjection(d document.D) document.D {
	if len(c.projection) == 0 {
		return document.DeepCopyDoc(d)
	}

	excludeID := false
	if v, ok := c.projection["_id"]; ok {
		excludeID = projectionFlag(v) == 0
	}

	isInclusion := false
	for k, v := range c.projection {
		if k == "_id" {
			continue
		}
		if projectionFlag(v) == 1 {
			isInclusion = true
		}
	}

	if isInclusion {
		out := document.D{}
		if !excludeID {
			if id, ok := d["_id"]; ok {
				out["_id"] = id
			}
		}
		for path, v := range c.projection {
			if path == "_id" {
				continue
			}
			if projectionFlag(v) != 1 {
				continue
			}
			val := document.GetDotValue(d, path)
			if document.IsUndefined(val) {
				continue
			}
			out = document.SetDotValue(out, path, document.DeepCopy(val))
		}
		return out
	}

	out := document.DeepCopyDoc(d)
	for path, v := range c.projection {
		if path == "_id" {
			continue
		}
		if projectionFlag(v) == 0 {
			out = document.UnsetDotValue(out, path)
		}
	}
	if excludeID {
		delete(out, "_id")
	}
	return out
}

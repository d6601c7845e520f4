// Package view derives what a history panel displays from a collection
// snapshot and a query. Nothing here mutates its input.
package view

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"writer-studio/internal/model"
)

// All is the category sentinel that disables category filtering.
const All = "All"

type SortKey string

const (
	SortDate     SortKey = "date"
	SortSubject  SortKey = "subject"
	SortCategory SortKey = "category"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Query is the transient search, filter and sort state of a history view.
type Query struct {
	Term          string     `json:"q"`
	Category      string     `json:"category"`
	FavoritesOnly bool       `json:"favorites"`
	SortKey       SortKey    `json:"sort"`
	Direction     Direction  `json:"order"`
	Kind          model.Kind `json:"kind,omitempty"`
}

// DefaultQuery shows everything, newest first.
func DefaultQuery() Query {
	return Query{Category: All, SortKey: SortDate, Direction: Desc}
}

// ParseQuery reads a Query from URL parameters q, category, favorites,
// sort, order and kind. Unknown sort keys and directions fall back to the
// defaults; "title" is accepted for "subject".
func ParseQuery(values url.Values) Query {
	q := DefaultQuery()
	q.Term = values.Get("q")
	if c := values.Get("category"); c != "" {
		q.Category = c
	}
	if fav, err := strconv.ParseBool(values.Get("favorites")); err == nil {
		q.FavoritesOnly = fav
	}
	switch strings.ToLower(values.Get("sort")) {
	case "subject", "title":
		q.SortKey = SortSubject
	case "category":
		q.SortKey = SortCategory
	}
	if strings.ToLower(values.Get("order")) == string(Asc) {
		q.Direction = Asc
	}
	switch k := model.Kind(strings.ToLower(values.Get("kind"))); k {
	case model.KindEmail, model.KindPrompt:
		q.Kind = k
	}
	return q
}

// Artifacts returns the entries of items matching q, in q's order. The
// result is a new slice; items is left untouched.
func Artifacts(items []*model.Artifact, q Query) []*model.Artifact {
	term := strings.ToLower(q.Term)
	out := make([]*model.Artifact, 0, len(items))
	for _, a := range items {
		if matchArtifact(a, term, q) {
			out = append(out, a)
		}
	}

	coll := collate.New(language.English)
	var compare func(a, b *model.Artifact) int
	switch q.SortKey {
	case SortSubject:
		compare = func(a, b *model.Artifact) int { return coll.CompareString(a.Subject, b.Subject) }
	case SortCategory:
		compare = func(a, b *model.Artifact) int { return coll.CompareString(a.Category, b.Category) }
	default:
		compare = func(a, b *model.Artifact) int { return a.CreatedAt.Compare(b.CreatedAt) }
	}
	sign := direction(q.Direction)
	sort.SliceStable(out, func(i, j int) bool {
		return sign*compare(out[i], out[j]) < 0
	})
	return out
}

func matchArtifact(a *model.Artifact, term string, q Query) bool {
	if q.Category != "" && q.Category != All && a.Category != q.Category {
		return false
	}
	if q.FavoritesOnly && !a.IsFavorite {
		return false
	}
	if q.Kind != "" && a.Kind != q.Kind {
		return false
	}
	if term == "" {
		return true
	}
	if contains(a.Subject, term) || contains(a.Content, term) || contains(a.Recipient, term) {
		return true
	}
	for _, tag := range a.Tags {
		if contains(tag, term) {
			return true
		}
	}
	return false
}

// Conversations filters by title or any message content and orders by
// last activity, or by title when q sorts by subject.
func Conversations(convs []*model.Conversation, q Query) []*model.Conversation {
	term := strings.ToLower(q.Term)
	out := make([]*model.Conversation, 0, len(convs))
	for _, c := range convs {
		if term == "" || matchConversation(c, term) {
			out = append(out, c)
		}
	}

	coll := collate.New(language.English)
	cmp := func(a, b *model.Conversation) int { return a.UpdatedAt.Compare(b.UpdatedAt) }
	if q.SortKey == SortSubject {
		cmp = func(a, b *model.Conversation) int { return coll.CompareString(a.Title, b.Title) }
	}
	sign := direction(q.Direction)
	sort.SliceStable(out, func(i, j int) bool {
		return sign*cmp(out[i], out[j]) < 0
	})
	return out
}

func matchConversation(c *model.Conversation, term string) bool {
	if contains(c.Title, term) {
		return true
	}
	for _, m := range c.Messages {
		if contains(m.Content, term) {
			return true
		}
	}
	return false
}

// OfKind keeps the entries of kind in order. An empty kind keeps all.
func OfKind(items []*model.Artifact, kind model.Kind) []*model.Artifact {
	if kind == "" {
		return items
	}
	out := make([]*model.Artifact, 0, len(items))
	for _, a := range items {
		if a.Kind == kind {
			out = append(out, a)
		}
	}
	return out
}

// Categories lists All followed by each distinct category in first-seen
// order.
func Categories(items []*model.Artifact) []string {
	out := []string{All}
	seen := map[string]struct{}{All: {}}
	for _, a := range items {
		if _, ok := seen[a.Category]; ok {
			continue
		}
		seen[a.Category] = struct{}{}
		out = append(out, a.Category)
	}
	return out
}

// Summary is the "Showing N of M" caption.
func Summary(shown, total int, noun string) string {
	return fmt.Sprintf("Showing %d of %d %s", shown, total, noun)
}

func direction(d Direction) int {
	if d == Asc {
		return 1
	}
	return -1
}

func contains(s, lowerTerm string) bool {
	return strings.Contains(strings.ToLower(s), lowerTerm)
}

package view

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"writer-studio/internal/model"
)

func day(month int) time.Time {
	return time.Date(2024, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
}

func fixture() []*model.Artifact {
	return []*model.Artifact{
		{ID: "jan", Kind: model.KindEmail, Subject: "Invoice reminder", Content: "Please pay", Recipient: "Sam", Category: "follow-up", Tags: []string{"billing"}, CreatedAt: day(1)},
		{ID: "mar", Kind: model.KindEmail, Subject: "apology", Content: "Sorry for the delay", Recipient: "Kim", Category: "apology", IsFavorite: true, CreatedAt: day(3)},
		{ID: "feb", Kind: model.KindPrompt, Subject: "Blog outline", Content: "Outline a post", Category: "writing", Tags: []string{"invoice-2024"}, CreatedAt: day(2)},
	}
}

func ids(items []*model.Artifact) []string {
	out := make([]string, len(items))
	for i, a := range items {
		out[i] = a.ID
	}
	return out
}

func TestArtifacts_DateDescIsNewestFirst(t *testing.T) {
	got := Artifacts(fixture(), DefaultQuery())
	assert.Equal(t, []string{"mar", "feb", "jan"}, ids(got))

	q := DefaultQuery()
	q.Direction = Asc
	assert.Equal(t, []string{"jan", "feb", "mar"}, ids(Artifacts(fixture(), q)))
}

func TestArtifacts_SearchCoversSubjectContentRecipientTags(t *testing.T) {
	q := DefaultQuery()
	q.Term = "INVOICE"
	assert.ElementsMatch(t, []string{"jan", "feb"}, ids(Artifacts(fixture(), q)))

	q.Term = "kim"
	assert.Equal(t, []string{"mar"}, ids(Artifacts(fixture(), q)))

	q.Term = "nothing matches"
	assert.Empty(t, Artifacts(fixture(), q))
}

func TestArtifacts_Filters(t *testing.T) {
	q := DefaultQuery()
	q.Category = "apology"
	assert.Equal(t, []string{"mar"}, ids(Artifacts(fixture(), q)))

	q = DefaultQuery()
	q.FavoritesOnly = true
	assert.Equal(t, []string{"mar"}, ids(Artifacts(fixture(), q)))

	q = DefaultQuery()
	q.Kind = model.KindPrompt
	assert.Equal(t, []string{"feb"}, ids(Artifacts(fixture(), q)))
}

func TestArtifacts_SubjectSortIsCaseInsensitiveCollation(t *testing.T) {
	q := DefaultQuery()
	q.SortKey = SortSubject
	q.Direction = Asc
	assert.Equal(t, []string{"mar", "feb", "jan"}, ids(Artifacts(fixture(), q)))

	q.Direction = Desc
	assert.Equal(t, []string{"jan", "feb", "mar"}, ids(Artifacts(fixture(), q)))
}

func TestArtifacts_IsPureAndDeterministic(t *testing.T) {
	items := fixture()
	before := ids(items)
	q := Query{Term: "o", Category: All, SortKey: SortCategory, Direction: Asc}

	first := Artifacts(items, q)
	second := Artifacts(items, q)

	assert.Equal(t, ids(first), ids(second))
	assert.Equal(t, before, ids(items), "input order must not change")
	for _, a := range first {
		assert.Contains(t, before, a.ID)
	}
}

func TestArtifacts_StableForEqualKeys(t *testing.T) {
	items := []*model.Artifact{
		{ID: "a", Category: "x", CreatedAt: day(1)},
		{ID: "b", Category: "x", CreatedAt: day(2)},
		{ID: "c", Category: "x", CreatedAt: day(3)},
	}
	q := DefaultQuery()
	q.SortKey = SortCategory
	assert.Equal(t, []string{"a", "b", "c"}, ids(Artifacts(items, q)))
}

func TestConversations(t *testing.T) {
	convs := []*model.Conversation{
		{ID: "old", Title: "Zebra facts", UpdatedAt: day(1), Messages: []model.Message{{Content: "stripes"}}},
		{ID: "new", Title: "apple pie", UpdatedAt: day(2), Messages: []model.Message{{Content: "recipe with invoice"}}},
	}

	got := Conversations(convs, DefaultQuery())
	require.Len(t, got, 2)
	assert.Equal(t, "new", got[0].ID)

	q := DefaultQuery()
	q.Term = "STRIPES"
	got = Conversations(convs, q)
	require.Len(t, got, 1)
	assert.Equal(t, "old", got[0].ID)

	q = DefaultQuery()
	q.SortKey = SortSubject
	q.Direction = Asc
	got = Conversations(convs, q)
	assert.Equal(t, "new", got[0].ID)
}

func TestCategories(t *testing.T) {
	items := append(fixture(), &model.Artifact{ID: "x", Category: "follow-up"})
	assert.Equal(t, []string{All, "follow-up", "apology", "writing"}, Categories(items))
	assert.Equal(t, []string{All}, Categories(nil))
}

func TestOfKind(t *testing.T) {
	assert.Equal(t, []string{"jan", "mar"}, ids(OfKind(fixture(), model.KindEmail)))
	assert.Equal(t, []string{"feb"}, ids(OfKind(fixture(), model.KindPrompt)))
	assert.Len(t, OfKind(fixture(), ""), 3)
}

func TestParseQuery(t *testing.T) {
	q := ParseQuery(url.Values{
		"q":         {"invoice"},
		"category":  {"apology"},
		"favorites": {"true"},
		"sort":      {"title"},
		"order":     {"ASC"},
		"kind":      {"prompt"},
	})
	assert.Equal(t, Query{Term: "invoice", Category: "apology", FavoritesOnly: true, SortKey: SortSubject, Direction: Asc, Kind: model.KindPrompt}, q)

	assert.Equal(t, DefaultQuery(), ParseQuery(url.Values{"sort": {"bogus"}, "order": {"sideways"}, "kind": {"fax"}}))
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "Showing 2 of 5 emails", Summary(2, 5, "emails"))
}

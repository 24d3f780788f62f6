package query

import (
	"context"
	"net/url"
	"testing"

	"shelf/pkg/metadata"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func toSQL(t *testing.T, target Target, table string, where exp.Expression) string {
	t.Helper()
	sql, _, err := goqu.Dialect("postgres").
		From(goqu.T(table).As(target.Alias)).
		Where(where).
		Prepared(false).
		ToSQL()
	require.NoError(t, err)
	return sql
}

func TestBuildWhereClauseSearchWithoutStatus(t *testing.T) {
	params := ParseSearchParams(url.Values{"s": {"drill"}, "status": {"ALL"}})

	sql := toSQL(t, Assets, "assets", BuildWhereClause("org1", params, Assets))

	assert.Contains(t, sql, `"a"."organization_id" = 'org1'`)
	assert.Contains(t, sql, `"a"."title" ILIKE '%drill%'`)
	assert.NotContains(t, sql, "status")
}

func TestBuildWhereClauseAlwaysScopesOrganization(t *testing.T) {
	sql := toSQL(t, Kits, "kits", BuildWhereClause("org1", SearchParams{}, Kits))

	assert.Contains(t, sql, `"k"."organization_id" = 'org1'`)
	assert.NotContains(t, sql, "AND")
}

func TestBuildWhereClauseAllFilters(t *testing.T) {
	status := metadata.StatusInCustody
	params := SearchParams{
		Search:      "saw",
		Status:      &status,
		TeamMember:  "tm-1",
		CategoryID:  "cat-1",
		LocationIDs: []string{"loc-1", "loc-2"},
	}

	sql := toSQL(t, Assets, "assets", BuildWhereClause("org1", params, Assets))

	assert.Contains(t, sql, `"a"."status" = 'IN_CUSTODY'`)
	assert.Contains(t, sql, `"a"."category_id" = 'cat-1'`)
	assert.Contains(t, sql, `"a"."location_id" IN ('loc-1', 'loc-2')`)
	assert.Contains(t, sql, `a.id IN (SELECT asset_id FROM custodies WHERE team_member_id = 'tm-1')`)
	assert.Contains(t, sql, `"a"."title" ILIKE '%saw%'`)
}

func TestBuildWhereClauseKitsIgnoreCategory(t *testing.T) {
	params := SearchParams{CategoryID: "cat-1", TeamMember: "tm-1"}

	sql := toSQL(t, Kits, "kits", BuildWhereClause("org1", params, Kits))

	assert.NotContains(t, sql, "category_id")
	assert.Contains(t, sql, `k.id IN (SELECT kit_id FROM kit_custodies WHERE team_member_id = 'tm-1')`)
}

func TestBuildWhereClauseUnresolvedLocationMatchesNothing(t *testing.T) {
	params := SearchParams{LocationID: "missing", LocationIDs: []string{}}

	sql := toSQL(t, Assets, "assets", BuildWhereClause("org1", params, Assets))

	assert.Contains(t, sql, "1 = 0")
	assert.NotContains(t, sql, "location_id")
}

func TestParseSearchParams(t *testing.T) {
	params := ParseSearchParams(url.Values{
		"s":          {"  Drill "},
		"status":     {"available"},
		"teamMember": {"tm-1"},
		"category":   {"cat-1"},
		"location":   {"loc-1"},
		"orderBy":    {"title"},
	})

	assert.Equal(t, "Drill", params.Search)
	require.NotNil(t, params.Status)
	assert.Equal(t, metadata.StatusAvailable, *params.Status)
	assert.Equal(t, "tm-1", params.TeamMember)
	assert.Equal(t, "cat-1", params.CategoryID)
	assert.Equal(t, "loc-1", params.LocationID)
	assert.Nil(t, params.LocationIDs)

	invalid := ParseSearchParams(url.Values{"status": {"BROKEN"}, "s": {""}})
	assert.Nil(t, invalid.Status, "invalid statuses are ignored")
	assert.Empty(t, invalid.Search)

	assert.Nil(t, ParseSearchParams(url.Values{"status": {"all"}}).Status)
}

type stubResolver struct {
	ids   []string
	calls int
}

func (s *stubResolver) GetLocationDescendantIDs(_ context.Context, _, _ string, _ bool) ([]string, error) {
	s.calls++
	return s.ids, nil
}

func TestExpandLocation(t *testing.T) {
	resolver := &stubResolver{ids: []string{"loc1", "loc2"}}

	params := SearchParams{LocationID: "loc1"}
	require.NoError(t, params.ExpandLocation(context.Background(), resolver, "org1", true))
	assert.Equal(t, []string{"loc1", "loc2"}, params.LocationIDs)

	params = SearchParams{LocationID: "loc1"}
	require.NoError(t, params.ExpandLocation(context.Background(), resolver, "org1", false))
	assert.Equal(t, []string{"loc1"}, params.LocationIDs)

	params = SearchParams{}
	require.NoError(t, params.ExpandLocation(context.Background(), resolver, "org1", true))
	assert.Nil(t, params.LocationIDs)
	assert.Equal(t, 1, resolver.calls)
}

// Package query composes organization scoped list predicates for assets and kits.
// It only builds expressions; executing them is up to the repositories.
package query

import (
	"context"
	"net/url"
	"strings"

	"shelf/internal/repository"
	"shelf/pkg/metadata"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
)

// Target describes the table a predicate is built for.
type Target struct {
	Alias        string
	TextColumn   string
	CustodyTable string
	CustodyFK    string
	HasCategory  bool
}

var (
	Assets = Target{Alias: "a", TextColumn: "title", CustodyTable: "custodies", CustodyFK: "asset_id", HasCategory: true}
	Kits   = Target{Alias: "k", TextColumn: "name", CustodyTable: "kit_custodies", CustodyFK: "kit_id"}
)

func (t Target) column(name string) string {
	return t.Alias + "." + name
}

type SearchParams struct {
	Search     string
	Status     *metadata.Status
	TeamMember string
	CategoryID string
	// LocationID is the raw location filter. Callers expand it into
	// LocationIDs (the location and its descendants) before building.
	LocationID  string
	LocationIDs []string
}

// ParseSearchParams reads s, status, teamMember, category and location.
// Empty values, unknown keys and invalid statuses are ignored.
func ParseSearchParams(values url.Values) SearchParams {
	params := SearchParams{
		Search:     strings.TrimSpace(values.Get("s")),
		TeamMember: strings.TrimSpace(values.Get("teamMember")),
		CategoryID: strings.TrimSpace(values.Get("category")),
		LocationID: strings.TrimSpace(values.Get("location")),
	}

	if raw := strings.TrimSpace(values.Get("status")); raw != "" && !strings.EqualFold(raw, metadata.StatusAll) {
		if status, err := metadata.NewStatus(raw); err == nil {
			params.Status = &status
		}
	}

	return params
}

// BuildWhereClause returns the predicate selecting target rows of one
// organization that match params. The organization filter is always present.
func BuildWhereClause(organizationID string, params SearchParams, target Target) exp.Expression {
	conditions := repository.NewQueryBuilder()
	conditions.AddCondition("organization_id", organizationID)
	if params.Status != nil {
		conditions.AddCondition("status", string(*params.Status))
	}
	if params.CategoryID != "" && target.HasCategory {
		conditions.AddCondition("category_id", params.CategoryID)
	}

	aliases := map[string]string{
		"organization_id": target.column("organization_id"),
		"status":          target.column("status"),
		"category_id":     target.column("category_id"),
		"location_ids":    target.column("location_id"),
	}

	predicates := []exp.Expression{}

	if params.LocationIDs != nil {
		if len(params.LocationIDs) == 0 {
			// the requested location does not exist in this organization
			predicates = append(predicates, goqu.L("1 = 0"))
		} else {
			conditions.AddCondition("location_ids", params.LocationIDs)
		}
	} else if params.LocationID != "" {
		conditions.AddCondition("location_ids", params.LocationID)
	}

	predicates = append([]exp.Expression{conditions.BuildConditions(aliases)}, predicates...)

	if params.Search != "" {
		predicates = append(predicates, goqu.I(target.column(target.TextColumn)).ILike("%"+params.Search+"%"))
	}

	if params.TeamMember != "" {
		predicates = append(predicates, goqu.L(
			target.column("id")+" IN (SELECT "+target.CustodyFK+" FROM "+target.CustodyTable+" WHERE team_member_id = ?)",
			params.TeamMember,
		))
	}

	return goqu.And(predicates...)
}

// LocationResolver expands a location into its subtree.
type LocationResolver interface {
	GetLocationDescendantIDs(ctx context.Context, organizationID, locationID string, includeSelf bool) ([]string, error)
}

// ExpandLocation fills LocationIDs from LocationID. With includeChildren the
// whole subtree matches, otherwise only the location itself.
func (p *SearchParams) ExpandLocation(ctx context.Context, resolver LocationResolver, organizationID string, includeChildren bool) error {
	if p.LocationID == "" {
		return nil
	}

	if !includeChildren {
		p.LocationIDs = []string{p.LocationID}
		return nil
	}

	ids, err := resolver.GetLocationDescendantIDs(ctx, organizationID, p.LocationID, true)
	if err != nil {
		return err
	}
	p.LocationIDs = ids

	return nil
}

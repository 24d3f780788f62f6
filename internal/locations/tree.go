package locations

import (
	"context"

	"shelf/internal/repository"
	custom_error "shelf/pkg/errors"

	"github.com/doug-martin/goqu/v9"
)

// frontierBatchSize bounds the number of bind parameters in one IN list.
const frontierBatchSize = 500

// GetLocationDescendantIDs returns locationID and every location below it in the
// organization. The root comes first when includeSelf is set; the order of the
// remaining ids is unspecified. A location missing from the organization yields
// an empty slice.
func (r *LocationRepository) GetLocationDescendantIDs(ctx context.Context, organizationID, locationID string, includeSelf bool) ([]string, error) {
	return descendantIDs(ctx, r.repository.GoquDBWrapper, organizationID, locationID, includeSelf)
}

// GetLocationAncestorIDs returns the parent chain of locationID, nearest parent first.
func (r *LocationRepository) GetLocationAncestorIDs(ctx context.Context, organizationID, locationID string) ([]string, error) {
	return ancestorIDs(ctx, r.repository.GoquDBWrapper, organizationID, locationID)
}

func descendantIDs(ctx context.Context, q repository.Querier, organizationID, locationID string, includeSelf bool) ([]string, error) {
	exists, err := locationExists(ctx, q, organizationID, locationID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return []string{}, nil
	}

	// visited guards against parent cycles left behind by bad data
	visited := map[string]struct{}{locationID: {}}
	result := []string{locationID}
	frontier := []string{locationID}

	for len(frontier) > 0 {
		var next []string
		for start := 0; start < len(frontier); start += frontierBatchSize {
			end := min(start+frontierBatchSize, len(frontier))

			var children []string
			err := q.From("locations").
				Select("id").
				Where(goqu.Ex{
					"organization_id": organizationID,
					"parent_id":       frontier[start:end],
				}).
				Executor().
				ScanValsContext(ctx, &children)
			if err != nil {
				return nil, custom_error.Storage("select child locations", err)
			}

			for _, id := range children {
				if _, seen := visited[id]; seen {
					continue
				}
				visited[id] = struct{}{}
				result = append(result, id)
				next = append(next, id)
			}
		}
		frontier = next
	}

	if !includeSelf {
		result = result[1:]
	}

	return result, nil
}

func ancestorIDs(ctx context.Context, q repository.Querier, organizationID, locationID string) ([]string, error) {
	ancestors := []string{}
	visited := map[string]struct{}{locationID: {}}
	current := locationID

	for {
		var parentID *string
		found, err := q.From("locations").
			Select("parent_id").
			Where(goqu.Ex{"organization_id": organizationID, "id": current}).
			Executor().
			ScanValContext(ctx, &parentID)
		if err != nil {
			return nil, custom_error.Storage("select parent location", err)
		}
		if !found || parentID == nil {
			return ancestors, nil
		}
		if _, seen := visited[*parentID]; seen {
			return ancestors, nil
		}
		visited[*parentID] = struct{}{}
		ancestors = append(ancestors, *parentID)
		current = *parentID
	}
}

func locationExists(ctx context.Context, q repository.Querier, organizationID, locationID string) (bool, error) {
	var id string
	found, err := q.From("locations").
		Select("id").
		Where(goqu.Ex{"organization_id": organizationID, "id": locationID}).
		Executor().
		ScanValContext(ctx, &id)
	if err != nil {
		return false, custom_error.Storage("select location", err)
	}

	return found, nil
}

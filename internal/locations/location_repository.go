package locations

import (
	"context"
	"strings"
	"time"

	"shelf/internal/repository"
	custom_error "shelf/pkg/errors"
	"shelf/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"
)

type LocationRepository struct {
	repository *repository.Repository
}

func NewLocationRepository(r *repository.Repository) *LocationRepository {
	return &LocationRepository{repository: r}
}

var locationColumns = []interface{}{"id", "organization_id", "parent_id", "name", "description", "created_at", "updated_at"}

func (r *LocationRepository) GetLocations(ctx context.Context, organizationID string) ([]models.Location, error) {
	locations := []models.Location{}
	query := r.repository.GoquDBWrapper.
		Select(locationColumns...).
		From("locations").
		Where(goqu.Ex{"organization_id": organizationID}).
		Order(goqu.I("name").Asc())

	if err := query.Executor().ScanStructsContext(ctx, &locations); err != nil {
		return nil, custom_error.Storage("select locations", err)
	}

	return locations, nil
}

func (r *LocationRepository) GetLocation(ctx context.Context, organizationID, locationID string) (*models.Location, error) {
	return getLocation(ctx, r.repository.GoquDBWrapper, organizationID, locationID)
}

func (r *LocationRepository) PersistLocation(ctx context.Context, organizationID string, req models.CreateLocationRequest) (*models.Location, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, custom_error.Invalid("name", req.Name, "must not be empty")
	}

	now := time.Now().UTC()
	location := models.Location{
		ID:             uuid.NewString(),
		OrganizationID: organizationID,
		ParentID:       req.ParentID,
		Name:           name,
		Description:    req.Description,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err := repository.WithTransaction(ctx, r.repository.GoquDBWrapper, func(tx *goqu.TxDatabase) error {
		if location.ParentID != nil {
			exists, err := locationExists(ctx, tx, organizationID, *location.ParentID)
			if err != nil {
				return err
			}
			if !exists {
				return custom_error.NotFound("location", *location.ParentID, organizationID)
			}
		}

		_, err := tx.Insert("locations").
			Rows(goqu.Record{
				"id":              location.ID,
				"organization_id": location.OrganizationID,
				"parent_id":       location.ParentID,
				"name":            location.Name,
				"description":     location.Description,
				"created_at":      location.CreatedAt,
				"updated_at":      location.UpdatedAt,
			}).
			Executor().
			ExecContext(ctx)
		if err != nil {
			return custom_error.TranslateDBError("insert location", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &location, nil
}

func (r *LocationRepository) UpdateLocation(ctx context.Context, organizationID, locationID string, req models.UpdateLocationRequest) (*models.Location, error) {
	updates := goqu.Record{}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, custom_error.Invalid("name", *req.Name, "must not be empty")
		}
		updates["name"] = name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if len(updates) == 0 {
		return nil, custom_error.Invalid("body", "", "no fields to update")
	}
	updates["updated_at"] = time.Now().UTC()

	result, err := r.repository.GoquDBWrapper.
		Update("locations").
		Set(updates).
		Where(goqu.Ex{"id": locationID, "organization_id": organizationID}).
		Executor().
		ExecContext(ctx)
	if err != nil {
		return nil, custom_error.TranslateDBError("update location", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, custom_error.Storage("update location rows affected", err)
	}
	if rowsAffected == 0 {
		return nil, custom_error.NotFound("location", locationID, organizationID)
	}

	return r.GetLocation(ctx, organizationID, locationID)
}

// MoveLocation changes the parent of a location. A nil parentID makes it a root.
// Moving a location below itself or one of its descendants is a conflict.
func (r *LocationRepository) MoveLocation(ctx context.Context, organizationID, locationID string, parentID *string) (*models.Location, error) {
	err := repository.WithTransaction(ctx, r.repository.GoquDBWrapper, func(tx *goqu.TxDatabase) error {
		exists, err := locationExists(ctx, tx, organizationID, locationID)
		if err != nil {
			return err
		}
		if !exists {
			return custom_error.NotFound("location", locationID, organizationID)
		}

		if parentID != nil {
			if err := r.lockTree(ctx, tx, organizationID); err != nil {
				return err
			}

			parentExists, err := locationExists(ctx, tx, organizationID, *parentID)
			if err != nil {
				return err
			}
			if !parentExists {
				return custom_error.NotFound("location", *parentID, organizationID)
			}

			subtree, err := descendantIDs(ctx, tx, organizationID, locationID, true)
			if err != nil {
				return err
			}
			for _, id := range subtree {
				if id == *parentID {
					return custom_error.Conflict("location", locationID, organizationID, "cannot move a location below itself or its descendants")
				}
			}
		}

		_, err = tx.Update("locations").
			Set(goqu.Record{"parent_id": parentID, "updated_at": time.Now().UTC()}).
			Where(goqu.Ex{"id": locationID, "organization_id": organizationID}).
			Executor().
			ExecContext(ctx)
		if err != nil {
			return custom_error.TranslateDBError("move location", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.GetLocation(ctx, organizationID, locationID)
}

// lockTree serializes reparenting within an organization so two opposite
// moves cannot both pass the descendant check. sqlite runs one writer at a
// time.
func (r *LocationRepository) lockTree(ctx context.Context, tx *goqu.TxDatabase, organizationID string) error {
	if r.repository.GoquDBWrapper.Dialect() != "postgres" {
		return nil
	}

	var id string
	found, err := tx.From("organizations").
		Select("id").
		Where(goqu.Ex{"id": organizationID}).
		ForUpdate(exp.Wait).
		Executor().
		ScanValContext(ctx, &id)
	if err != nil {
		return custom_error.Storage("lock location tree", err)
	}
	if !found {
		return custom_error.NotFound("organization", organizationID, organizationID)
	}

	return nil
}

// RemoveLocation deletes a location that nothing references. Sub-locations,
// assets and kits must be moved away first.
func (r *LocationRepository) RemoveLocation(ctx context.Context, organizationID, locationID string) (*models.Location, error) {
	var removed *models.Location

	err := repository.WithTransaction(ctx, r.repository.GoquDBWrapper, func(tx *goqu.TxDatabase) error {
		location, err := getLocation(ctx, tx, organizationID, locationID)
		if err != nil {
			return err
		}

		references := []struct {
			table  string
			column string
			reason string
		}{
			{"locations", "parent_id", "location has sub-locations"},
			{"assets", "location_id", "location still holds assets"},
			{"kits", "location_id", "location still holds kits"},
		}
		for _, ref := range references {
			var count int
			_, err := tx.From(ref.table).
				Select(goqu.COUNT("*")).
				Where(goqu.Ex{ref.column: locationID, "organization_id": organizationID}).
				Executor().
				ScanValContext(ctx, &count)
			if err != nil {
				return custom_error.Storage("count "+ref.table+" in location", err)
			}
			if count > 0 {
				return custom_error.Conflict("location", locationID, organizationID, ref.reason)
			}
		}

		_, err = tx.Delete("locations").
			Where(goqu.Ex{"id": locationID, "organization_id": organizationID}).
			Executor().
			ExecContext(ctx)
		if err != nil {
			return custom_error.TranslateDBError("delete location", err)
		}

		removed = location
		return nil
	})
	if err != nil {
		return nil, err
	}

	return removed, nil
}

func getLocation(ctx context.Context, q repository.Querier, organizationID, locationID string) (*models.Location, error) {
	var location models.Location
	found, err := q.From("locations").
		Select(locationColumns...).
		Where(goqu.Ex{"id": locationID, "organization_id": organizationID}).
		Executor().
		ScanStructContext(ctx, &location)
	if err != nil {
		return nil, custom_error.Storage("select location", err)
	}
	if !found {
		return nil, custom_error.NotFound("location", locationID, organizationID)
	}

	return &location, nil
}

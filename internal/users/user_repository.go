package users

import (
	"context"
	"strings"
	"time"

	"shelf/internal/repository"
	custom_error "shelf/pkg/errors"
	"shelf/pkg/models"
	"shelf/pkg/roles"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
)

type UserRepository interface {
	PersistUser(ctx context.Context, organizationID string, req models.CreateUserRequest, hashedPassword []byte) (*models.User, error)
	GetUser(ctx context.Context, organizationID, userID string) (*models.User, error)
	GetUsers(ctx context.Context, organizationID string) ([]models.User, error)
	UpdateUser(ctx context.Context, organizationID, userID string, changes *models.UserChanges) error
	PersistTeamMember(ctx context.Context, organizationID string, req models.CreateTeamMemberRequest) (*models.TeamMember, error)
	GetTeamMembers(ctx context.Context, organizationID string) ([]models.TeamMember, error)
}

type userRepositoryImpl struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) UserRepository {
	return &userRepositoryImpl{repository: r}
}

var userColumns = []interface{}{"id", "organization_id", "username", "password_hash", "role"}

func (r *userRepositoryImpl) PersistUser(ctx context.Context, organizationID string, req models.CreateUserRequest, hashedPassword []byte) (*models.User, error) {
	user := models.User{
		ID:             uuid.NewString(),
		OrganizationID: organizationID,
		Username:       strings.TrimSpace(req.Username),
		PasswordHash:   string(hashedPassword),
		Role:           req.Role,
	}

	err := insertUser(ctx, r.repository.GoquDBWrapper, user)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepositoryImpl) GetUsers(ctx context.Context, organizationID string) ([]models.User, error) {
	users := []models.User{}
	err := r.repository.GoquDBWrapper.
		Select(userColumns...).
		From("users").
		Where(goqu.Ex{"organization_id": organizationID}).
		Order(goqu.I("username").Asc()).
		Executor().
		ScanStructsContext(ctx, &users)
	if err != nil {
		return nil, custom_error.Storage("select users", err)
	}

	return users, nil
}

func (r *userRepositoryImpl) GetUser(ctx context.Context, organizationID, userID string) (*models.User, error) {
	var user models.User
	found, err := r.repository.GoquDBWrapper.
		Select(userColumns...).
		From("users").
		Where(goqu.Ex{"id": userID, "organization_id": organizationID}).
		Executor().
		ScanStructContext(ctx, &user)
	if err != nil {
		return nil, custom_error.Storage("select user", err)
	}
	if !found {
		return nil, custom_error.NotFound("user", userID, organizationID)
	}

	return &user, nil
}

func (r *userRepositoryImpl) UpdateUser(ctx context.Context, organizationID, userID string, changes *models.UserChanges) error {
	record := goqu.Record{}
	if changes.PasswordHash != nil {
		record["password_hash"] = *changes.PasswordHash
	}
	if changes.Role != nil {
		record["role"] = string(*changes.Role)
	}
	if len(record) == 0 {
		return nil
	}

	result, err := r.repository.GoquDBWrapper.
		Update("users").
		Set(record).
		Where(goqu.Ex{"id": userID, "organization_id": organizationID}).
		Executor().
		ExecContext(ctx)
	if err != nil {
		return custom_error.TranslateDBError("update user", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return custom_error.Storage("update user rows affected", err)
	}
	if rowsAffected == 0 {
		return custom_error.NotFound("user", userID, organizationID)
	}

	return nil
}

func (r *userRepositoryImpl) PersistTeamMember(ctx context.Context, organizationID string, req models.CreateTeamMemberRequest) (*models.TeamMember, error) {
	member := models.TeamMember{
		ID:             uuid.NewString(),
		OrganizationID: organizationID,
		Name:           strings.TrimSpace(req.Name),
		UserID:         req.UserID,
		CreatedAt:      time.Now().UTC(),
	}
	if member.Name == "" {
		return nil, custom_error.Invalid("name", req.Name, "must not be empty")
	}

	err := repository.WithTransaction(ctx, r.repository.GoquDBWrapper, func(tx *goqu.TxDatabase) error {
		if member.UserID != nil {
			var count int
			_, err := tx.From("users").
				Select(goqu.COUNT("*")).
				Where(goqu.Ex{"id": *member.UserID, "organization_id": organizationID}).
				Executor().
				ScanValContext(ctx, &count)
			if err != nil {
				return custom_error.Storage("select user", err)
			}
			if count == 0 {
				return custom_error.NotFound("user", *member.UserID, organizationID)
			}
		}

		return insertTeamMember(ctx, tx, member)
	})
	if err != nil {
		return nil, err
	}

	return &member, nil
}

func (r *userRepositoryImpl) GetTeamMembers(ctx context.Context, organizationID string) ([]models.TeamMember, error) {
	members := []models.TeamMember{}
	err := r.repository.GoquDBWrapper.
		Select("id", "organization_id", "name", "user_id", "created_at").
		From("team_members").
		Where(goqu.Ex{"organization_id": organizationID}).
		Order(goqu.I("name").Asc()).
		Executor().
		ScanStructsContext(ctx, &members)
	if err != nil {
		return nil, custom_error.Storage("select team members", err)
	}

	return members, nil
}

// Bootstrap creates an organization with its owner account and the team
// member standing for that owner.
func Bootstrap(ctx context.Context, r *repository.Repository, organizationName, username string, hashedPassword []byte) (*models.Organization, *models.User, error) {
	now := time.Now().UTC()
	organization := models.Organization{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(organizationName),
		CreatedAt: now,
	}
	if organization.Name == "" {
		return nil, nil, custom_error.Invalid("organization", organizationName, "must not be empty")
	}

	user := models.User{
		ID:             uuid.NewString(),
		OrganizationID: organization.ID,
		Username:       strings.TrimSpace(username),
		PasswordHash:   string(hashedPassword),
		Role:           roles.Owner,
	}

	err := repository.WithTransaction(ctx, r.GoquDBWrapper, func(tx *goqu.TxDatabase) error {
		_, err := tx.Insert("organizations").
			Rows(goqu.Record{"id": organization.ID, "name": organization.Name, "created_at": organization.CreatedAt}).
			Executor().
			ExecContext(ctx)
		if err != nil {
			return custom_error.TranslateDBError("insert organization", err)
		}

		if err := insertUser(ctx, tx, user); err != nil {
			return err
		}

		return insertTeamMember(ctx, tx, models.TeamMember{
			ID:             uuid.NewString(),
			OrganizationID: organization.ID,
			Name:           user.Username,
			UserID:         &user.ID,
			CreatedAt:      now,
		})
	})
	if err != nil {
		return nil, nil, err
	}

	return &organization, &user, nil
}

func insertUser(ctx context.Context, q repository.Querier, user models.User) error {
	if user.Username == "" {
		return custom_error.Invalid("username", user.Username, "must not be empty")
	}
	if !user.Role.IsValid() {
		return custom_error.Invalid("role", user.Role.String(), "unknown role")
	}

	_, err := q.Insert("users").
		Rows(goqu.Record{
			"id":              user.ID,
			"organization_id": user.OrganizationID,
			"username":        user.Username,
			"password_hash":   user.PasswordHash,
			"role":            string(user.Role),
		}).
		Executor().
		ExecContext(ctx)
	if err != nil {
		return custom_error.TranslateDBError("Username already taken", err)
	}

	return nil
}

func insertTeamMember(ctx context.Context, q repository.Querier, member models.TeamMember) error {
	_, err := q.Insert("team_members").
		Rows(goqu.Record{
			"id":              member.ID,
			"organization_id": member.OrganizationID,
			"name":            member.Name,
			"user_id":         member.UserID,
			"created_at":      member.CreatedAt,
		}).
		Executor().
		ExecContext(ctx)
	if err != nil {
		return custom_error.TranslateDBError("insert team member", err)
	}

	return nil
}

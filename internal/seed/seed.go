// Package seed loads a YAML description of an organization's locations,
// categories, team members and assets and creates them through the regular
// repositories, so codes and audit rules apply as they do for API writes.
package seed

import (
	"context"
	"fmt"
	"io"
	"strings"

	custom_error "shelf/pkg/errors"
	"shelf/pkg/models"

	"gopkg.in/yaml.v3"
)

type File struct {
	Categories  []Category `yaml:"categories"`
	TeamMembers []string   `yaml:"team_members"`
	Locations   []Location `yaml:"locations"`
	Assets      []Asset    `yaml:"assets"`
}

type Category struct {
	Name       string `yaml:"name"`
	CodePrefix string `yaml:"code_prefix"`
}

type Location struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Children    []Location `yaml:"children"`
}

// Asset references its location by slash separated path ("Warehouse/Shelf A")
// and its category by name.
type Asset struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Location    string `yaml:"location"`
	Category    string `yaml:"category"`
}

// Load decodes a seed file. Unknown keys are rejected.
func Load(r io.Reader) (*File, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var file File
	if err := decoder.Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}

	return &file, nil
}

type LocationCreator interface {
	PersistLocation(ctx context.Context, organizationID string, req models.CreateLocationRequest) (*models.Location, error)
}

type CategoryCreator interface {
	PersistCategory(ctx context.Context, organizationID string, req models.CreateCategoryRequest) (*models.Category, error)
}

type TeamMemberCreator interface {
	PersistTeamMember(ctx context.Context, organizationID string, req models.CreateTeamMemberRequest) (*models.TeamMember, error)
}

type AssetCreator interface {
	PersistAsset(ctx context.Context, organizationID string, req models.CreateAssetRequest) (*models.Asset, error)
}

type Seeder struct {
	locations   LocationCreator
	categories  CategoryCreator
	teamMembers TeamMemberCreator
	assets      AssetCreator
}

func NewSeeder(l LocationCreator, c CategoryCreator, t TeamMemberCreator, a AssetCreator) *Seeder {
	return &Seeder{locations: l, categories: c, teamMembers: t, assets: a}
}

type Summary struct {
	Categories  int
	TeamMembers int
	Locations   int
	Assets      int
}

// Apply creates everything in file for the organization. It stops at the first
// failure; rows created before it are kept.
func (s *Seeder) Apply(ctx context.Context, organizationID string, file *File) (Summary, error) {
	var summary Summary

	categoryIDs := map[string]string{}
	for _, c := range file.Categories {
		category, err := s.categories.PersistCategory(ctx, organizationID, models.CreateCategoryRequest{Name: c.Name, CodePrefix: c.CodePrefix})
		if err != nil {
			return summary, fmt.Errorf("category %q: %w", c.Name, err)
		}
		categoryIDs[c.Name] = category.ID
		summary.Categories++
	}

	for _, name := range file.TeamMembers {
		if _, err := s.teamMembers.PersistTeamMember(ctx, organizationID, models.CreateTeamMemberRequest{Name: name}); err != nil {
			return summary, fmt.Errorf("team member %q: %w", name, err)
		}
		summary.TeamMembers++
	}

	locationIDs := map[string]string{}
	if err := s.createLocations(ctx, organizationID, nil, "", file.Locations, locationIDs, &summary); err != nil {
		return summary, err
	}

	for _, a := range file.Assets {
		req := models.CreateAssetRequest{Title: a.Title, Description: optional(a.Description)}
		if a.Location != "" {
			id, ok := locationIDs[a.Location]
			if !ok {
				return summary, custom_error.Invalid("location", a.Location, "not declared in the seed file")
			}
			req.LocationID = &id
		}
		if a.Category != "" {
			id, ok := categoryIDs[a.Category]
			if !ok {
				return summary, custom_error.Invalid("category", a.Category, "not declared in the seed file")
			}
			req.CategoryID = &id
		}

		if _, err := s.assets.PersistAsset(ctx, organizationID, req); err != nil {
			return summary, fmt.Errorf("asset %q: %w", a.Title, err)
		}
		summary.Assets++
	}

	return summary, nil
}

func (s *Seeder) createLocations(ctx context.Context, organizationID string, parentID *string, parentPath string, nodes []Location, ids map[string]string, summary *Summary) error {
	for _, node := range nodes {
		path := strings.TrimSpace(node.Name)
		if parentPath != "" {
			path = parentPath + "/" + path
		}

		location, err := s.locations.PersistLocation(ctx, organizationID, models.CreateLocationRequest{
			Name:        node.Name,
			Description: optional(node.Description),
			ParentID:    parentID,
		})
		if err != nil {
			return fmt.Errorf("location %q: %w", path, err)
		}
		ids[path] = location.ID
		summary.Locations++

		if err := s.createLocations(ctx, organizationID, &location.ID, path, node.Children, ids, summary); err != nil {
			return err
		}
	}

	return nil
}

func optional(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}

// Package resources manages the program's content library.
package resources

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/j-veylop/leap-dashboard-tui/internal/db"
	"github.com/j-veylop/leap-dashboard-tui/internal/logger"
	"github.com/j-veylop/leap-dashboard-tui/internal/models"
	"github.com/j-veylop/leap-dashboard-tui/internal/validation"
)

var (
	// ErrNotFound is returned when deleting a resource that does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrForbidden is returned when the acting admin may not manage resources.
	ErrForbidden = errors.New("not allowed to manage resources")
)

// Store is the persistence the library needs.
type Store interface {
	InsertResource(r *models.Resource) error
	GetResources() ([]models.Resource, error)
	DeleteResource(id string) error
	IsEmpty(table string) (bool, error)
}

// Filter narrows the library listing.
type Filter struct {
	Search string
	Type   models.ResourceType
}

// Match reports whether r passes the type and search criteria.
func (f Filter) Match(r *models.Resource) bool {
	if f.Type != "" && r.Type != f.Type {
		return false
	}
	return r.Matches(f.Search)
}

// Service lists and edits resources.
type Service struct {
	store Store
	now   func() time.Time
}

// New creates the service, seeding the default library into an empty store.
func New(store Store) (*Service, error) {
	s := &Service{store: store, now: time.Now}

	empty, err := store.IsEmpty("resources")
	if err != nil {
		return nil, err
	}
	if empty {
		defaults := models.DefaultResources()
		// inserted oldest first so the listing keeps fixture order
		for i := len(defaults) - 1; i >= 0; i-- {
			if err := store.InsertResource(&defaults[i]); err != nil {
				return nil, fmt.Errorf("failed to seed resources: %w", err)
			}
		}
	}

	return s, nil
}

// List returns resources matching f, most recently added first.
func (s *Service) List(f Filter) ([]models.Resource, error) {
	all, err := s.store.GetResources()
	if err != nil {
		return nil, err
	}

	out := make([]models.Resource, 0, len(all))
	for i := range all {
		if f.Match(&all[i]) {
			out = append(out, all[i])
		}
	}
	return out, nil
}

// ForWeek returns the resources assigned to week, in listing order.
func (s *Service) ForWeek(week int) ([]models.Resource, error) {
	all, err := s.store.GetResources()
	if err != nil {
		return nil, err
	}
	var out []models.Resource
	for _, r := range all {
		if r.AssignedWeek != nil && *r.AssignedWeek == week {
			out = append(out, r)
		}
	}
	return out, nil
}

// Add validates and stores a new resource for the acting admin.
func (s *Service) Add(admin models.Admin, r models.Resource) (models.Resource, error) {
	if !models.CanAccess(admin.Role, models.ViewResources) {
		return models.Resource{}, ErrForbidden
	}

	r.Title = strings.TrimSpace(r.Title)
	if r.Type == "" {
		r.Type = models.ResourceFile
	}
	if r.Type != models.ResourceLink && strings.TrimSpace(r.URL) == "" {
		r.URL = "#"
	}
	r.Tags = normalizeTags(r.Tags)
	if len(r.Tags) == 0 {
		r.Tags = []string{"new"}
	}
	if err := validation.Struct(r); err != nil {
		return models.Resource{}, err
	}

	r.ID = uuid.NewString()
	if r.UploadDate == "" {
		r.UploadDate = s.now().Format("2006-01-02")
	}

	if err := s.store.InsertResource(&r); err != nil {
		return models.Resource{}, err
	}
	logger.Info("resource added", "id", r.ID, "title", r.Title, "week", r.WeekLabel())
	return r, nil
}

// Delete removes a resource and returns it so callers can describe what went away.
func (s *Service) Delete(admin models.Admin, id string) (models.Resource, error) {
	if !models.CanAccess(admin.Role, models.ViewResources) {
		return models.Resource{}, ErrForbidden
	}

	all, err := s.store.GetResources()
	if err != nil {
		return models.Resource{}, err
	}
	var deleted models.Resource
	for _, r := range all {
		if r.ID == id {
			deleted = r
			break
		}
	}
	if deleted.ID == "" {
		return models.Resource{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if err := s.store.DeleteResource(id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return models.Resource{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return models.Resource{}, err
	}
	logger.Info("resource deleted", "id", id, "title", deleted.Title)
	return deleted, nil
}

// AddedDetails is the audit text for an added resource.
func AddedDetails(r models.Resource) string {
	return "Added new resource: " + r.Title
}

// DeletedDetails is the audit text for a deleted resource.
func DeletedDetails(r models.Resource) string {
	title := r.Title
	if title == "" {
		title = r.ID
	}
	return "Deleted resource: " + title
}

// ParseTags splits a comma separated tag list.
func ParseTags(s string) []string {
	return normalizeTags(strings.Split(s, ","))
}

func normalizeTags(tags []string) []string {
	var out []string
	for _, t := range tags {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			out = append(out, t)
		}
	}
	return out
}

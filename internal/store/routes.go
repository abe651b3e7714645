package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/railslens/rails-lens-mcp/internal/routes"
)

// Project represents a registered Rails workspace.
type Project struct {
	Name        string
	RefreshedAt string
	RootPath    string
}

// UpsertProject creates or updates a project record.
func (s *Store) UpsertProject(name, rootPath string) error {
	_, err := s.q.Exec(`
		INSERT INTO projects (name, refreshed_at, root_path) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET refreshed_at=excluded.refreshed_at, root_path=excluded.root_path`,
		name, Now(), rootPath)
	return err
}

// GetProject returns a project by name, or nil when unknown.
func (s *Store) GetProject(name string) (*Project, error) {
	var p Project
	err := s.q.QueryRow("SELECT name, refreshed_at, root_path FROM projects WHERE name=?", name).
		Scan(&p.Name, &p.RefreshedAt, &p.RootPath)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProjects returns all registered projects.
func (s *Store) ListProjects() ([]*Project, error) {
	rows, err := s.q.Query("SELECT name, refreshed_at, root_path FROM projects ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []*Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.Name, &p.RefreshedAt, &p.RootPath); err != nil {
			return nil, err
		}
		result = append(result, &p)
	}
	return result, rows.Err()
}

// DeleteProject deletes a project and its cached route sets (CASCADE).
func (s *Store) DeleteProject(name string) error {
	_, err := s.q.Exec("DELETE FROM projects WHERE name=?", name)
	return err
}

// CachedRoutes returns the cached routes for project+controller when the
// cache entry was built from a listing with the given hash and, if maxAge
// is non-zero, is younger than maxAge. ok=false means cache miss.
func (s *Store) CachedRoutes(project, controller, listingHash string, maxAge time.Duration) ([]routes.Route, bool) {
	var storedHash, fetchedAt string
	err := s.q.QueryRow(
		"SELECT listing_hash, fetched_at FROM route_sets WHERE project=? AND controller=?",
		project, controller).Scan(&storedHash, &fetchedAt)
	if err != nil || storedHash != listingHash {
		return nil, false
	}
	if maxAge > 0 {
		t, parseErr := time.Parse(time.RFC3339, fetchedAt)
		if parseErr != nil || time.Since(t) > maxAge {
			return nil, false
		}
	}

	// controller is the fetch key; route_controller is the route's own
	// controller#action target. A grep for "users#" also returns
	// "admin/users#..." lines, so the two can differ within one set.
	rows, err := s.q.Query(`
		SELECT verb, url, pattern, refined_pattern, route_controller, action
		FROM routes WHERE project=? AND controller=? ORDER BY position`,
		project, controller)
	if err != nil {
		return nil, false
	}
	defer rows.Close()

	var result []routes.Route
	for rows.Next() {
		var r routes.Route
		if err := rows.Scan(&r.Verb, &r.URL, &r.Pattern, &r.RefinedPattern, &r.Controller, &r.Action); err != nil {
			return nil, false
		}
		result = append(result, r)
	}
	if rows.Err() != nil {
		return nil, false
	}
	return result, true
}

// ReplaceRoutes atomically replaces the cached route set for
// project+controller with a freshly parsed one.
func (s *Store) ReplaceRoutes(project, controller, listingHash string, rts []routes.Route) error {
	return s.WithTransaction(func(tx *Store) error {
		if _, err := tx.q.Exec(
			"DELETE FROM routes WHERE project=? AND controller=?", project, controller); err != nil {
			return fmt.Errorf("clear routes: %w", err)
		}
		if _, err := tx.q.Exec(`
			INSERT INTO route_sets (project, controller, listing_hash, fetched_at) VALUES (?, ?, ?, ?)
			ON CONFLICT(project, controller) DO UPDATE SET listing_hash=excluded.listing_hash, fetched_at=excluded.fetched_at`,
			project, controller, listingHash, Now()); err != nil {
			return fmt.Errorf("upsert route set: %w", err)
		}
		for i, r := range rts {
			if _, err := tx.q.Exec(`
				INSERT INTO routes (project, controller, position, verb, url, pattern, refined_pattern, route_controller, action)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				project, controller, i, r.Verb, r.URL, r.Pattern, r.RefinedPattern, r.Controller, r.Action); err != nil {
				return fmt.Errorf("insert route: %w", err)
			}
		}
		return nil
	})
}

// DeleteRouteSet drops the cached routes for one controller.
func (s *Store) DeleteRouteSet(project, controller string) error {
	_, err := s.q.Exec("DELETE FROM route_sets WHERE project=? AND controller=?", project, controller)
	return err
}

// DeleteRouteSets drops all cached routes for a project.
func (s *Store) DeleteRouteSets(project string) error {
	_, err := s.q.Exec("DELETE FROM route_sets WHERE project=?", project)
	return err
}

// CountRoutes returns the number of cached routes for a project.
func (s *Store) CountRoutes(project string) (int, error) {
	var n int
	err := s.q.QueryRow("SELECT COUNT(*) FROM routes WHERE project=?", project).Scan(&n)
	return n, err
}

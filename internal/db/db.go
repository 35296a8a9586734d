// Package db is the durable home of users, roles, and issues. The whole
// database travels as one opaque blob keyed by a file path; sessions are
// deliberately excluded and live only in memory.
package db

import (
	"context"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ostiary-dev/ostiary/internal/auth"
	"github.com/ostiary-dev/ostiary/internal/issues"
	"github.com/ostiary-dev/ostiary/internal/rbac"
)

// Options parameterize bootstrap and password hashing.
type Options struct {
	AdminPassword string
	KDFIterations int
	KDFAlgorithm  string
}

// Database aggregates the persisted stores. A single Database instance owns
// its stores; everything else reads through them.
type Database struct {
	Users  *auth.UserStore
	Roles  *rbac.RoleStore
	Issues *issues.Store
}

// snapshot is the serialized form of a Database. Only exported fields
// travel; session state never appears here.
type snapshot struct {
	Users  []auth.User
	Roles  []rbac.Role
	Issues issues.Snapshot
}

// New creates an empty database with the bootstrap admin user and role.
// The admin role carries the universal permission, which is also registered.
func New(registry *rbac.Registry, opts Options) (*Database, error) {
	d := &Database{
		Users:  auth.NewUserStore(),
		Roles:  rbac.NewRoleStore(),
		Issues: issues.NewStore(),
	}
	if err := d.ensureBootstrap(registry, opts); err != nil {
		return nil, err
	}
	return d, nil
}

// Load reads a database blob from path. A missing file is reported as a
// wrapped os.ErrNotExist so callers can distinguish "no database yet" from
// corruption.
func Load(path string, registry *rbac.Registry, opts Options) (*Database, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("db: open %s: %w", path, err)
	}
	defer f.Close()

	var snap snapshot
	if err := gob.NewDecoder(f).Decode(&snap); err != nil {
		return nil, fmt.Errorf("db: decode %s: %w", path, err)
	}

	d := &Database{
		Users:  auth.NewUserStore(),
		Roles:  rbac.NewRoleStore(),
		Issues: issues.NewStore(),
	}
	d.Users.Restore(snap.Users)
	d.Roles.Restore(snap.Roles)
	d.Issues.Restore(snap.Issues)

	// Snapshots written by older deployments may predate a table; the
	// bootstrap entities are re-created rather than treated as corruption.
	if err := d.ensureBootstrap(registry, opts); err != nil {
		return nil, err
	}
	return d, nil
}

// LoadOrCreate loads the database at path, creating a fresh one when the
// file does not exist yet. An empty path always creates a fresh in-memory
// database.
func LoadOrCreate(path string, registry *rbac.Registry, opts Options) (*Database, error) {
	if path == "" {
		return New(registry, opts)
	}
	d, err := Load(path, registry, opts)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return New(registry, opts)
		}
		return nil, err
	}
	return d, nil
}

// Save writes the database blob to path via a temp file and rename, then
// mirrors a JSON rendering next to it for inspection. The JSON sidecar is
// advisory only; the blob is authoritative.
func (d *Database) Save(path string) error {
	snap := d.snapshot()

	tmp := path + ".new"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("db: create %s: %w", tmp, err)
	}
	if err := gob.NewEncoder(f).Encode(snap); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("db: encode: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("db: close %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("db: rename %s: %w", tmp, err)
	}

	if err := d.saveJSONSidecar(path, snap); err != nil {
		return err
	}
	return nil
}

// RunAutosave saves the database every interval until ctx is cancelled.
func (d *Database) RunAutosave(ctx context.Context, path string, interval time.Duration, logger *slog.Logger) {
	if path == "" || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := d.Save(path); err != nil {
				logger.Error("periodic database save failed", slog.Any("error", err))
			}
		}
	}
}

// Summary returns a human-readable JSON rendering, used by --show-db.
func (d *Database) Summary() (string, error) {
	data, err := json.MarshalIndent(d.snapshot(), "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (d *Database) snapshot() snapshot {
	return snapshot{
		Users:  d.Users.List(),
		Roles:  d.Roles.List(),
		Issues: d.Issues.Snapshot(),
	}
}

func (d *Database) saveJSONSidecar(path string, snap snapshot) error {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	jsonPath := filepath.Join(filepath.Dir(path), base+".json")
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("db: marshal sidecar: %w", err)
	}
	tmp := jsonPath + ".new"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("db: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, jsonPath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("db: rename %s: %w", tmp, err)
	}
	return nil
}

func (d *Database) ensureBootstrap(registry *rbac.Registry, opts Options) error {
	registry.Add(rbac.PermissionAll)
	if _, ok := d.Roles.Get(auth.AdminUsername); !ok {
		d.Roles.Set(rbac.NewRole(auth.AdminUsername, []string{rbac.PermissionAll}, nil))
	}
	if _, ok := d.Users.Get(auth.AdminUsername); !ok {
		password := opts.AdminPassword
		if password == "" {
			password = "topsecret"
		}
		admin, err := auth.NewUser(auth.AdminUsername, password, opts.KDFIterations, opts.KDFAlgorithm)
		if err != nil {
			return fmt.Errorf("db: bootstrap admin: %w", err)
		}
		admin.Roles.Add(auth.AdminUsername)
		d.Users.Set(admin)
	}
	return nil
}

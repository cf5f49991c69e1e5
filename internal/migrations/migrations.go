package migrations

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
)

type migration struct {
	Name string
	Path string
}

// Apply runs every .sql file in dir that is not yet recorded in
// schema_migrations, in V<number>__ order.
func Apply(db *sqlx.DB, dir string) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS schema_migrations (
  name TEXT PRIMARY KEY,
  applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	migs, err := listMigrations(dir)
	if err != nil {
		return err
	}
	applied := map[string]bool{}
	names := []string{}
	if err := db.Select(&names, `SELECT name FROM schema_migrations`); err != nil {
		return err
	}
	for _, name := range names {
		applied[name] = true
	}

	for _, mig := range migs {
		if applied[mig.Name] {
			continue
		}
		content, err := os.ReadFile(mig.Path)
		if err != nil {
			return err
		}
		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("apply %s: %w", mig.Name, err)
		}
		if _, err := db.Exec(`INSERT INTO schema_migrations (name) VALUES ($1)`, mig.Name); err != nil {
			return err
		}
	}
	return nil
}

func listMigrations(dir string) ([]migration, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	migs := make([]migration, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		migs = append(migs, migration{Name: entry.Name(), Path: filepath.Join(dir, entry.Name())})
	}
	sort.Slice(migs, func(i, j int) bool {
		iVersion, iOk := versionOf(migs[i].Name)
		jVersion, jOk := versionOf(migs[j].Name)
		switch {
		case iOk && jOk && iVersion != jVersion:
			return iVersion < jVersion
		case iOk != jOk:
			return iOk
		default:
			return migs[i].Name < migs[j].Name
		}
	})
	return migs, nil
}

// versionOf parses the numeric prefix of a V<number>__description.sql name.
func versionOf(name string) (int, bool) {
	if !strings.HasPrefix(name, "V") {
		return 0, false
	}
	parts := strings.SplitN(name[1:], "__", 2)
	value, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}
	return value, true
}

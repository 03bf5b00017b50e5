// Package migrations embeds the PostgreSQL schema.
//
// Files are named NNNNNN_name.{up,down}.sql. Up scripts are idempotent so
// they can be replayed on every startup.
package migrations

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed *.sql
var files embed.FS

// Direction selects up or down scripts.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// Script is a single migration file.
type Script struct {
	Name string
	SQL  string
}

// Load returns the scripts for dir in execution order: ascending for up,
// descending for down.
func Load(dir Direction) ([]Script, error) {
	if dir != Up && dir != Down {
		return nil, fmt.Errorf("unknown migration direction %q", dir)
	}

	suffix := "." + string(dir) + ".sql"
	entries, err := fs.Glob(files, "*"+suffix)
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}

	sort.Strings(entries)
	if dir == Down {
		sort.Sort(sort.Reverse(sort.StringSlice(entries)))
	}

	scripts := make([]Script, 0, len(entries))
	for _, name := range entries {
		body, err := files.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		scripts = append(scripts, Script{
			Name: strings.TrimSuffix(name, suffix),
			SQL:  string(body),
		})
	}

	return scripts, nil
}

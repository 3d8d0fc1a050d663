// Package db carries the SQL schema of the postgres store.
package db

import (
	"embed"
	"io/fs"
	"sort"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migration is one schema script, applied in Name order.
type Migration struct {
	Name   string
	Script string
}

// Migrations returns every embedded script sorted by file name.
func Migrations() ([]Migration, error) {
	names, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	out := make([]Migration, 0, len(names))
	for _, n := range names {
		b, err := migrations.ReadFile(n)
		if err != nil {
			return nil, err
		}
		out = append(out, Migration{Name: n, Script: string(b)})
	}
	return out, nil
}

package chart

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/tinoosan/bookkeeper/internal/errs"
	"github.com/tinoosan/bookkeeper/internal/ledger"
	"github.com/tinoosan/bookkeeper/internal/slug"
	"gopkg.in/yaml.v3"
)

type fileAccount struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Description string `yaml:"description"`
}

type file struct {
	Accounts []fileAccount `yaml:"accounts"`
}

// Load reads a YAML chart of accounts. Accounts keep file order.
// A missing id is derived from the name; every problem found is reported together.
func Load(r io.Reader) ([]ledger.Account, error) {
	var f file
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: decode chart: %v", errs.ErrInvalid, err)
	}
	if len(f.Accounts) == 0 {
		return nil, fmt.Errorf("%w: chart has no accounts", errs.ErrInvalid)
	}

	var result *multierror.Error
	seen := make(map[string]int, len(f.Accounts))
	out := make([]ledger.Account, 0, len(f.Accounts))
	for i, fa := range f.Accounts {
		name := strings.TrimSpace(fa.Name)
		id := strings.TrimSpace(fa.ID)
		if id == "" {
			id = slug.Slugify(name)
		}
		typ := ledger.AccountType(strings.ToLower(strings.TrimSpace(fa.Type)))
		switch {
		case name == "":
			result = multierror.Append(result, fmt.Errorf("account %d: name is required", i+1))
			continue
		case !slug.IsSlug(id):
			result = multierror.Append(result, fmt.Errorf("account %d: invalid id %q", i+1, id))
			continue
		case !typ.Valid():
			result = multierror.Append(result, fmt.Errorf("account %d: unknown type %q", i+1, fa.Type))
			continue
		}
		if prev, dup := seen[id]; dup {
			result = multierror.Append(result, fmt.Errorf("account %d: id %q already used by account %d", i+1, id, prev))
			continue
		}
		seen[id] = i + 1
		out = append(out, ledger.Account{ID: id, Name: name, Type: typ, Description: strings.TrimSpace(fa.Description)})
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalid, err)
	}
	return out, nil
}

// LoadFile loads a chart from path; an empty path yields the seed chart.
func LoadFile(path string) ([]ledger.Account, error) {
	if path == "" {
		return Seed(), nil
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return Load(fh)
}

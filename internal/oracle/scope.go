package oracle

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/viant/afs"
)

// Scope is the project module that includes the code generated from a
// grammar. Synthetic modules are resolved as if they were written there.
type Scope struct {
	CrateRoot  string
	CrateName  string
	ModulePath []string
}

func (s Scope) String() string {
	return strings.Join(append([]string{"crate"}, s.ModulePath...), "::")
}

// ScopeFor returns the module generated from the grammar at path: the
// path below the crate's src directory without extension. Grammars
// outside src belong to no module.
func ScopeFor(crateRoot, path string) (*Scope, bool) {
	if crateRoot == "" {
		return nil, false
	}
	rel, err := filepath.Rel(filepath.Join(crateRoot, "src"), path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return nil, false
	}
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	scope := &Scope{
		CrateRoot: crateRoot,
		CrateName: crateName(crateRoot),
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if part != "" && part != "mod" {
			scope.ModulePath = append(scope.ModulePath, part)
		}
	}
	return scope, true
}

// FindCrateRoot returns the closest directory above path holding a
// Cargo.toml, or "" when there is none.
func FindCrateRoot(ctx context.Context, path string) (string, error) {
	fs := afs.New()
	dir := filepath.Dir(path)
	for {
		ok, err := fs.Exists(ctx, filepath.Join(dir, "Cargo.toml"))
		if err != nil {
			return "", err
		}
		if ok {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func crateName(root string) string {
	return strings.ReplaceAll(filepath.Base(root), "-", "_")
}

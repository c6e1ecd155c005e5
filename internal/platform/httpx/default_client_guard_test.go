// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package httpx

import (
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// outboundRules lists net/http selectors production code must not use, with
// the replacement to reach for instead.
var outboundRules = map[string]string{
	"DefaultClient": "httpx.NewClient",
	"Get":           "httpx.NewClient",
	"Head":          "httpx.NewClient",
	"Post":          "httpx.NewClient",
	"PostForm":      "httpx.NewClient",
	"NewRequest":    "http.NewRequestWithContext",
}

func TestOutboundHTTPUsesHardenedClient(t *testing.T) {
	root := filepath.Clean(filepath.Join("..", "..", ".."))
	var violations []string
	for _, dir := range []string{"internal", "cmd"} {
		violations = append(violations, scanOutbound(t, filepath.Join(root, dir))...)
	}
	if len(violations) > 0 {
		sort.Strings(violations)
		t.Fatalf("outbound HTTP must go through the hardened client:\n%s", strings.Join(violations, "\n"))
	}
}

func scanOutbound(t *testing.T, root string) []string {
	t.Helper()
	fset := token.NewFileSet()
	var out []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "vendor" || strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" || strings.HasSuffix(path, "_test.go") {
			return nil
		}

		file, err := parser.ParseFile(fset, path, nil, 0)
		if err != nil {
			return err
		}
		ast.Inspect(file, func(n ast.Node) bool {
			sel, ok := n.(*ast.SelectorExpr)
			if !ok {
				return true
			}
			if pkg, ok := sel.X.(*ast.Ident); ok && pkg.Name == "http" {
				if use, bad := outboundRules[sel.Sel.Name]; bad {
					out = append(out, fset.Position(sel.Pos()).String()+": http."+sel.Sel.Name+" (use "+use+")")
				}
			}
			return true
		})
		return nil
	})
	if err != nil {
		t.Fatalf("scan %s: %v", root, err)
	}
	return out
}

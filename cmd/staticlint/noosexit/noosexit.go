// Package noosexit reports calls that terminate the process from main.main:
// os.Exit and the log.Fatal family. They skip deferred calls, so the
// service would exit without closing its storage or flushing the logger.
package noosexit

import (
	"go/ast"
	"go/types"
	"path/filepath"
	"strings"

	"golang.org/x/tools/go/analysis"
)

var Analyzer = &analysis.Analyzer{
	Name: "noosexit",
	Doc:  "prohibits os.Exit and log.Fatal* in main.main",
	Run:  run,
}

// forbidden maps package paths to the functions that must not be called.
var forbidden = map[string]map[string]bool{
	"os":  {"Exit": true},
	"log": {"Fatal": true, "Fatalf": true, "Fatalln": true},
}

func run(pass *analysis.Pass) (interface{}, error) {
	if pass.Pkg.Name() != "main" {
		return nil, nil
	}

	for _, file := range pass.Files {
		// Skip files generated into the go-build cache, such as test mains.
		if isGoBuildCacheFile(pass.Fset.File(file.Pos()).Name()) {
			continue
		}

		for _, decl := range file.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if !ok || fn.Name.Name != "main" || fn.Recv != nil || fn.Body == nil {
				continue
			}

			ast.Inspect(fn.Body, func(n ast.Node) bool {
				// Deferred or spawned closures run outside main's own flow.
				if _, ok := n.(*ast.FuncLit); ok {
					return false
				}

				call, ok := n.(*ast.CallExpr)
				if !ok {
					return true
				}

				sel, ok := call.Fun.(*ast.SelectorExpr)
				if !ok {
					return true
				}

				// Resolve through the type info so aliased imports are caught too.
				fnObj, ok := pass.TypesInfo.Uses[sel.Sel].(*types.Func)
				if !ok || fnObj.Pkg() == nil {
					return true
				}
				if forbidden[fnObj.Pkg().Path()][fnObj.Name()] {
					pass.Reportf(call.Pos(), "avoid using %s.%s in main.main", fnObj.Pkg().Name(), fnObj.Name())
				}

				return true
			})
		}
	}

	return nil, nil
}

func isGoBuildCacheFile(path string) bool {
	path = filepath.ToSlash(path)
	return strings.Contains(path, "/go-build/")
}

// Command staticlint bundles the analyzers the shoplist code base is checked
// with into a single multichecker binary: a set of go vet passes, ineffassign,
// nilerr, the project's noosexit analyzer and a configurable selection of
// staticcheck and stylecheck analyzers.
//
// The selection is read from config.json next to the binary. Without that
// file the copy embedded at build time is used.
package main

import (
	// Standard analyzers from the Go toolchain.
	"golang.org/x/tools/go/analysis/passes/copylock"
	"golang.org/x/tools/go/analysis/passes/errorsas"
	"golang.org/x/tools/go/analysis/passes/httpresponse"
	"golang.org/x/tools/go/analysis/passes/loopclosure"
	"golang.org/x/tools/go/analysis/passes/lostcancel"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/structtag"
	"golang.org/x/tools/go/analysis/passes/unmarshal"
	"golang.org/x/tools/go/analysis/passes/unreachable"

	// Third-party analyzers.
	"github.com/gordonklaus/ineffassign/pkg/ineffassign"
	"github.com/gostaticanalysis/nilerr"

	// Custom analyzer.
	"github.com/patric-chuzhbe/shoplist/cmd/staticlint/noosexit"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/multichecker"
	"honnef.co/go/tools/analysis/lint"
	"honnef.co/go/tools/staticcheck"
	"honnef.co/go/tools/stylecheck"

	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Config is the name of the JSON configuration file that lists enabled analyzers.
const Config = `config.json`

//go:embed config.json
var defaultConfig []byte

// ConfigData describes the structure of the configuration file,
// e.g. {"Staticcheck": ["SA1000"], "Stylecheck": ["ST1005"]}.
type ConfigData struct {
	Staticcheck []string
	Stylecheck  []string
}

func loadConfig() (ConfigData, error) {
	var cfg ConfigData

	data := defaultConfig
	appfile, err := os.Executable()
	if err == nil {
		fromFile, err := os.ReadFile(filepath.Join(filepath.Dir(appfile), Config))
		switch {
		case err == nil:
			data = fromFile
		case !errors.Is(err, os.ErrNotExist):
			return cfg, fmt.Errorf("in cmd/staticlint/main.go/loadConfig(): error while `os.ReadFile()` calling: %w", err)
		}
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("in cmd/staticlint/main.go/loadConfig(): error while `json.Unmarshal()` calling: %w", err)
	}

	return cfg, nil
}

// selectAnalyzers returns the analyzers of set whose names are enabled.
func selectAnalyzers(set []*lint.Analyzer, enabled []string) []*analysis.Analyzer {
	names := make(map[string]bool, len(enabled))
	for _, name := range enabled {
		names[name] = true
	}

	var result []*analysis.Analyzer
	for _, v := range set {
		if names[v.Analyzer.Name] {
			result = append(result, v.Analyzer)
		}
	}

	return result
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		panic(err)
	}

	// Analyzers that are always run.
	myChecks := []*analysis.Analyzer{
		copylock.Analyzer,     // Checks for copying of locks by value.
		errorsas.Analyzer,     // Checks the second argument of errors.As.
		httpresponse.Analyzer, // Finds response bodies used before the error check.
		loopclosure.Analyzer,  // Detects references to loop variables inside closures.
		lostcancel.Analyzer,   // Finds contexts that are not canceled.
		printf.Analyzer,       // Verifies format strings.
		structtag.Analyzer,    // Checks for incorrect struct field tags.
		unmarshal.Analyzer,    // Detects non-pointer unmarshal targets.
		unreachable.Analyzer,  // Detects unreachable code.

		ineffassign.Analyzer, // Detects ineffective assignments.
		nilerr.Analyzer,      // Flags returning nil after an error was created.

		noosexit.Analyzer, // Forbids os.Exit and log.Fatal* in main.main.
	}

	myChecks = append(myChecks, selectAnalyzers(staticcheck.Analyzers, cfg.Staticcheck)...)
	myChecks = append(myChecks, selectAnalyzers(stylecheck.Analyzers, cfg.Stylecheck)...)

	multichecker.Main(myChecks...)
}

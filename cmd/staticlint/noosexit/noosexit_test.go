package noosexit

import (
	"testing"

	"golang.org/x/tools/go/analysis/analysistest"
)

// Package a is a main package with findings; package b is a library
// with its own main function and must stay silent.
func TestAnalyzer(t *testing.T) {
	analysistest.Run(t, analysistest.TestData(), Analyzer, "a", "b")
}

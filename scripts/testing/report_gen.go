// Copyright 2026 The OpenTrusty Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command report_gen merges "go test -json" output with the TestPurpose
// annotations found in _test.go files and writes JSON and Markdown reports.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"golang.org/x/mod/modfile"
)

// TestMetadata holds info parsed from Go source comments
type TestMetadata struct {
	Name       string `json:"name"`
	Purpose    string `json:"purpose,omitempty"`
	Scope      string `json:"scope,omitempty"`
	Security   string `json:"security,omitempty"`
	Expected   string `json:"expected,omitempty"`
	TestCaseID string `json:"test_case_id,omitempty"`
	Package    string `json:"package"`
	Category   string `json:"category"`
	Type       string `json:"type"` // UT, E2E, IT
}

// GoTestEvent represents a single event from 'go test -json'
type GoTestEvent struct {
	Time    time.Time `json:"Time"`
	Action  string    `json:"Action"`
	Package string    `json:"Package"`
	Test    string    `json:"Test"`
	Elapsed float64   `json:"Elapsed"`
	Output  string    `json:"Output"`
}

// Result is the merged outcome of a single test
type Result struct {
	Name        string       `json:"name"`
	Status      string       `json:"status"`
	Elapsed     float64      `json:"elapsed_seconds"`
	Package     string       `json:"package"`
	Failure     string       `json:"failure_reason,omitempty"`
	Annotations TestMetadata `json:"annotations"`
}

// Summary holds top-level stats
type Summary struct {
	GeneratedAt time.Time `json:"generated_at"`
	Total       int       `json:"total"`
	Passed      int       `json:"passed"`
	Failed      int       `json:"failed"`
	Skipped     int       `json:"skipped"`
	Results     []Result  `json:"results"`
}

// categories maps package path fragments to report sections, in report order.
var categories = []struct {
	fragment string
	name     string
}{
	{"internal/rbac", "Matrix"},
	{"internal/authz", "Evaluator"},
	{"internal/session", "Session"},
	{"internal/audit", "Audit"},
	{"internal/store", "Store"},
	{"internal/transport/http", "API"},
	{"internal/config", "Config"},
	{"internal/observability", "Observability"},
	{"tests/e2e", "E2E"},
}

func main() {
	inputPath := flag.String("input", "", "Path to go test -json output file")
	outputJSON := flag.String("out-json", "", "Path for output JSON report")
	outputMD := flag.String("out-md", "", "Path for output Markdown report")
	title := flag.String("title", "Test Report", "Report title")
	onlyType := flag.String("filter-type", "", "Keep only this test type (UT, IT, E2E)")
	flag.Parse()

	if *inputPath == "" || *outputJSON == "" || *outputMD == "" {
		fmt.Println("Usage: report_gen -input <json_file> -out-json <out_json> -out-md <out_md>")
		os.Exit(1)
	}

	module, err := modulePath("go.mod")
	if err != nil {
		fmt.Printf("Failed to read go.mod: %v\n", err)
		os.Exit(1)
	}

	meta := scanMetadata(module)
	results, err := parseTestOutput(*inputPath, module, meta)
	if err != nil {
		fmt.Printf("Failed to read test output: %v\n", err)
		os.Exit(1)
	}

	if *onlyType != "" {
		results = slices.DeleteFunc(results, func(r Result) bool {
			return !strings.EqualFold(r.Annotations.Type, *onlyType)
		})
	}

	summary := summarize(results)
	if err := writeFile(*outputJSON, mustJSON(summary)); err != nil {
		fmt.Printf("Failed to write JSON report: %v\n", err)
		os.Exit(1)
	}
	if err := writeFile(*outputMD, []byte(renderMarkdown(summary, *title))); err != nil {
		fmt.Printf("Failed to write Markdown report: %v\n", err)
		os.Exit(1)
	}

	// Non-zero exit keeps CI gates honest.
	if summary.Failed > 0 {
		fmt.Printf("\n%d tests failed.\n", summary.Failed)
		os.Exit(1)
	}
}

func modulePath(gomod string) (string, error) {
	data, err := os.ReadFile(gomod)
	if err != nil {
		return "", err
	}
	return modfile.ModulePath(data), nil
}

func scanMetadata(module string) map[string]TestMetadata {
	metadata := make(map[string]TestMetadata)
	fset := token.NewFileSet()

	_ = filepath.WalkDir(".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() && (strings.HasPrefix(d.Name(), "_") || d.Name() == "vendor" || d.Name() == ".git") {
			return filepath.SkipDir
		}
		if d.IsDir() || !strings.HasSuffix(path, "_test.go") {
			return nil
		}

		node, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
		if err != nil {
			return nil
		}

		pkg := module
		if dir := filepath.ToSlash(filepath.Dir(path)); dir != "." {
			pkg = module + "/" + dir
		}

		for _, decl := range node.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if !ok || !strings.HasPrefix(fn.Name.Name, "Test") {
				continue
			}
			m := TestMetadata{
				Name:     fn.Name.Name,
				Package:  pkg,
				Type:     testType(pkg, node),
				Category: category(pkg),
			}
			if fn.Doc != nil {
				annotate(&m, fn.Doc)
			}
			metadata[pkg+"."+fn.Name.Name] = m
		}
		return nil
	})

	return metadata
}

func annotate(m *TestMetadata, doc *ast.CommentGroup) {
	fields := map[string]*string{
		"TestPurpose:":  &m.Purpose,
		"Scope:":        &m.Scope,
		"Security:":     &m.Security,
		"Expected:":     &m.Expected,
		"Test Case ID:": &m.TestCaseID,
	}
	for _, line := range doc.List {
		text := strings.TrimSpace(strings.TrimPrefix(line.Text, "//"))
		for prefix, dst := range fields {
			if rest, ok := strings.CutPrefix(text, prefix); ok {
				*dst = strings.TrimSpace(rest)
			}
		}
	}
}

func testType(pkg string, file *ast.File) string {
	if strings.Contains(pkg, "/tests/e2e") {
		return "E2E"
	}
	for _, cg := range file.Comments {
		for _, c := range cg.List {
			if strings.HasPrefix(c.Text, "//go:build integration") {
				return "IT"
			}
		}
	}
	return "UT"
}

func category(pkg string) string {
	for _, c := range categories {
		if strings.Contains(pkg, c.fragment) {
			return c.name
		}
	}
	return "Other"
}

func parseTestOutput(path, module string, meta map[string]TestMetadata) ([]Result, error) {
	// Every annotated test appears in the report, run or not.
	states := make(map[string]*Result, len(meta))
	for key, m := range meta {
		states[key] = &Result{Name: m.Name, Package: m.Package, Status: "not run", Annotations: m}
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		var event GoTestEvent
		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil || event.Test == "" {
			continue
		}

		key := event.Package + "." + event.Test
		res, ok := states[key]
		if !ok {
			res = newResult(event, meta)
			states[key] = res
		}

		switch event.Action {
		case "pass", "fail":
			res.Status = event.Action
			res.Elapsed = event.Elapsed
		case "skip":
			res.Status = "skip"
		case "output":
			res.Failure += event.Output
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	list := make([]Result, 0, len(states))
	for _, r := range states {
		if r.Status != "fail" {
			r.Failure = ""
		}
		list = append(list, *r)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Package != list[j].Package {
			return list[i].Package < list[j].Package
		}
		return list[i].Name < list[j].Name
	})
	return list, nil
}

// newResult covers subtests and unannotated tests; subtests inherit the
// parent's annotations.
func newResult(event GoTestEvent, meta map[string]TestMetadata) *Result {
	m := TestMetadata{
		Name:     event.Test,
		Package:  event.Package,
		Type:     "UT",
		Category: category(event.Package),
	}
	if parent, _, found := strings.Cut(event.Test, "/"); found {
		if pm, ok := meta[event.Package+"."+parent]; ok {
			m = pm
			m.Name = event.Test
			if pm.Purpose != "" {
				m.Purpose = pm.Purpose + " (" + event.Test + ")"
			}
		}
	}
	return &Result{Name: event.Test, Package: event.Package, Annotations: m}
}

func summarize(results []Result) Summary {
	s := Summary{GeneratedAt: time.Now(), Results: results}
	for _, r := range results {
		s.Total++
		switch r.Status {
		case "pass":
			s.Passed++
		case "fail":
			s.Failed++
		case "skip":
			s.Skipped++
		}
	}
	return s
}

func renderMarkdown(s Summary, title string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# PayrollGate %s\n\n", title)
	fmt.Fprintf(&sb, "**Generated:** %s  \n", s.GeneratedAt.Format("2006-01-02 15:04:05 MST"))

	status := "PASSED"
	if s.Failed > 0 {
		status = "FAILED"
	}
	fmt.Fprintf(&sb, "**Status:** %s\n\n", status)

	rate := 0.0
	if s.Total > 0 {
		rate = float64(s.Passed) / float64(s.Total) * 100
	}
	sb.WriteString("| Total | Passed | Failed | Skipped | Pass Rate |\n")
	sb.WriteString("|-------|--------|--------|---------|-----------|\n")
	fmt.Fprintf(&sb, "| %d | %d | %d | %d | %.1f%% |\n\n", s.Total, s.Passed, s.Failed, s.Skipped, rate)

	grouped := make(map[string][]Result)
	for _, r := range s.Results {
		grouped[r.Annotations.Category] = append(grouped[r.Annotations.Category], r)
	}

	order := make([]string, 0, len(categories)+1)
	for _, c := range categories {
		order = append(order, c.name)
	}
	order = append(order, "Other")

	for _, cat := range order {
		tests := grouped[cat]
		if len(tests) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "## %s\n\n", cat)
		sb.WriteString("| ID | Test | Type | Status | Purpose | Security |\n")
		sb.WriteString("|----|------|------|--------|---------|----------|\n")
		for _, t := range tests {
			security := t.Annotations.Security
			if security != "" {
				security = "**" + security + "**"
			}
			fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s | %s |\n",
				t.Annotations.TestCaseID, t.Name, t.Annotations.Type, t.Status, t.Annotations.Purpose, security)
		}
		sb.WriteString("\n")
	}

	if s.Failed > 0 {
		sb.WriteString("## Failures\n\n")
		for _, t := range s.Results {
			if t.Status == "fail" {
				fmt.Fprintf(&sb, "### %s (%s)\n\n```\n%s\n```\n\n", t.Name, t.Package, t.Failure)
			}
		}
	}

	return sb.String()
}

func mustJSON(v any) []byte {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		panic(err)
	}
	return data
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

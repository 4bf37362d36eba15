// Command validate runs validation profiles over submission files without a
// broker. Each file is decoded, routed to a profile and validated exactly as
// the service would, then reported as PASS or FAIL with its diagnostics.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -definitions definitions \
//	  -profile kopernikus \
//	  -out build/normalized \
//	  data/mock/*.json
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/iiasa/ariadne-intern-workflow/internal/codelist"
	"github.com/iiasa/ariadne-intern-workflow/internal/diagnostics"
	"github.com/iiasa/ariadne-intern-workflow/internal/domain"
	"github.com/iiasa/ariadne-intern-workflow/internal/profile"
)

type options struct {
	definitions    string
	profile        string
	defaultProfile string
	profilesFile   string
	outDir         string
}

// result tracks the outcome of one submission file.
type result struct {
	file    string
	profile string
	status  domain.Status
	err     error
	events  []diagnostics.Event
}

func (r *result) passed() bool { return r.err == nil && r.status == domain.StatusAccepted }

func main() {
	var opts options
	flag.StringVar(&opts.definitions, "definitions", "definitions", "directory holding the codelist definitions")
	flag.StringVar(&opts.profile, "profile", "", "profile to apply; overrides the profile named in each file")
	flag.StringVar(&opts.defaultProfile, "default-profile", profile.AriadneIntern, "profile for files that name none")
	flag.StringVar(&opts.profilesFile, "profiles-file", "", "optional YAML file with custom profiles")
	flag.StringVar(&opts.outDir, "out", "", "directory for the normalized form of accepted submissions")
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(opts, flag.Args(), os.Stdout); code != 0 {
		os.Exit(code)
	}
}

func run(opts options, files []string, w io.Writer) int {
	registry, err := loadRegistry(opts)
	if err != nil {
		fmt.Fprintf(w, "FATAL: %v\n", err)
		return 2
	}
	if opts.outDir != "" {
		if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
			fmt.Fprintf(w, "FATAL: create output directory: %v\n", err)
			return 2
		}
	}

	fmt.Fprintln(w, "=== Scenario Submission Validation ===")
	fmt.Fprintf(w, "Profiles: %s (default %s)\n\n", strings.Join(registry.Names(), ", "), registry.Default())

	results := make([]*result, 0, len(files))
	for _, path := range files {
		results = append(results, validateFile(registry, opts, path))
	}

	allPassed := true
	for _, r := range results {
		status := "\033[32mPASS\033[0m"
		if !r.passed() {
			status = "\033[31mFAIL\033[0m"
			allPassed = false
		}
		fmt.Fprintf(w, "  %-42s %-16s %s\n", filepath.Base(r.file), r.profile, status)
	}

	for _, r := range results {
		if r.err == nil && len(r.events) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", filepath.Base(r.file))
		if r.err != nil {
			fmt.Fprintf(w, "  error: %s\n", indent(r.err.Error()))
		}
		for i, ev := range r.events {
			fmt.Fprintf(w, "  [%d] %-7s %-10s %s\n", i+1, ev.Severity, ev.Dimension, ev.Detail)
			if ev.Resolution != "" {
				fmt.Fprintf(w, "      -> %s\n", ev.Resolution)
			}
		}
	}

	if allPassed {
		fmt.Fprintf(w, "\nAll %d submissions passed.\n", len(results))
		return 0
	}
	fmt.Fprintln(w, "\nValidation FAILED.")
	return 1
}

func loadRegistry(opts options) (*profile.Registry, error) {
	set, err := codelist.LoadAvailable(opts.definitions)
	if err != nil {
		return nil, err
	}
	var custom []profile.Spec
	if opts.profilesFile != "" {
		f, err := profile.ReadFile(opts.profilesFile)
		if err != nil {
			return nil, err
		}
		custom = f.Profiles
	}
	return profile.NewRegistry(set, opts.defaultProfile, custom...)
}

func validateFile(registry *profile.Registry, opts options, path string) *result {
	r := &result{file: path, profile: "-", status: domain.StatusRejected}

	data, err := os.ReadFile(path)
	if err != nil {
		r.err = err
		return r
	}
	sub, requested, err := domain.DecodeSubmission(data)
	if err != nil {
		r.err = err
		return r
	}

	name := opts.profile
	if name == "" {
		name = requested
	}
	p, err := registry.Resolve(name)
	if err != nil {
		r.err = err
		return r
	}
	r.profile = p.Name

	rec := &diagnostics.Recorder{}
	r.status, r.err = p.Run(sub, rec)
	r.events = rec.Events()

	if r.passed() && opts.outDir != "" {
		r.err = writeNormalized(opts.outDir, path, sub)
	}
	return r
}

func writeNormalized(dir, path string, sub *domain.Submission) error {
	data, err := domain.EncodeSubmission(sub)
	if err != nil {
		return err
	}
	out := filepath.Join(dir, filepath.Base(path))
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write normalized submission: %w", err)
	}
	return nil
}

func indent(s string) string {
	return strings.ReplaceAll(s, "\n", "\n    ")
}

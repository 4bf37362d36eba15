// Command genmock builds synthetic scenario submissions from the codelist
// definitions and runs them through a validation profile, writing both the
// submission and its validation report as fixtures. The generated identifiers
// are always valid, so the output doubles as a smoke test for a profile.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -definitions definitions \
//	  -profile openentrance \
//	  -mode datetime -hours 24 \
//	  -out data/mock/generated_submission.json \
//	  -report-out data/mock/generated_report.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/iiasa/ariadne-intern-workflow/internal/codelist"
	"github.com/iiasa/ariadne-intern-workflow/internal/diagnostics"
	"github.com/iiasa/ariadne-intern-workflow/internal/domain"
	"github.com/iiasa/ariadne-intern-workflow/internal/profile"
	"github.com/iiasa/ariadne-intern-workflow/internal/validation"
)

// cet is the offset used for generated timestamps.
var cet = time.FixedZone("CET", 3600)

type genOptions struct {
	definitions string
	profile     string
	mode        string
	model       string
	year        int
	hours       int
	regions     int
	variables   int
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	var opts genOptions
	fs := flag.NewFlagSet("genmock", flag.ContinueOnError)
	fs.StringVar(&opts.definitions, "definitions", "definitions", "directory holding the codelist definitions")
	fs.StringVar(&opts.profile, "profile", profile.AriadneIntern, "profile the submission targets")
	fs.StringVar(&opts.mode, "mode", "year", "temporal mode: year, datetime or subannual")
	fs.StringVar(&opts.model, "model", "MOCK-MODEL 1.0", "model name written to every row")
	fs.IntVar(&opts.year, "year", 2030, "first year of the time axis")
	fs.IntVar(&opts.hours, "hours", 24, "hourly timestamps per series in datetime mode")
	fs.IntVar(&opts.regions, "regions", 3, "number of regions to sample")
	fs.IntVar(&opts.variables, "variables", 3, "number of variables to sample")
	out := fs.String("out", "", "output path for the submission fixture")
	reportOut := fs.String("report-out", "", "optional output path for the validation report")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *out == "" {
		fs.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	// Set a fixed clock for reproducible ProcessedAt timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(opts.year-5, time.January, 1, 6, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	set, err := codelist.LoadAvailable(opts.definitions)
	if err != nil {
		return err
	}
	p, err := profile.Builtin(opts.profile, set)
	if err != nil {
		return err
	}

	sub, err := generate(set, p, opts)
	if err != nil {
		return err
	}
	log.Printf("generated %d rows (%s, %s)", sub.Len(), p.Name, sub.TimeMode())

	data, err := domain.EncodeSubmission(sub)
	if err != nil {
		return err
	}
	if err := writeFile(*out, data); err != nil {
		return fmt.Errorf("writing submission fixture: %w", err)
	}
	log.Printf("wrote submission fixture: %s", *out)

	report := validate(p, sub)
	log.Printf("validation: %s with %d diagnostics", report.Status, len(report.Diagnostics))
	if report.Error != "" {
		log.Printf("validation error: %s", report.Error)
	}
	if *reportOut == "" {
		return nil
	}

	data, err = json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	if err := writeFile(*reportOut, data); err != nil {
		return fmt.Errorf("writing report fixture: %w", err)
	}
	log.Printf("wrote report fixture: %s", *reportOut)
	return nil
}

// generate samples identifiers from the profile's codelists and lays out one
// series per (region, variable) on the requested time axis.
func generate(set *codelist.Set, p validation.Profile, opts genOptions) (*domain.Submission, error) {
	scenarios := sample(set, domain.DimScenario, 1)
	regions := sample(set, domain.DimRegion, opts.regions)
	variables := sampleCodes(set, domain.DimVariable, opts.variables)
	if len(scenarios) == 0 || len(regions) == 0 || len(variables) == 0 {
		return nil, fmt.Errorf("definitions in %s lack scenarios, regions or variables", opts.definitions)
	}

	mode, err := parseMode(opts.mode)
	if err != nil {
		return nil, err
	}

	var rows []domain.Observation //nolint:prealloc // size depends on the time axis
	for ri, region := range regions {
		for vi, v := range variables {
			base := domain.Observation{
				Model:    opts.model,
				Scenario: scenarios[0],
				Region:   region,
				Variable: v.Name,
				Unit:     v.Units[0],
			}
			rows = append(rows, series(base, mode, set, opts, float64(10*(ri+1)+vi))...)
		}
	}

	sub := domain.NewSubmission(fmt.Sprintf("%s-mock-%s", p.Name, mode), mode, rows)
	key := domain.ScenarioKey{Model: opts.model, Scenario: scenarios[0]}
	for _, k := range p.Meta.Required {
		sub.Meta().Set(key, k.Name, k.Default())
	}
	return sub, nil
}

func series(base domain.Observation, mode domain.TimeMode, set *codelist.Set, opts genOptions, level float64) []domain.Observation {
	var out []domain.Observation
	switch mode {
	case domain.TimeModeDatetime:
		start := time.Date(opts.year, time.January, 1, 0, 0, 0, 0, cet)
		for h := 0; h < opts.hours; h++ {
			o := base
			o.Time = start.Add(time.Duration(h) * time.Hour)
			o.Value = round(level * (1 + 0.25*math.Sin(float64(h)*math.Pi/12)))
			out = append(out, o)
		}
	case domain.TimeModeSubannual:
		for i, label := range sample(set, domain.DimSubannual, 4) {
			o := base
			o.Year = opts.year
			o.Subannual = label
			o.Value = round(level * (1 + 0.1*float64(i)))
			out = append(out, o)
		}
	default:
		for i := 0; i < 3; i++ {
			o := base
			o.Year = opts.year + 10*i
			o.Value = round(level * math.Pow(0.9, float64(i)))
			out = append(out, o)
		}
	}
	return out
}

func validate(p validation.Profile, sub *domain.Submission) domain.Report {
	rec := &diagnostics.Recorder{}
	status, err := p.Run(sub, rec)
	report := domain.Report{
		ID:          sub.ID,
		Profile:     p.Name,
		Status:      status,
		TimeMode:    sub.TimeMode().String(),
		Rows:        sub.Len(),
		Diagnostics: rec.Events(),
		ProcessedAt: domain.Now().UTC(),
	}
	if report.Diagnostics == nil {
		report.Diagnostics = []diagnostics.Event{}
	}
	if err != nil {
		report.Error = err.Error()
	}
	return report
}

func parseMode(s string) (domain.TimeMode, error) {
	switch s {
	case "year":
		return domain.TimeModeYear, nil
	case "datetime":
		return domain.TimeModeDatetime, nil
	case "subannual":
		return domain.TimeModeSubannual, nil
	default:
		return 0, fmt.Errorf("unsupported mode %q", s)
	}
}

// sample returns up to n names of dim in declaration order.
func sample(set *codelist.Set, dim domain.Dimension, n int) []string {
	codes := sampleCodes(set, dim, n)
	names := make([]string, len(codes))
	for i, c := range codes {
		names[i] = c.Name
	}
	return names
}

// sampleCodes skips variables that declare no unit.
func sampleCodes(set *codelist.Set, dim domain.Dimension, n int) []codelist.Code {
	list := set.List(dim)
	if list == nil {
		return nil
	}
	var out []codelist.Code
	for _, c := range list.Codes() {
		if len(out) == n {
			break
		}
		if dim == domain.DimVariable && len(c.Units) == 0 {
			continue
		}
		out = append(out, c)
	}
	return out
}

func round(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

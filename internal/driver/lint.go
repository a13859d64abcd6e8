// Package driver runs the lint pipeline over files: lexing, command scanning,
// region resolution, rule evaluation, filtering and the command audit.
package driver

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"slices"
	"strconv"

	"golang.org/x/sync/errgroup"

	"sglint/internal/annotate"
	"sglint/internal/audit"
	"sglint/internal/baseline"
	"sglint/internal/config"
	"sglint/internal/diag"
	"sglint/internal/filter"
	"sglint/internal/lexer"
	"sglint/internal/observ"
	"sglint/internal/region"
	"sglint/internal/rule"
	"sglint/internal/rules"
	"sglint/internal/source"
	"sglint/internal/trace"
)

// FileResult is the outcome of linting one file.
type FileResult struct {
	Path       string
	FileID     source.FileID
	Reported   []rule.Violation
	Suppressed []rule.Violation
	// Baselined holds reported violations the baseline already knows. They
	// are not in Reported and not in Bag.
	Baselined []rule.Violation
	Findings  []audit.Finding
	// Bag holds everything to render: reported violations, annotation and
	// lexer diagnostics, rule failures.
	Bag *diag.Bag
	// Err is set when the file could not be linted at all. Partial output
	// is never returned alongside it.
	Err error
	// Loaded is false when the file could not be read; FileID then names an
	// empty placeholder.
	Loaded bool
	Cached bool
}

// Options configure a Linter.
type Options struct {
	// Config defaults to config.Default().
	Config *config.Config
	// Registry defaults to the built-in rules configured by Config.
	Registry       *rule.Registry
	Jobs           int
	MaxDiagnostics int
	Cache          *Cache
	Timings        *observ.Aggregate
	// FileTimings adds a per-file timing diagnostic to every bag.
	FileTimings      bool
	IgnoreWarnings   bool
	WarningsAsErrors bool
	Progress         ProgressSink
	// Baseline hides violations recorded by an earlier run.
	Baseline *baseline.Baseline
}

// Linter is built once per run and shared by every worker. It is immutable
// after New.
type Linter struct {
	reg         *rule.Registry
	active      rule.Set
	evaluated   []rule.Rule
	prefix      string
	tieBreak    region.TieBreak
	allowed     []rule.ID
	fingerprint Digest
	tool        Digest

	jobs             int
	maxDiagnostics   int
	cache            *Cache
	timings          *observ.Aggregate
	fileTimings      bool
	ignoreWarnings   bool
	warningsAsErrors bool
	progress         ProgressSink
	baseline         *baseline.Baseline
}

// New validates the configuration against the registry and prepares the
// set of active rules.
func New(opts Options) (*Linter, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	reg := opts.Registry
	if reg == nil {
		var err error
		reg, err = rules.NewRegistry(cfg.RuleOptions())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", configName(cfg), err)
		}
	}
	active, err := rule.Activate(reg, cfg.Selection())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", configName(cfg), err)
	}
	for _, id := range cfg.BlanketAllowed() {
		if id != rule.Wildcard && !reg.Known(id) {
			return nil, fmt.Errorf("%s: blanket_disable_command.allowed: unknown rule %q", configName(cfg), id)
		}
	}

	l := &Linter{
		reg:              reg,
		active:           active,
		prefix:           cfg.Prefix,
		tieBreak:         cfg.TieBreakMode(),
		allowed:          cfg.BlanketAllowed(),
		fingerprint:      cfg.Fingerprint(),
		tool:             toolDigest(reg),
		jobs:             opts.Jobs,
		maxDiagnostics:   opts.MaxDiagnostics,
		cache:            opts.Cache,
		timings:          opts.Timings,
		fileTimings:      opts.FileTimings,
		ignoreWarnings:   opts.IgnoreWarnings,
		warningsAsErrors: opts.WarningsAsErrors,
		progress:         opts.Progress,
		baseline:         opts.Baseline,
	}
	for _, r := range reg.Rules() {
		d := r.Descriptor()
		if !d.Meta && active.Has(d.ID) {
			l.evaluated = append(l.evaluated, r)
		}
	}
	return l, nil
}

func configName(cfg *config.Config) string {
	if cfg.Path == "" {
		return "configuration"
	}
	return cfg.Path
}

func (l *Linter) Registry() *rule.Registry { return l.reg }

// Active returns the identifiers of the rules that run, meta rules included.
func (l *Linter) Active() rule.Set { return l.active }

// LintFile runs the whole pipeline on one loaded file. It never panics
// because of a rule; failing rules are reported in the bag.
func (l *Linter) LintFile(ctx context.Context, file *source.File) FileResult {
	ctx, span := trace.Start(ctx, trace.ScopeFile, "file:"+file.Path)

	var key Digest
	if l.cache != nil {
		key = cacheKey(file.Hash, l.fingerprint, l.tool)
		if cached, ok := l.cache.get(key); ok {
			res := cached.restore(file.Path, file.ID)
			l.applyBaseline(&res, file)
			res.Bag = l.finishBag(res.Bag)
			span.Set("cache", "hit").End("")
			l.report(file.Path, StageAudit, StatusDone, nil)
			return res
		}
	}

	timer := observ.NewTimer()
	res := l.lint(ctx, file, timer)
	l.timings.Add(timer)

	if res.Err != nil {
		span.Set("error", res.Err).End("")
		l.report(file.Path, StageAudit, StatusError, res.Err)
		return res
	}
	// the cache holds the bag before output flags apply; timing diagnostics
	// differ per run and are never cached
	if l.cache != nil && !l.fileTimings {
		if err := l.cache.put(key, toCached(&res)); err != nil {
			span.Event("cache-write-failed", err.Error())
		}
	}
	l.applyBaseline(&res, file)
	res.Bag = l.finishBag(res.Bag)
	if l.fileTimings {
		report := timer.Report()
		appendTimingDiagnostic(res.Bag, file.ID, timingPayload{
			Path:    file.Path,
			TotalMS: report.TotalMS,
			Phases:  report.Phases,
		})
	}

	span.Set("reported", len(res.Reported)).
		Set("suppressed", len(res.Suppressed)).
		End("")
	l.report(file.Path, StageAudit, StatusDone, nil)
	return res
}

func (l *Linter) lint(ctx context.Context, file *source.File, timer *observ.Timer) FileResult {
	res := FileResult{Path: file.Path, FileID: file.ID, Loaded: true}
	// unlimited until finishBag, so the cached bag is complete
	bag := diag.NewBag(0)

	l.report(file.Path, StageLex, StatusWorking, nil)
	idx := timer.Begin(observ.PhaseLex)
	tokens := lexer.Tokenize(file, lexer.Options{Reporter: diag.BagReporter{Bag: bag}})
	timer.End(idx, "")

	idx = timer.Begin(observ.PhaseScan)
	cmds, annDiags := annotate.Scan(tokens, file, annotate.Options{Prefix: l.prefix, Registry: l.reg})
	for _, d := range annDiags {
		bag.Add(d)
	}
	timer.End(idx, strconv.Itoa(len(cmds))+" commands")

	idx = timer.Begin(observ.PhaseResolve)
	regions, err := region.Resolve(annotate.Expand(cmds, file), l.reg, region.Options{
		TieBreak: l.tieBreak,
		FileSize: file.Size(),
	})
	timer.End(idx, "")
	if err != nil {
		res.Err = fmt.Errorf("%s: %w", file.Path, err)
		res.Bag = diag.NewBag(0)
		res.Bag.Add(diag.NewError(diag.IntUnresolvedRegion, source.At(file.ID, 0), err.Error()))
		return res
	}

	l.report(file.Path, StageRules, StatusWorking, nil)
	idx = timer.Begin(observ.PhaseRules)
	raw, failures, err := l.evaluate(ctx, &rule.File{Source: file, Tokens: tokens})
	timer.End(idx, "")
	if err != nil {
		return FileResult{Path: file.Path, FileID: file.ID, Loaded: true, Err: err}
	}
	for _, d := range failures {
		bag.Add(d)
	}

	idx = timer.Begin(observ.PhaseFilter)
	filtered := filter.Apply(raw, regions)
	timer.End(idx, "")

	l.report(file.Path, StageAudit, StatusWorking, nil)
	idx = timer.Begin(observ.PhaseAudit)
	res.Findings = audit.Run(audit.Input{
		Commands:       cmds,
		Regions:        regions,
		Raw:            raw,
		Registry:       l.reg,
		Active:         l.active,
		BlanketAllowed: l.allowed,
	})
	// meta findings obey the same regions, once
	meta := filter.Apply(audit.Violations(res.Findings, cmds, l.reg), regions)
	timer.End(idx, strconv.Itoa(len(res.Findings))+" findings")

	res.Reported = mergeByPos(filtered.Reported, meta.Reported)
	res.Suppressed = mergeByPos(filtered.Suppressed, meta.Suppressed)
	for _, v := range res.Reported {
		bag.Add(v.Diagnostic())
	}
	res.Bag = bag
	return res
}

// evaluate runs every active rule concurrently. A rule that errors or
// panics contributes no violations and one LNT3001 diagnostic. The only
// error returned is the context's.
func (l *Linter) evaluate(ctx context.Context, f *rule.File) ([]rule.Violation, []diag.Diagnostic, error) {
	outs := make([][]rule.Violation, len(l.evaluated))
	fails := make([]*diag.Diagnostic, len(l.evaluated))

	g, gctx := errgroup.WithContext(ctx)
	for i, r := range l.evaluated {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			id := r.Descriptor().ID
			_, span := trace.Start(ctx, trace.ScopeRule, "rule:"+string(id))
			vs, err := runRule(gctx, r, f)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
					span.End("cancelled")
					return ctxErr
				}
				d := diag.NewError(diag.LntRuleFailed, source.At(f.Source.ID, 0),
					fmt.Sprintf("rule %s failed: %v", id, err))
				d.Rule = string(id)
				fails[i] = &d
				span.End("failed")
				return nil
			}
			outs[i] = vs
			span.Set("violations", len(vs)).End("")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	var raw []rule.Violation
	var failures []diag.Diagnostic
	for i := range l.evaluated {
		raw = append(raw, outs[i]...)
		if fails[i] != nil {
			failures = append(failures, *fails[i])
		}
	}
	slices.SortStableFunc(raw, func(a, b rule.Violation) int { return cmp.Compare(a.Pos(), b.Pos()) })
	return raw, failures, nil
}

// runRule calls r.Evaluate and converts a panic into an error. Violations
// are stamped with the rule's own identifier so a rule cannot report under
// another rule's name.
func runRule(ctx context.Context, r rule.Rule, f *rule.File) (vs []rule.Violation, err error) {
	defer func() {
		if p := recover(); p != nil {
			vs = nil
			err = fmt.Errorf("panic: %v\n%s", p, debug.Stack())
		}
	}()
	d := r.Descriptor()
	vs, err = r.Evaluate(ctx, f)
	if err != nil {
		return nil, err
	}
	for i := range vs {
		vs[i].Rule = d.ID
		vs[i].Span.File = f.Source.ID
	}
	return vs, nil
}

// applyBaseline moves known violations out of Reported and drops their
// diagnostics from the bag.
func (l *Linter) applyBaseline(res *FileResult, file *source.File) {
	if l.baseline == nil || len(res.Reported) == 0 {
		return
	}
	kept, known := l.baseline.Filter(file, res.Reported)
	if len(known) == 0 {
		return
	}
	res.Reported, res.Baselined = kept, known

	type key struct {
		rule       string
		start, end uint32
		message    string
	}
	drop := make(map[key]int, len(known))
	for _, v := range known {
		drop[key{string(v.Rule), v.Span.Start, v.Span.End, v.Message}]++
	}
	res.Bag.Filter(func(d diag.Diagnostic) bool {
		if d.Code != diag.LntViolation {
			return true
		}
		k := key{d.Rule, d.Primary.Start, d.Primary.End, d.Message}
		if drop[k] > 0 {
			drop[k]--
			return false
		}
		return true
	})
}

// finishBag applies the output flags to a complete bag: warning filtering
// and promotion, ordering, then the diagnostic limit. raw is left untouched.
func (l *Linter) finishBag(raw *diag.Bag) *diag.Bag {
	bag := diag.NewBag(0)
	bag.Merge(raw)
	if l.ignoreWarnings {
		bag.Filter(func(d diag.Diagnostic) bool {
			return d.Severity >= diag.SevError
		})
	}
	if l.warningsAsErrors {
		bag.Transform(func(d diag.Diagnostic) diag.Diagnostic {
			if d.Severity == diag.SevWarning {
				d.Severity = diag.SevError
			}
			return d
		})
	}
	bag.Sort()

	out := diag.NewBag(l.maxDiagnostics)
	for _, d := range bag.Items() {
		if !out.Add(d) {
			break
		}
	}
	return out
}

func mergeByPos(a, b []rule.Violation) []rule.Violation {
	if len(b) == 0 {
		return a
	}
	out := make([]rule.Violation, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	slices.SortStableFunc(out, func(x, y rule.Violation) int { return cmp.Compare(x.Pos(), y.Pos()) })
	return out
}

package driver_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sglint/internal/audit"
	"sglint/internal/baseline"
	"sglint/internal/config"
	"sglint/internal/diag"
	"sglint/internal/driver"
	"sglint/internal/observ"
	"sglint/internal/region"
	"sglint/internal/rule"
	"sglint/internal/rules"
	"sglint/internal/source"
	"sglint/internal/trace"
	"sglint/internal/version"
)

type stubRule struct {
	id   rule.ID
	eval func(ctx context.Context, f *rule.File) ([]rule.Violation, error)
}

func (r stubRule) Descriptor() rule.Descriptor {
	return rule.Descriptor{ID: r.id, Name: string(r.id), Severity: diag.SevWarning}
}

func (r stubRule) Evaluate(ctx context.Context, f *rule.File) ([]rule.Violation, error) {
	return r.eval(ctx, f)
}

func onlyConfig(ids ...string) *config.Config {
	cfg := config.Default()
	cfg.Rules.Only = append(ids,
		string(audit.SuperfluousDisableCommand),
		string(audit.InvalidRuleReference))
	return cfg
}

func newLinter(t *testing.T, opts driver.Options) *driver.Linter {
	t.Helper()
	l, err := driver.New(opts)
	if err != nil {
		t.Fatalf("driver.New: %v", err)
	}
	return l
}

func virtual(src string) *source.File {
	fs := source.NewFileSet()
	return fs.Get(fs.AddVirtual("a.sg", []byte(src)))
}

func rulesOf(vs []rule.Violation) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = string(v.Rule)
	}
	return out
}

func TestLintFileSuppressesBetweenCommands(t *testing.T) {
	src := "// TODO one\n" +
		"// sglint:disable todo\n" +
		"// TODO two\n" +
		"// sglint:enable todo\n" +
		"// TODO three\n" +
		"let x = 1;\n"
	l := newLinter(t, driver.Options{Config: onlyConfig("todo")})
	res := l.LintFile(context.Background(), virtual(src))

	if res.Err != nil {
		t.Fatalf("Err = %v", res.Err)
	}
	if len(res.Reported) != 2 || len(res.Suppressed) != 1 {
		t.Fatalf("reported %v, suppressed %v", res.Reported, res.Suppressed)
	}
	if got := res.Suppressed[0].Pos(); got != uint32(strings.Index(src, "TODO two")) {
		t.Errorf("suppressed at %d", got)
	}
	if len(res.Findings) != 0 {
		t.Errorf("unexpected findings %v", res.Findings)
	}
	if res.Bag.Len() != 2 {
		t.Errorf("bag holds %d diagnostics, want the 2 reported violations", res.Bag.Len())
	}
}

func TestLintFileReportsSuperfluousDisable(t *testing.T) {
	src := "// sglint:disable todo\nlet ab = 1;\n// sglint:enable todo\n"
	l := newLinter(t, driver.Options{Config: onlyConfig("todo")})
	res := l.LintFile(context.Background(), virtual(src))

	if len(res.Findings) != 1 || res.Findings[0].Kind != audit.Superfluous {
		t.Fatalf("findings = %+v", res.Findings)
	}
	if got := rulesOf(res.Reported); len(got) != 1 || got[0] != string(audit.SuperfluousDisableCommand) {
		t.Fatalf("reported = %v", got)
	}
	if res.Reported[0].Pos() != uint32(strings.Index(src, "sglint:")) {
		t.Errorf("meta violation at %d, want the command position", res.Reported[0].Pos())
	}
	items := res.Bag.Items()
	if len(items) != 1 || items[0].Rule != string(audit.SuperfluousDisableCommand) {
		t.Errorf("bag = %+v", items)
	}
}

func TestLintFileMetaFindingCanBeSuppressed(t *testing.T) {
	src := "// sglint:disable superfluous_disable_command\n" +
		"// sglint:disable todo\n" +
		"let ab = 1;\n"
	l := newLinter(t, driver.Options{Config: onlyConfig("todo")})
	res := l.LintFile(context.Background(), virtual(src))

	if len(res.Findings) != 1 {
		t.Fatalf("findings = %+v", res.Findings)
	}
	if len(res.Reported) != 0 || len(res.Suppressed) != 1 {
		t.Errorf("reported %v, suppressed %v", res.Reported, res.Suppressed)
	}
}

func TestLintFileRuleFailureIsIsolated(t *testing.T) {
	panicky := stubRule{id: "panicky", eval: func(context.Context, *rule.File) ([]rule.Violation, error) {
		panic("boom")
	}}
	failing := stubRule{id: "failing", eval: func(context.Context, *rule.File) ([]rule.Violation, error) {
		return nil, errors.New("cannot evaluate")
	}}
	reg := rule.MustRegistry(append(rules.Builtin(rules.Options{}), panicky, failing)...)
	l := newLinter(t, driver.Options{
		Config:   onlyConfig("todo", "panicky", "failing"),
		Registry: reg,
	})
	res := l.LintFile(context.Background(), virtual("// TODO x\n"))

	if res.Err != nil {
		t.Fatalf("Err = %v", res.Err)
	}
	if got := rulesOf(res.Reported); len(got) != 1 || got[0] != "todo" {
		t.Errorf("reported = %v", got)
	}
	failed := map[string]bool{}
	for _, d := range res.Bag.Items() {
		if d.Code == diag.LntRuleFailed {
			failed[d.Rule] = true
			if d.Severity != diag.SevError {
				t.Errorf("rule failure severity = %v", d.Severity)
			}
		}
	}
	if !failed["panicky"] || !failed["failing"] {
		t.Errorf("rule failures = %v", failed)
	}
}

func TestLintFileCancellationDiscardsOutput(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	canceller := stubRule{id: "canceller", eval: func(ctx context.Context, _ *rule.File) ([]rule.Violation, error) {
		cancel()
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	reg := rule.MustRegistry(append(rules.Builtin(rules.Options{}), canceller)...)
	l := newLinter(t, driver.Options{Config: onlyConfig("todo", "canceller"), Registry: reg})
	res := l.LintFile(ctx, virtual("// TODO x\n"))

	if !errors.Is(res.Err, context.Canceled) {
		t.Fatalf("Err = %v, want context.Canceled", res.Err)
	}
	if res.Reported != nil || res.Suppressed != nil || res.Findings != nil || res.Bag != nil {
		t.Errorf("partial output leaked: %+v", res)
	}
}

func TestLintFileStampsRuleIdentity(t *testing.T) {
	liar := stubRule{id: "liar", eval: func(_ context.Context, f *rule.File) ([]rule.Violation, error) {
		return []rule.Violation{{Rule: "todo", Span: source.Span{Start: 0, End: 1}, Severity: diag.SevWarning}}, nil
	}}
	reg := rule.MustRegistry(append(rules.Builtin(rules.Options{}), liar)...)
	l := newLinter(t, driver.Options{Config: onlyConfig("liar"), Registry: reg})
	res := l.LintFile(context.Background(), virtual("// sglint:disable todo\nlet ab = 1;\n"))

	// the violation belongs to liar, so disabling todo does not hide it
	if got := rulesOf(res.Reported); len(got) != 1 || got[0] != "liar" {
		t.Errorf("reported = %v", got)
	}
}

func TestSeverityOptions(t *testing.T) {
	src := "// TODO x\nlet a = 1;\n"
	l := newLinter(t, driver.Options{Config: onlyConfig("todo", "identifier_name"), WarningsAsErrors: true})
	res := l.LintFile(context.Background(), virtual(src))
	for _, d := range res.Bag.Items() {
		if d.Severity != diag.SevError {
			t.Errorf("%s kept severity %v", d.Label(), d.Severity)
		}
	}

	l = newLinter(t, driver.Options{Config: onlyConfig("todo", "identifier_name"), IgnoreWarnings: true})
	res = l.LintFile(context.Background(), virtual(src))
	if res.Bag.Len() != 1 || res.Bag.Items()[0].Rule != "identifier_name" {
		t.Errorf("bag = %+v", res.Bag.Items())
	}
}

func TestNewRejectsUnknownRules(t *testing.T) {
	cfg := config.Default()
	cfg.Rules.Disabled = []string{"no_such_rule"}
	if _, err := driver.New(driver.Options{Config: cfg}); err == nil {
		t.Errorf("unknown disabled rule accepted")
	}

	cfg = config.Default()
	cfg.Blanket.Allowed = []string{"nope"}
	if _, err := driver.New(driver.Options{Config: cfg}); err == nil {
		t.Errorf("unknown blanket allowed rule accepted")
	}
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	return root
}

func TestLintPathWalksDirectory(t *testing.T) {
	root := writeTree(t, map[string]string{
		"b.sg":          "// TODO b\n",
		"a.sg":          "let ok = 1;\n",
		"sub/c.sg":      "// sglint:disable todo\n// TODO c\n",
		".hidden/d.sg":  "// TODO hidden\n",
		"notes.txt":     "TODO not source\n",
		"sub/readme.md": "# TODO\n",
	})
	agg := observ.NewAggregate()
	l := newLinter(t, driver.Options{Config: onlyConfig("todo"), Jobs: 2, Timings: agg})

	fs, results, err := l.LintPath(context.Background(), root)
	if err != nil {
		t.Fatalf("LintPath: %v", err)
	}
	var names []string
	for _, r := range results {
		rel, _ := filepath.Rel(root, r.Path)
		names = append(names, filepath.ToSlash(rel))
	}
	if strings.Join(names, ",") != "a.sg,b.sg,sub/c.sg" {
		t.Fatalf("files = %v", names)
	}
	if len(results[1].Reported) != 1 || len(results[2].Suppressed) != 1 {
		t.Errorf("b reported %v, c suppressed %v", results[1].Reported, results[2].Suppressed)
	}
	if got := fs.Get(results[2].FileID).Path; !strings.HasSuffix(got, "sub/c.sg") {
		t.Errorf("FileID points at %q", got)
	}
	if len(agg.Report().Phases) == 0 {
		t.Errorf("no timings recorded")
	}
}

func TestLintPathsLoadFailure(t *testing.T) {
	root := writeTree(t, map[string]string{"a.sg": "// TODO a\n"})
	l := newLinter(t, driver.Options{Config: onlyConfig("todo")})

	missing := filepath.Join(root, "missing.sg")
	_, results, err := l.LintPaths(context.Background(), root, []string{missing, filepath.Join(root, "a.sg")})
	if err != nil {
		t.Fatalf("LintPaths: %v", err)
	}
	if results[0].Loaded || results[0].Bag.Len() != 1 || results[0].Bag.Items()[0].Code != diag.IOLoadFileError {
		t.Errorf("missing file result = %+v", results[0])
	}
	if len(results[1].Reported) != 1 {
		t.Errorf("sibling file lost its output: %+v", results[1])
	}
}

func TestLintPathsCancelled(t *testing.T) {
	root := writeTree(t, map[string]string{"a.sg": "// TODO a\n", "b.sg": "// TODO b\n"})
	l := newLinter(t, driver.Options{Config: onlyConfig("todo")})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, results, err := l.LintPath(ctx, root)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	for _, r := range results {
		if !errors.Is(r.Err, context.Canceled) || r.Reported != nil {
			t.Errorf("%s: %+v", r.Path, r)
		}
	}
}

func TestCacheReplaysResults(t *testing.T) {
	disk, err := driver.OpenDiskCache(t.TempDir(), "sglint")
	if err != nil {
		t.Fatalf("OpenDiskCache: %v", err)
	}
	cache, err := driver.NewCache(8, disk)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	src := "// TODO one\n// sglint:disable todo\n// TODO two\n"
	l := newLinter(t, driver.Options{Config: onlyConfig("todo"), Cache: cache})

	first := l.LintFile(context.Background(), virtual(src))
	if first.Cached {
		t.Fatalf("first run was served from cache")
	}

	// a fresh FileSet gives the same content another FileID
	fs := source.NewFileSet()
	fs.AddVirtual("other.sg", []byte("let zz = 0;\n"))
	file := fs.Get(fs.AddVirtual("a.sg", []byte(src)))
	second := l.LintFile(context.Background(), file)

	if !second.Cached {
		t.Fatalf("second run missed the cache")
	}
	if len(second.Reported) != len(first.Reported) || len(second.Suppressed) != len(first.Suppressed) {
		t.Errorf("cached result differs: %+v vs %+v", second, first)
	}
	for _, v := range second.Reported {
		if v.Span.File != file.ID {
			t.Errorf("span not rebound: %v", v.Span)
		}
	}
	for _, d := range second.Bag.Items() {
		if d.Primary.File != file.ID {
			t.Errorf("diagnostic span not rebound: %v", d.Primary)
		}
	}
	if hits, misses := cache.Stats(); hits != 1 || misses != 1 {
		t.Errorf("stats = %d hits, %d misses", hits, misses)
	}

	// the disk layer survives a new in-memory cache
	cold, err := driver.NewCache(8, disk)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	l = newLinter(t, driver.Options{Config: onlyConfig("todo"), Cache: cold})
	if res := l.LintFile(context.Background(), virtual(src)); !res.Cached {
		t.Errorf("disk cache missed")
	}

	// another configuration never sees those entries
	cfg := onlyConfig("todo")
	cfg.LineLength.Max = 42
	l = newLinter(t, driver.Options{Config: cfg, Cache: cold})
	if res := l.LintFile(context.Background(), virtual(src)); res.Cached {
		t.Errorf("cache ignored the configuration")
	}
}

func newCache(t *testing.T) *driver.Cache {
	t.Helper()
	disk, err := driver.OpenDiskCache(t.TempDir(), "sglint")
	if err != nil {
		t.Fatalf("OpenDiskCache: %v", err)
	}
	cache, err := driver.NewCache(8, disk)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	return cache
}

func TestCacheIgnoresOutputFlags(t *testing.T) {
	cache := newCache(t)
	src := "// TODO later\n// TODO again\nlet a = 1;\n"

	quiet := newLinter(t, driver.Options{Config: onlyConfig("todo"), Cache: cache, IgnoreWarnings: true})
	if res := quiet.LintFile(context.Background(), virtual(src)); res.Cached || res.Bag.Len() != 0 {
		t.Fatalf("ignore-warnings run: cached=%v bag=%d", res.Cached, res.Bag.Len())
	}

	normal := newLinter(t, driver.Options{Config: onlyConfig("todo"), Cache: cache})
	res := normal.LintFile(context.Background(), virtual(src))
	if !res.Cached {
		t.Fatalf("second run missed the cache")
	}
	if len(res.Reported) != 2 || res.Bag.Len() != 2 {
		t.Fatalf("todo warnings lost: reported=%d bag=%d", len(res.Reported), res.Bag.Len())
	}
	for _, d := range res.Bag.Items() {
		if d.Severity != diag.SevWarning {
			t.Errorf("%s replayed as %v", d.Label(), d.Severity)
		}
	}

	strict := newLinter(t, driver.Options{Config: onlyConfig("todo"), Cache: cache, WarningsAsErrors: true, MaxDiagnostics: 1})
	res = strict.LintFile(context.Background(), virtual(src))
	if !res.Cached || res.Bag.Len() != 1 || res.Bag.Items()[0].Severity != diag.SevError {
		t.Fatalf("strict run: cached=%v bag=%+v", res.Cached, res.Bag.Items())
	}
	if res.Bag.Items()[0].Primary.Start != uint32(strings.Index(src, "TODO later")) {
		t.Errorf("limit kept %v, want the first diagnostic", res.Bag.Items()[0].Primary)
	}

	// the limit never leaks into the cache either
	res = normal.LintFile(context.Background(), virtual(src))
	if res.Bag.Len() != 2 {
		t.Errorf("bag = %d after a limited run, want 2", res.Bag.Len())
	}
}

func TestCacheKeyCoversRulesAndVersion(t *testing.T) {
	cache := newCache(t)
	src := "// TODO later\n"
	cfg := onlyConfig("todo")

	plain, err := rules.NewRegistry(cfg.RuleOptions())
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	l := newLinter(t, driver.Options{Config: cfg, Registry: plain, Cache: cache})
	l.LintFile(context.Background(), virtual(src))
	if res := l.LintFile(context.Background(), virtual(src)); !res.Cached {
		t.Fatalf("identical run missed the cache")
	}

	opts := cfg.RuleOptions()
	opts.Severity = map[rule.ID]diag.Severity{rules.TodoID: diag.SevError}
	stricter, err := rules.NewRegistry(opts)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	l = newLinter(t, driver.Options{Config: cfg, Registry: stricter, Cache: cache})
	res := l.LintFile(context.Background(), virtual(src))
	if res.Cached {
		t.Fatalf("changed rule descriptors replayed a cached result")
	}
	if res.Bag.Len() != 1 || res.Bag.Items()[0].Severity != diag.SevError {
		t.Errorf("bag = %+v", res.Bag.Items())
	}

	prev := version.Version
	version.Version = prev + "+next"
	defer func() { version.Version = prev }()
	l = newLinter(t, driver.Options{Config: cfg, Registry: plain, Cache: cache})
	if res := l.LintFile(context.Background(), virtual(src)); res.Cached {
		t.Errorf("another version replayed a cached result")
	}
}

func TestSeverityKeysResolveAliases(t *testing.T) {
	src := "let a = 1;\n"
	cfg := onlyConfig("identifier_name")
	cfg.Rules.Severity = map[string]string{"variable_name": "error"}
	l := newLinter(t, driver.Options{Config: cfg})
	res := l.LintFile(context.Background(), virtual(src))
	if res.Bag.Len() != 1 || res.Bag.Items()[0].Severity != diag.SevError {
		t.Errorf("alias severity ignored: %+v", res.Bag.Items())
	}

	cfg = config.Default()
	cfg.Rules.Severity = map[string]string{"todoo": "error"}
	if _, err := driver.New(driver.Options{Config: cfg}); err == nil || !strings.Contains(err.Error(), "todoo") {
		t.Errorf("unknown severity key: err = %v", err)
	}

	cfg = config.Default()
	cfg.Rules.Severity = map[string]string{"variable_name": "error", "identifier_name": "warning"}
	if _, err := driver.New(driver.Options{Config: cfg}); err == nil {
		t.Errorf("rule configured twice through its alias accepted")
	}
}

func TestBaselineHidesKnownViolations(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.sg")
	loadFile := func(content string) *source.File {
		t.Helper()
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
		fs := source.NewFileSet()
		id, err := fs.Load(path)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		return fs.Get(id)
	}

	l := newLinter(t, driver.Options{Config: onlyConfig("todo")})
	original := loadFile("// TODO later\nlet abc = 1;\n")
	first := l.LintFile(context.Background(), original)
	known, err := baseline.ForFile(filepath.Join(dir, "baseline.json"))
	if err != nil {
		t.Fatalf("ForFile: %v", err)
	}
	known.Add(original, first.Reported)

	l = newLinter(t, driver.Options{Config: onlyConfig("todo"), Baseline: known, Cache: newCache(t)})
	src := "let first = 0;\n// TODO later\nlet abc = 1;\n// TODO new\n"
	for _, wantCached := range []bool{false, true} {
		res := l.LintFile(context.Background(), loadFile(src))
		if res.Cached != wantCached {
			t.Fatalf("cached = %v, want %v", res.Cached, wantCached)
		}
		if len(res.Baselined) != 1 || res.Baselined[0].Pos() != uint32(strings.Index(src, "TODO later")) {
			t.Errorf("baselined = %+v", res.Baselined)
		}
		if len(res.Reported) != 1 || res.Reported[0].Pos() != uint32(strings.Index(src, "TODO new")) {
			t.Fatalf("reported = %+v", res.Reported)
		}
		if items := res.Bag.Items(); len(items) != 1 || items[0].Primary.Start != res.Reported[0].Pos() {
			t.Errorf("bag = %+v", items)
		}
	}
}

func TestLintTraces(t *testing.T) {
	root := writeTree(t, map[string]string{"a.sg": "// TODO a\n"})
	ring := trace.NewRingTracer(64, trace.LevelRule)
	ctx := trace.WithTracer(context.Background(), ring)
	l := newLinter(t, driver.Options{Config: onlyConfig("todo")})

	if _, _, err := l.LintPath(ctx, root); err != nil {
		t.Fatalf("LintPath: %v", err)
	}
	seen := map[string]bool{}
	for _, ev := range ring.Snapshot() {
		if ev.Kind == trace.KindSpanEnd {
			seen[ev.Name] = true
		}
	}
	if !seen["lint"] || !seen["rule:todo"] {
		t.Errorf("spans = %v", seen)
	}
}

func TestUnresolved(t *testing.T) {
	results := []driver.FileResult{
		{Path: "a.sg"},
		{Path: "b.sg", Err: errors.Join(errors.New("b.sg"), region.ErrUnresolvedRegion)},
	}
	if !driver.Unresolved(results) {
		t.Errorf("unresolved region not detected")
	}
	if driver.Unresolved(results[:1]) {
		t.Errorf("false positive")
	}
}

func TestTokenize(t *testing.T) {
	root := writeTree(t, map[string]string{"a.sg": "// sglint:disable:next todo - legacy\nlet a = 1;\n// sglint:frobnicate x\n"})
	res, err := driver.Tokenize(filepath.Join(root, "a.sg"), "", 0)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if len(res.Commands) != 1 || res.Commands[0].Trailing != "legacy" {
		t.Errorf("commands = %+v", res.Commands)
	}
	if res.Bag.Len() != 1 || res.Bag.Items()[0].Code != diag.AnnUnknownAction {
		t.Errorf("bag = %+v", res.Bag.Items())
	}
}

package annotate

import (
	"fmt"
	"slices"
	"strings"

	"fortio.org/safecast"

	"sglint/internal/diag"
	"sglint/internal/rule"
	"sglint/internal/source"
	"sglint/internal/token"
)

type Options struct {
	// Prefix defaults to DefaultPrefix.
	Prefix string
	// Registry, when set, enables deprecated-alias hints. Unknown identifiers
	// are never rejected here.
	Registry *rule.Registry
}

// Scan reads every comment trivia attached to tokens and returns the commands
// in source order. Malformed commands are dropped and reported.
// Only trivia is inspected, so string literals and code can never hold a command.
func Scan(tokens []token.Token, file *source.File, opts Options) ([]Command, []diag.Diagnostic) {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	s := scanner{file: file, prefix: prefix + ":", reg: opts.Registry}
	for _, tok := range tokens {
		for _, tv := range tok.Leading {
			if tv.IsComment() {
				s.comment(tv)
			}
		}
	}
	slices.SortStableFunc(s.cmds, func(a, b Command) int {
		switch {
		case a.Pos < b.Pos:
			return -1
		case a.Pos > b.Pos:
			return 1
		}
		return 0
	})
	return s.cmds, s.diags
}

type scanner struct {
	file   *source.File
	prefix string
	reg    *rule.Registry
	cmds   []Command
	diags  []diag.Diagnostic
}

// comment handles one comment; every line of a block comment may hold a command.
func (s *scanner) comment(tv token.Trivia) {
	body := tv.Body()
	base := tv.Span.Start + tv.BodyOffset()
	for lineOff := 0; lineOff <= len(body); {
		end := strings.IndexByte(body[lineOff:], '\n')
		if end < 0 {
			end = len(body)
		} else {
			end += lineOff
		}
		s.line(body[lineOff:end], base+s.conv(lineOff))
		lineOff = end + 1
	}
}

func (s *scanner) line(text string, base uint32) {
	for from := 0; from < len(text); {
		i := strings.Index(text[from:], s.prefix)
		if i < 0 {
			return
		}
		i += from
		// "mysglint:" is not a command
		if i > 0 && isWordByte(text[i-1]) {
			from = i + len(s.prefix)
			continue
		}
		// a second prefix on the same line starts a new command
		next := strings.Index(text[i+len(s.prefix):], s.prefix)
		stop := len(text)
		if next >= 0 {
			stop = i + len(s.prefix) + next
		}
		s.parse(text[i:stop], base+s.conv(i))
		from = stop
	}
}

func (s *scanner) parse(text string, pos uint32) {
	rest := text[len(s.prefix):]
	head, args, _ := strings.Cut(rest, " ")
	if tab := strings.IndexByte(head, '\t'); tab >= 0 {
		head, args = head[:tab], head[tab+1:]+" "+args
	}
	actionText, modText, hasMod := strings.Cut(head, ":")
	headSpan := source.Span{File: s.file.ID, Start: pos, End: pos + s.conv(len(s.prefix)+len(head))}

	cmd := Command{Pos: pos, Line: s.file.LineOf(pos)}
	switch actionText {
	case "disable":
		cmd.Action = Disable
	case "enable":
		cmd.Action = Enable
	case "":
		s.report(diag.SevWarning, diag.AnnMissingAction, headSpan, "command is missing 'enable' or 'disable'")
		return
	default:
		s.report(diag.SevWarning, diag.AnnUnknownAction, headSpan,
			fmt.Sprintf("unknown command action %q, expected 'enable' or 'disable'", actionText))
		return
	}
	if hasMod {
		switch modText {
		case "previous":
			cmd.Modifier = ModPrevious
		case "this":
			cmd.Modifier = ModThis
		case "next":
			cmd.Modifier = ModNext
		default:
			s.report(diag.SevWarning, diag.AnnUnknownModifier, headSpan,
				fmt.Sprintf("unknown command modifier %q, expected 'previous', 'this' or 'next'", modText))
			return
		}
	}

	idsText := args
	if cut := strings.Index(" "+args, trailingDelimiter); cut >= 0 {
		idsText = args[:max(cut-1, 0)]
		cmd.Trailing = strings.TrimSpace(args[min(cut-1+len(trailingDelimiter), len(args)):])
	}
	argsBase := headSpan.End
	if args != "" {
		argsBase++
	}

	end := headSpan.End
	seen := make(map[rule.ID]bool)
	for _, f := range fields(idsText) {
		id := rule.ID(f.text)
		end = argsBase + s.conv(f.end)
		if seen[id] {
			continue
		}
		seen[id] = true
		cmd.Targets = append(cmd.Targets, id)
		if s.reg.IsAlias(id) {
			canon, _ := s.reg.Canonical(id)
			sp := source.Span{File: s.file.ID, Start: argsBase + s.conv(f.start), End: end}
			d := diag.New(diag.SevInfo, diag.AnnDeprecatedAlias, sp,
				fmt.Sprintf("%q is deprecated, use %q", id, canon)).
				WithFix("use "+string(canon), diag.FixEdit{Span: sp, NewText: string(canon)})
			s.diags = append(s.diags, d)
		}
	}
	cmd.Span = source.Span{File: s.file.ID, Start: pos, End: end}

	if len(cmd.Targets) == 0 {
		s.report(diag.SevWarning, diag.AnnNoIdentifiers, cmd.Span, "command names no rule identifiers")
		return
	}
	if cmd.HasWildcard() && len(cmd.Targets) > 1 {
		s.report(diag.SevInfo, diag.AnnWildcardWithNames, cmd.Span,
			"'all' already covers every rule; other identifiers are redundant")
	}
	s.cmds = append(s.cmds, cmd)
}

func (s *scanner) report(sev diag.Severity, code diag.Code, sp source.Span, msg string) {
	s.diags = append(s.diags, diag.New(sev, code, sp, msg))
}

func (s *scanner) conv(n int) uint32 {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("comment offset overflow: %w", err))
	}
	return v
}

type field struct {
	text       string
	start, end int
}

// fields splits on whitespace and commas. A closing "*/" left by a
// single-line block comment is ignored.
func fields(s string) []field {
	var out []field
	start := -1
	flush := func(i int) {
		if start >= 0 {
			if t := s[start:i]; t != "*/" {
				out = append(out, field{text: t, start: start, end: i})
			}
			start = -1
		}
	}
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', ',', '\r':
			flush(i)
		default:
			if start < 0 {
				start = i
			}
		}
	}
	flush(len(s))
	return out
}

func isWordByte(b byte) bool {
	return b == '_' || b == '-' || (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

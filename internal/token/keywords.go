package token

import "strings"

// keywords is derived from the Kw* names: KwLet spells "let".
var keywords = func() map[string]Kind {
	m := map[string]Kind{"nothing": NothingLit}
	for k := KwFn; k <= KwEnum; k++ {
		m[strings.ToLower(strings.TrimPrefix(k.String(), "Kw"))] = k
	}
	return m
}()

// LookupKeyword reports the keyword kind for ident.
// Keywords are case-sensitive; only lowercase spellings match.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}

package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	// Ident represents an identifier token.
	Ident

	KwFn       // fn
	KwLet      // let
	KwConst    // const
	KwMut      // mut
	KwOwn      // own
	KwIf       // if
	KwElse     // else
	KwWhile    // while
	KwFor      // for
	KwIn       // in
	KwBreak    // break
	KwContinue // continue
	KwReturn   // return
	KwImport   // import
	KwAs       // as
	KwType     // type
	KwContract // contract
	KwTag      // tag
	KwExtern   // extern
	KwPub      // pub
	KwAsync    // async
	KwAwait    // await
	KwCompare  // compare
	KwSpawn    // spawn
	KwTrue     // true
	KwFalse    // false
	KwMacro    // macro
	KwPragma   // pragma
	KwIs       // is
	KwEnum     // enum

	// NothingLit represents the nothing literal token.
	NothingLit
	// IntLit represents the integer literal token.
	IntLit
	// FloatLit represents the float literal token.
	FloatLit
	// StringLit represents the string literal token.
	StringLit
	// FStringLit represents the formatted string literal token (f"...").
	FStringLit

	// Punct covers every operator and punctuation token.
	Punct
)

var kindNames = [...]string{
	Invalid:    "Invalid",
	EOF:        "EOF",
	Ident:      "Ident",
	KwFn:       "KwFn",
	KwLet:      "KwLet",
	KwConst:    "KwConst",
	KwMut:      "KwMut",
	KwOwn:      "KwOwn",
	KwIf:       "KwIf",
	KwElse:     "KwElse",
	KwWhile:    "KwWhile",
	KwFor:      "KwFor",
	KwIn:       "KwIn",
	KwBreak:    "KwBreak",
	KwContinue: "KwContinue",
	KwReturn:   "KwReturn",
	KwImport:   "KwImport",
	KwAs:       "KwAs",
	KwType:     "KwType",
	KwContract: "KwContract",
	KwTag:      "KwTag",
	KwExtern:   "KwExtern",
	KwPub:      "KwPub",
	KwAsync:    "KwAsync",
	KwAwait:    "KwAwait",
	KwCompare:  "KwCompare",
	KwSpawn:    "KwSpawn",
	KwTrue:     "KwTrue",
	KwFalse:    "KwFalse",
	KwMacro:    "KwMacro",
	KwPragma:   "KwPragma",
	KwIs:       "KwIs",
	KwEnum:     "KwEnum",
	NothingLit: "NothingLit",
	IntLit:     "IntLit",
	FloatLit:   "FloatLit",
	StringLit:  "StringLit",
	FStringLit: "FStringLit",
	Punct:      "Punct",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Kind(?)"
}

package driver

import (
	"sglint/internal/annotate"
	"sglint/internal/diag"
	"sglint/internal/lexer"
	"sglint/internal/source"
	"sglint/internal/token"
)

type TokenizeResult struct {
	FileSet  *source.FileSet
	File     *source.File
	Tokens   []token.Token
	Commands []annotate.Command
	Bag      *diag.Bag
}

// Tokenize lexes one file and scans its suppression commands without
// running any rule. It backs the `tokens` debugging command.
func Tokenize(path, prefix string, maxDiagnostics int) (*TokenizeResult, error) {
	fs := source.NewFileSet()
	fileID, err := fs.Load(path)
	if err != nil {
		return nil, err
	}
	file := fs.Get(fileID)

	bag := diag.NewBag(maxDiagnostics)
	tokens := lexer.Tokenize(file, lexer.Options{Reporter: diag.BagReporter{Bag: bag}})

	cmds, diags := annotate.Scan(tokens, file, annotate.Options{Prefix: prefix})
	for _, d := range diags {
		bag.Add(d)
	}
	bag.Sort()

	return &TokenizeResult{
		FileSet:  fs,
		File:     file,
		Tokens:   tokens,
		Commands: cmds,
		Bag:      bag,
	}, nil
}

package fuzztests

import (
	"testing"
)

const maxFuzzInput = 1 << 16 // 64 KiB

var seeds = []string{
	"",
	"let a = 1;\n",
	"// sglint:disable todo\n// TODO x\n// sglint:enable todo\n",
	"// sglint:disable:next line_length\nlet abc = 1;\n",
	"let x = 1; // sglint:disable:this identifier_name\n",
	"// sglint:disable:previous todo - trailing words\n",
	"/* sglint:disable all\n   sglint:enable todo */\n// TODO y\n",
	"// sglint:disable variable_name, todo\n// sglint:enable all\n",
	"// sglint:disable\n// sglint:wat todo\n// sglint:disable:later todo\n",
	"// sglint:disable unknown_rule all\n\"// sglint:disable todo\"\n",
	"// sglint:enable todo\n// sglint:disable todo\n// sglint:disable todo\n",
	"let n = 1000000;\n\n\n// FIXME \t \n",
}

func addCorpusSeeds(f *testing.F) {
	for _, s := range seeds {
		f.Add([]byte(s))
	}
}

// clampInput copies input and caps it at maxFuzzInput.
func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		input = input[:maxFuzzInput]
	}
	return append([]byte(nil), input...)
}

package annotate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sglint/internal/annotate"
)

func TestExpandModifiers(t *testing.T) {
	src := "line one\n" + // 0..8
		"line two // sglint:disable:this a\n" + // starts at 9
		"line three\n" // starts at 43
	file, cmds, _ := scan(t, src, annotate.Options{})
	require.Len(t, cmds, 1)

	dirs := annotate.Expand(cmds, file)
	require.Len(t, dirs, 2)
	assert.Equal(t, annotate.Directive{Pos: 9, Action: annotate.Disable, Targets: cmds[0].Targets, Origin: 0}, dirs[0])
	assert.Equal(t, annotate.Directive{Pos: 43, Action: annotate.Enable, Targets: cmds[0].Targets, Origin: 0}, dirs[1])
}

func TestExpandNextAndPrevious(t *testing.T) {
	src := "aaa\n// sglint:disable:previous x\n// sglint:disable:next y\nbbb\nccc\n"
	file, cmds, _ := scan(t, src, annotate.Options{})
	require.Len(t, cmds, 2)
	dirs := annotate.Expand(cmds, file)
	require.Len(t, dirs, 4)

	// previous → line 1 [0,4)
	assert.Equal(t, uint32(0), dirs[0].Pos)
	assert.Equal(t, annotate.Disable, dirs[0].Action)
	assert.Equal(t, 0, dirs[0].Origin)
	assert.Equal(t, uint32(4), dirs[1].Pos)
	assert.Equal(t, annotate.Enable, dirs[1].Action)

	// next → line 4
	line4 := file.LineStart(4)
	assert.Equal(t, line4, dirs[2].Pos)
	assert.Equal(t, 1, dirs[2].Origin)
	assert.Equal(t, file.LineStart(5), dirs[3].Pos)
}

func TestExpandEnableThisInvertsAction(t *testing.T) {
	src := "// sglint:disable a\nx // sglint:enable:this a\ny\n"
	file, cmds, _ := scan(t, src, annotate.Options{})
	dirs := annotate.Expand(cmds, file)
	require.Len(t, dirs, 3)
	assert.Equal(t, annotate.Disable, dirs[0].Action)
	assert.Equal(t, annotate.Enable, dirs[1].Action)
	assert.Equal(t, file.LineStart(2), dirs[1].Pos)
	assert.Equal(t, annotate.Disable, dirs[2].Action)
	assert.Equal(t, file.LineStart(3), dirs[2].Pos)
}

func TestExpandEdgeLines(t *testing.T) {
	src := "// sglint:disable:previous a\nx // sglint:disable:next b"
	file, cmds, _ := scan(t, src, annotate.Options{})
	dirs := annotate.Expand(cmds, file)
	require.Len(t, dirs, 4)
	assert.Equal(t, dirs[0].Pos, dirs[1].Pos, "previous on the first line is empty")
	assert.Equal(t, file.Size(), dirs[2].Pos, "next on the last line starts at EOF")
	assert.Equal(t, file.Size(), dirs[3].Pos)
}

package surface

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) *Grammar {
	t.Helper()
	p := NewParser()
	require.NoError(t, p.Parse("test.chm", src))
	return p.Grammar()
}

func TestParseRefAndString(t *testing.T) {
	g := parse(t, `struct Root { greeting: string = "hi"; next: Root; }`)
	require.Len(t, g.Structs, 1)
	decl := g.Structs[0]
	require.Equal(t, "Root", decl.Name)
	require.Len(t, decl.Fields, 2)

	sb, ok := decl.Fields[0].Body.(*StringBody)
	require.True(t, ok)
	require.Equal(t, []byte("hi"), sb.Value)

	rb, ok := decl.Fields[1].Body.(*RefBody)
	require.True(t, ok)
	require.Equal(t, "Root", rb.Name)
}

func TestParseCharList(t *testing.T) {
	g := parse(t, `struct Root { c: char = 'a', 99..101, "xy"; }`)
	cb := g.Structs[0].Fields[0].Body.(*CharBody)
	require.Equal(t, []CharItem{
		{Lo: 'a', Hi: 'a' + 1},
		{Lo: 99, Hi: 101},
		{Lo: 'x', Hi: 'x' + 1},
		{Lo: 'y', Hi: 'y' + 1},
	}, stripRanges(cb.Items))
}

func stripRanges(items []CharItem) []CharItem {
	out := make([]CharItem, len(items))
	for i, it := range items {
		out[i] = CharItem{Lo: it.Lo, Hi: it.Hi}
	}
	return out
}

func TestParseOptionalAndRepeats(t *testing.T) {
	g := parse(t, `struct Root {
		maybe: optional inner: string = "x";
		many: repeats 0..4 x: char = 'x';
		fixed: repeats 3 y: char = 'y';
	}`)
	fields := g.Structs[0].Fields
	require.Len(t, fields, 3)

	opt := fields[0].Body.(*OptionalBody)
	require.Equal(t, "inner", opt.Inner.Name)

	rep := fields[1].Body.(*RepeatsBody)
	require.Equal(t, 0, rep.Lo)
	require.Equal(t, 4, rep.Hi)

	fixed := fields[2].Body.(*RepeatsBody)
	require.Equal(t, 3, fixed.Lo)
	require.Equal(t, 4, fixed.Hi)
}

func TestParseStructAndOneof(t *testing.T) {
	g := parse(t, `struct Root {
		pair: struct {
			a: char = 'a';
			b: char = 'b';
		}
		choice: oneof {
			x: char = 'x';
			y: char = 'y';
		}
	}`)
	fields := g.Structs[0].Fields
	require.Len(t, fields, 2)

	sb := fields[0].Body.(*StructBody)
	require.Len(t, sb.Fields, 2)

	ob := fields[1].Body.(*OneofBody)
	require.Len(t, ob.Branches, 2)
}

func TestParseRejectsComment(t *testing.T) {
	p := NewParser()
	err := p.Parse("test.chm", "# comment\nstruct Root { }")
	require.Error(t, err)
}

func TestParseMergesMultipleFiles(t *testing.T) {
	p := NewParser()
	require.NoError(t, p.Parse("a.chm", `struct A { x: char = 'a'; }`))
	require.NoError(t, p.Parse("b.chm", `struct B { a: A; }`))
	require.Len(t, p.Grammar().Structs, 2)
	require.Equal(t, "A", p.Grammar().Structs[0].Name)
	require.Equal(t, "B", p.Grammar().Structs[1].Name)
}

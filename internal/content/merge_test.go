package content

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripLayoutClasses(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "min-h-screen removed", input: "min-h-screen p-4 flex", want: "p-4 flex"},
		{name: "all layout prefixes", input: "min-h-full min-w-0 h-screen w-screen-lg text-sm", want: "text-sm"},
		{name: "similar names kept", input: "h-full w-1/2 max-h-screen", want: "h-full w-1/2 max-h-screen"},
		{name: "empty", input: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripLayoutClasses(tt.input))
		})
	}
}

func TestStripMinHeight(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "middle declaration", input: "color: red; min-height: 100vh; margin: 0", want: "color: red; margin: 0"},
		{name: "only declaration", input: "min-height:100vh", want: ""},
		{name: "untouched", input: "color: blue; height: 10px", want: "color: blue; height: 10px"},
		{name: "max-height kept", input: "max-height: 10px;min-height: 2px", want: "max-height: 10px"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripMinHeight(tt.input))
		})
	}
}

func TestSplitForMerge(t *testing.T) {
	doc := `<!DOCTYPE html><html><head><title>A</title><style>body { min-height: 100vh; color: red }</style></head>` +
		`<body><div class="min-h-screen p-4 flex" style="color: red; min-height: 100vh; margin: 0"><p class="lead">Hello</p></div></body></html>`

	parts, err := SplitForMerge(doc)
	require.NoError(t, err)

	assert.Equal(t, `<title>A</title><style>body { ; color: red }</style>`, parts.Head)
	assert.Equal(t,
		`<div style="all: unset; display: block;"><div class="p-4 flex" style="color: red; margin: 0"><p class="lead">Hello</p></div></div>`,
		parts.Body)
}

func TestSplitForMerge_Fragment(t *testing.T) {
	parts, err := SplitForMerge(`<p>plain</p>`)
	require.NoError(t, err)
	assert.Equal(t, "", parts.Head)
	assert.Equal(t, `<div style="all: unset; display: block;"><p>plain</p></div>`, parts.Body)
}

func TestMergeDocuments(t *testing.T) {
	merged, err := MergeDocuments([]string{
		`<html><head><style>h1{color:red}</style></head><body><h1>One</h1></body></html>`,
		`<html><head><meta charset="utf-8"/></head><body><h1 class="h-screen">Two</h1></body></html>`,
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(merged, "<!DOCTYPE html>\n<html>\n<head>\n"))
	assert.Contains(t, merged, "<style>h1{color:red}</style>\n<meta charset=\"utf-8\"/>")
	assert.Contains(t, merged,
		`<div style="all: unset; display: block;"><h1>One</h1></div>`+
			"\n\n<br/>\n\n"+
			`<div style="all: unset; display: block;"><h1 class="">Two</h1></div>`)
	assert.True(t, strings.HasSuffix(merged, "</body>\n</html>"))
	assert.Less(t, strings.Index(merged, "One"), strings.Index(merged, "Two"))
}

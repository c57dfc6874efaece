package sanitize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTMLStripsScriptAndColor(t *testing.T) {
	out := HTML(`<p style="color:red">hi<script>alert(1)</script></p>`)

	assert.Contains(t, out.String(), "hi")
	assert.NotContains(t, strings.ToLower(out.String()), "<script")
	assert.NotContains(t, out.String(), "color")
	assert.Equal(t, SafeHTML("<p>hi</p>"), out)
}

func TestHTML(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected SafeHTML
	}{
		{
			name:     "plain text is escaped",
			input:    "a < b & c",
			expected: "a &lt; b &amp; c",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "keeps other declarations",
			input:    `<div style="color: red; margin: 0">x</div>`,
			expected: `<div style="margin: 0">x</div>`,
		},
		{
			name:     "property names are case insensitive",
			input:    `<span style="Background-Color: blue; font-weight: bold">x</span>`,
			expected: `<span style="font-weight: bold">x</span>`,
		},
		{
			name:     "border-color is not a color declaration",
			input:    `<span style="border-color: red">x</span>`,
			expected: `<span style="border-color: red">x</span>`,
		},
		{
			name:     "denied elements at any depth",
			input:    `<div><section><iframe src="https://x"></iframe><b>ok</b><object></object><embed src="y"></section></div>`,
			expected: `<div><section><b>ok</b></section></div>`,
		},
		{
			name:     "top level denied elements",
			input:    `<style>p{color:red}</style><link rel="stylesheet" href="x.css"><meta charset="utf-8">hello<script>x()</script>`,
			expected: `hello`,
		},
		{
			name:     "unclosed tags are closed",
			input:    `<p><b>unclosed`,
			expected: `<p><b>unclosed</b></p>`,
		},
		{
			name:     "event handler attributes pass through",
			input:    `<img src="a.png" onerror="steal()">`,
			expected: `<img src="a.png" onerror="steal()"/>`,
		},
		{
			name:     "links are kept",
			input:    `<a href="https://example.com" style="color:#fff">site</a>`,
			expected: `<a href="https://example.com">site</a>`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, HTML(tc.input))
		})
	}
}

func TestHTMLIsIdempotent(t *testing.T) {
	inputs := []string{
		`<p style="color:red">hi<script>alert(1)</script></p>`,
		`<table><a>x</a><tr><td>1</td></tr></table>`,
		`<p><div>misnested</p></div>`,
		`<b><i>overlap</b></i>`,
		`<<>>&&;;"'`,
		"<!-- comment --> text <!-- -- -->",
		"\x00nul\rcr\x0cff",
		`<div style=";;color:;  ;background-color:red;">x</div>`,
		`<svg><script>alert(1)</script><style>a{}</style></svg>`,
		`<math><mi>x</mi></math><noscript><p>n</p></noscript>`,
		`<a href="x"><a href="y">nested</a></a>`,
		`<form><form>double</form></form>`,
		`<select><option>a<option>b</select>`,
		`<textarea><b>raw</b></textarea><title>t</title>`,
		`<plaintext><b>everything`,
	}

	for _, input := range inputs {
		once := HTML(input)
		twice := HTML(once.String())
		assert.Equal(t, once, twice, "input %q", input)
	}
}

func TestHTMLDoesNotShareState(t *testing.T) {
	first := HTML(`<div style="color:red"><script>a</script>one</div>`)
	second := HTML(`<div>two</div>`)

	assert.Equal(t, SafeHTML(`<div>one</div>`), first)
	assert.Equal(t, SafeHTML(`<div>two</div>`), second)
}

func TestTextFallbackIsStable(t *testing.T) {
	fallback := textFallback("x < y\x00 \"q\"\r\n")
	out, ok := pass(fallback.String())
	assert.True(t, ok)
	assert.Equal(t, fallback.String(), out)
}

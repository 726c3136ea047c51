package htmltomarkdown_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/doccache"
	"github.com/fwojciec/doccache/htmltomarkdown"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConverter_Convert(t *testing.T) {
	t.Parallel()

	t.Run("converts basic paragraph", func(t *testing.T) {
		t.Parallel()

		md, err := htmltomarkdown.NewConverter().Convert(`<p>Hello, world!</p>`)

		require.NoError(t, err)
		assert.Contains(t, md, "Hello, world!")
	})

	t.Run("converts headings", func(t *testing.T) {
		t.Parallel()

		md, err := htmltomarkdown.NewConverter().Convert(`<h1>Title</h1><h2>Install</h2>`)

		require.NoError(t, err)
		assert.Contains(t, md, "# Title")
		assert.Contains(t, md, "## Install")
	})

	t.Run("converts links", func(t *testing.T) {
		t.Parallel()

		md, err := htmltomarkdown.NewConverter().Convert(
			`<p>See <a href="https://example.com/docs">the docs</a>.</p>`)

		require.NoError(t, err)
		assert.Contains(t, md, "[the docs](https://example.com/docs)")
	})

	t.Run("converts code blocks", func(t *testing.T) {
		t.Parallel()

		md, err := htmltomarkdown.NewConverter().Convert(
			`<pre><code>go install example.com/tool@latest</code></pre>`)

		require.NoError(t, err)
		assert.Contains(t, md, "go install example.com/tool@latest")
		assert.Contains(t, md, "```")
	})

	t.Run("converts tables", func(t *testing.T) {
		t.Parallel()

		html := `<table>
			<tr><th>Flag</th><th>Default</th></tr>
			<tr><td>--verbose</td><td>false</td></tr>
		</table>`

		md, err := htmltomarkdown.NewConverter().Convert(html)

		require.NoError(t, err)
		assert.Contains(t, md, "| Flag")
		assert.Contains(t, md, "| --verbose")
	})

	t.Run("normalizes trailing newlines", func(t *testing.T) {
		t.Parallel()

		md, err := htmltomarkdown.NewConverter().Convert(`<p>one</p><p>two</p>`)

		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(md, "\n"))
		assert.False(t, strings.HasSuffix(md, "\n\n"))
	})

	t.Run("rejects empty input", func(t *testing.T) {
		t.Parallel()

		_, err := htmltomarkdown.NewConverter().Convert("   ")

		require.Error(t, err)
		assert.Equal(t, doccache.EINVALID, doccache.ErrorCode(err))
	})
}

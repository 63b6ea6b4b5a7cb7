package location

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicAndPathRoundTrip(t *testing.T) {
	u := Public("https://cdn.example.com/storage/v1/object/public/", "papers", "originals/abc_maths paper.pdf")
	assert.Equal(t, "https://cdn.example.com/storage/v1/object/public/papers/originals/abc_maths%20paper.pdf", u)

	path, err := Path(u, "https://cdn.example.com/storage/v1/object/public", "papers")
	require.NoError(t, err)
	assert.Equal(t, "originals/abc_maths paper.pdf", path)
}

func TestPathRejectsForeignOrEmptyURLs(t *testing.T) {
	for _, u := range []string{
		"",
		"https://cdn.example.com/other/solutions/x.md",
		"https://cdn.example.com/papers/",
		"not a url",
	} {
		_, err := Path(u, "https://cdn.example.com", "papers")
		assert.ErrorIs(t, err, ErrInvalidURL, u)
	}
}

func TestPathStripsQuery(t *testing.T) {
	path, err := Path("http://localhost:9000/papers/solutions/j1_solution.md?v=2", "http://localhost:9000", "papers")
	require.NoError(t, err)
	assert.Equal(t, "solutions/j1_solution.md", path)
}

func TestPathWhenBaseContainsBucketName(t *testing.T) {
	base := "https://cdn.example.com/papers"
	u := Public(base, "papers", "solutions/j1_solution.md")
	assert.Equal(t, "https://cdn.example.com/papers/papers/solutions/j1_solution.md", u)

	path, err := Path(u, base, "papers")
	require.NoError(t, err)
	assert.Equal(t, "solutions/j1_solution.md", path)

	// an object whose own path repeats the bucket name
	u = Public("http://localhost:9000", "papers", "papers/x.md")
	path, err = Path(u, "http://localhost:9000/", "papers")
	require.NoError(t, err)
	assert.Equal(t, "papers/x.md", path)
}

func TestPathFallsBackToBucketSegment(t *testing.T) {
	// a URL issued before the public base changed
	path, err := Path("http://old-host:9000/papers/originals/a.png", "https://cdn.example.com", "papers")
	require.NoError(t, err)
	assert.Equal(t, "originals/a.png", path)
}

package webpage_test

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/enclavekit/pkg/webpage"
)

const prefix = "/enclave/acme"

const pageTemplate = `<!doctype html>
<head>
<link rel="preload" as="script" href="/enclave/acme/resources/dist/js/bundle.src.min.js">
<link rel="stylesheet" href="/enclave/acme/resources/dist/css/bundle.css">
</head>
<body>
<script src="/enclave/acme/resources/dist/js/bundle.src.min.js"></script>
</body>`

func writePage(t *testing.T, content string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "index.html")
	require.NoError(t, os.WriteFile(file, []byte(content), 0o644))
	return file
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestRender_CacheBusting(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	r := webpage.NewRenderer(writePage(t, pageTemplate), prefix, false, webpage.WithClock(fixedClock(at)))

	rec := httptest.NewRecorder()
	require.NoError(t, r.Render(rec))

	body := rec.Body.String()
	assert.Contains(t, body, `<link rel="preload" as="script" href="/enclave/acme/resources/dist/js/bundle.src.min.js?v=20260314150926">`)
	assert.Contains(t, body, `<script src="/enclave/acme/resources/dist/js/bundle.src.min.js?v=20260314150926"></script>`)
	assert.Contains(t, body, `<link rel="stylesheet" href="/enclave/acme/resources/dist/css/bundle.css?v=20260314150926">`)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestRender_MissingReferencesAreNoOp(t *testing.T) {
	t.Parallel()

	page := "<html><body>no asset tags here</body></html>"
	r := webpage.NewRenderer(writePage(t, page), prefix, false)

	rec := httptest.NewRecorder()
	require.NoError(t, r.Render(rec))
	assert.Equal(t, page, rec.Body.String())
}

func TestRender_DevelopmentRereadsFromDisk(t *testing.T) {
	t.Parallel()

	file := writePage(t, pageTemplate)
	r := webpage.NewRenderer(file, prefix, false)

	rec := httptest.NewRecorder()
	require.NoError(t, r.Render(rec))
	assert.Contains(t, rec.Body.String(), "<script")

	require.NoError(t, os.WriteFile(file, []byte("<html>edited</html>"), 0o644))

	rec = httptest.NewRecorder()
	require.NoError(t, r.Render(rec))
	assert.Equal(t, "<html>edited</html>", rec.Body.String())
}

func TestRender_ProductionCachesFirstRead(t *testing.T) {
	t.Parallel()

	file := writePage(t, pageTemplate)
	r := webpage.NewRenderer(file, prefix, true)

	rec := httptest.NewRecorder()
	require.NoError(t, r.Render(rec))

	// Edits after the first read are not picked up in production.
	require.NoError(t, os.WriteFile(file, []byte("<html>edited</html>"), 0o644))

	rec = httptest.NewRecorder()
	require.NoError(t, r.Render(rec))
	assert.Contains(t, rec.Body.String(), "<script")
}

func TestRender_VersionTracksClock(t *testing.T) {
	t.Parallel()

	current := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r := webpage.NewRenderer(writePage(t, pageTemplate), prefix, false,
		webpage.WithClock(func() time.Time { return current }))

	rec := httptest.NewRecorder()
	require.NoError(t, r.Render(rec))
	first := rec.Body.String()

	current = current.Add(time.Second)

	rec = httptest.NewRecorder()
	require.NoError(t, r.Render(rec))
	second := rec.Body.String()

	assert.NotEqual(t, first, second)
	assert.Contains(t, first, "?v=20260101000000")
	assert.Contains(t, second, "?v=20260101000001")
}

func TestRender_MissingFile(t *testing.T) {
	t.Parallel()

	r := webpage.NewRenderer(filepath.Join(t.TempDir(), "absent.html"), prefix, false)

	rec := httptest.NewRecorder()
	err := r.Render(rec)
	assert.ErrorIs(t, err, webpage.ErrReadPage)
	assert.Equal(t, 500, rec.Code)
}

package pdfstamp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/signintech/gopdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// 1x1 transparent PNG.
const tinyPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8z8BQDwAEhQGAhKmMIQAAAABJRU5ErkJggg=="

func newTestStamper(t *testing.T) (*Stamper, string) {
	t.Helper()
	root := t.TempDir()
	return NewStamper(root, zap.NewNop().Sugar()), root
}

func writeTestPDF(t *testing.T, dir string, pages int) string {
	t.Helper()
	doc := &gopdf.GoPdf{}
	doc.Start(gopdf.Config{Unit: gopdf.UnitPT, PageSize: *gopdf.PageSizeA4})
	for i := 0; i < pages; i++ {
		doc.AddPage()
	}
	path := filepath.Join(dir, "source.pdf")
	require.NoError(t, doc.WritePdf(path))
	return path
}

// countPages reads a stamped output with an independent parser.
func countPages(t *testing.T, path string) int {
	t.Helper()
	f, reader, err := pdf.Open(path)
	require.NoError(t, err)
	defer f.Close()
	return reader.NumPage()
}

func TestSignWithBase64StampsDocument(t *testing.T) {
	s, root := newTestStamper(t)
	src := writeTestPDF(t, root, 3)

	out, err := s.SignWithBase64(src, tinyPNG, Placement{Page: 1, X: 50, Y: 60, Width: 120, Height: 40})
	require.NoError(t, err)

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
	assert.Equal(t, filepath.Join(root, "signed_documents"), filepath.Dir(out))

	// The source must stay untouched and every page must survive.
	_, err = os.Stat(src)
	require.NoError(t, err)
	assert.Equal(t, 3, countPages(t, out))
}

func TestSignWithBase64AcceptsDataURL(t *testing.T) {
	s, root := newTestStamper(t)
	src := writeTestPDF(t, root, 1)

	_, err := s.SignWithBase64(src, "data:image/png;base64,"+tinyPNG, Placement{Page: 0, X: 10, Y: 10, Width: 50, Height: 20})
	assert.NoError(t, err)
}

func TestOutOfRangePageFallsBackToFirst(t *testing.T) {
	s, root := newTestStamper(t)
	src := writeTestPDF(t, root, 2)

	out, err := s.SignWithBase64(src, tinyPNG, Placement{Page: 9, X: 10, Y: 10, Width: 50, Height: 20})
	require.NoError(t, err)
	assert.Equal(t, 2, countPages(t, out))
}

func TestRejectsInvalidBase64(t *testing.T) {
	s, root := newTestStamper(t)
	src := writeTestPDF(t, root, 1)

	_, err := s.SignWithBase64(src, "%%% not base64 %%%", Placement{Page: 0, X: 0, Y: 0, Width: 50, Height: 20})
	assert.Error(t, err)
}

func TestRejectsMissingSource(t *testing.T) {
	s, root := newTestStamper(t)

	_, err := s.SignWithBase64(filepath.Join(root, "nope.pdf"), tinyPNG, Placement{Page: 0, X: 0, Y: 0, Width: 50, Height: 20})
	assert.Error(t, err)
}

func TestRejectsCorruptPDF(t *testing.T) {
	s, root := newTestStamper(t)
	src := filepath.Join(root, "broken.pdf")
	require.NoError(t, os.WriteFile(src, []byte("%PDF-1.4 but not really"), 0o644))

	_, err := s.SignWithBase64(src, tinyPNG, Placement{Page: 0, X: 0, Y: 0, Width: 50, Height: 20})
	assert.Error(t, err)
}

// Blank documents carry empty resource dictionaries; measuring them must
// work since they are valid stamping input.
func TestPageSizesReadsMediaBox(t *testing.T) {
	s, root := newTestStamper(t)
	src := writeTestPDF(t, root, 1)

	sizes, err := s.pageSizes(src)
	require.NoError(t, err)
	require.Len(t, sizes, 1)
	assert.InDelta(t, gopdf.PageSizeA4.W, sizes[0].w, 1)
	assert.InDelta(t, gopdf.PageSizeA4.H, sizes[0].h, 1)
}

func TestPageSizesCountsEveryPage(t *testing.T) {
	s, root := newTestStamper(t)
	src := writeTestPDF(t, root, 4)

	sizes, err := s.pageSizes(src)
	require.NoError(t, err)
	assert.Len(t, sizes, 4)
}

// Package pdfstamp renders a signature image onto one page of an existing
// PDF, producing a new file and leaving the source untouched.
package pdfstamp

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/phpdave11/gofpdi"
	"github.com/signintech/gopdf"
	"go.uber.org/zap"

	"github.com/Souley97/wolof-sign-back/internal/apperr"
)

// US-Letter in points, used when a page's MediaBox cannot be resolved.
const (
	defaultPageWidth  = 612.0
	defaultPageHeight = 792.0
)

// Placement positions the signature image. Coordinates use a top-left
// origin, matching what the frontend sends.
type Placement struct {
	Page   int
	X      float64
	Y      float64
	Width  float64
	Height float64
}

type Stamper struct {
	mediaRoot string
	lg        *zap.SugaredLogger
}

func NewStamper(mediaRoot string, lg *zap.SugaredLogger) *Stamper {
	return &Stamper{mediaRoot: mediaRoot, lg: lg}
}

// SignWithBase64 decodes a base64 (optionally data-URL) PNG, stamps it onto
// pdfPath and returns the path of the signed copy. The decoded image
// snapshot is temporary and removed before returning.
func (s *Stamper) SignWithBase64(pdfPath, signatureData string, p Placement) (string, error) {
	imagePath, err := s.writeSignatureImage(signatureData)
	if err != nil {
		return "", err
	}
	defer os.Remove(imagePath)

	s.lg.Infow("stamping signature",
		"pdf", filepath.Base(pdfPath), "page", p.Page,
		"x", p.X, "y", p.Y, "width", p.Width, "height", p.Height)

	return s.AddSignature(pdfPath, imagePath, p)
}

// AddSignature copies every page of pdfPath into a new document and draws
// the image from imagePath on the requested page. An out-of-range page
// index falls back to page 0 with a warning rather than failing.
func (s *Stamper) AddSignature(pdfPath, imagePath string, p Placement) (outPath string, err error) {
	// The underlying page importer panics on PDFs it cannot parse.
	defer func() {
		if r := recover(); r != nil {
			err = &apperr.StampingError{Op: "import pages", Cause: fmt.Errorf("%v", r)}
		}
	}()

	sizes, err := s.pageSizes(pdfPath)
	if err != nil {
		return "", err
	}
	if p.Page < 0 || p.Page >= len(sizes) {
		s.lg.Warnw("invalid page index, falling back to first page", "page", p.Page, "pages", len(sizes))
		p.Page = 0
	}

	doc := &gopdf.GoPdf{}
	doc.Start(gopdf.Config{Unit: gopdf.UnitPT, PageSize: gopdf.Rect{W: sizes[0].w, H: sizes[0].h}})

	for i, size := range sizes {
		doc.AddPageWithOption(gopdf.PageOption{PageSize: &gopdf.Rect{W: size.w, H: size.h}})
		tpl := doc.ImportPage(pdfPath, i+1, "/MediaBox")
		doc.UseImportedTemplate(tpl, 0, 0, size.w, size.h)
		if i == p.Page {
			if err := doc.Image(imagePath, p.X, p.Y, &gopdf.Rect{W: p.Width, H: p.Height}); err != nil {
				return "", &apperr.StampingError{Op: "draw signature image", Cause: err}
			}
		}
	}

	outDir := filepath.Join(s.mediaRoot, "signed_documents")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", &apperr.StampingError{Op: "create output directory", Cause: err}
	}
	outPath = filepath.Join(outDir, fmt.Sprintf("signed_%s_%s", uuid.New(), filepath.Base(pdfPath)))
	if err := doc.WritePdf(outPath); err != nil {
		// Never leave a half-written artifact behind.
		os.Remove(outPath)
		return "", &apperr.StampingError{Op: "write signed pdf", Cause: err}
	}
	return outPath, nil
}

type pageSize struct {
	w, h float64
}

// pageSizes resolves the page count and MediaBox of every page using the
// same parser the page importer runs on, so any file that can be stamped
// can also be measured. A page without a usable MediaBox falls back to
// US-Letter; only a file the parser cannot read at all is an error.
func (s *Stamper) pageSizes(pdfPath string) (sizes []pageSize, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &apperr.StampingError{Op: "read pdf", Cause: fmt.Errorf("%v", r)}
		}
	}()

	imp := gofpdi.NewImporter()
	imp.SetSourceFile(pdfPath)
	n := imp.GetNumPages()
	if n < 1 {
		return nil, &apperr.StampingError{Op: "read pdf", Cause: fmt.Errorf("no pages in %s", filepath.Base(pdfPath))}
	}

	boxes := imp.GetPageSizes()
	sizes = make([]pageSize, 0, n)
	for i := 1; i <= n; i++ {
		box, ok := boxes[i]["/MediaBox"]
		if !ok || box["w"] <= 0 || box["h"] <= 0 {
			s.lg.Warnw("page has no usable MediaBox, using US-Letter", "page", i-1)
			sizes = append(sizes, pageSize{w: defaultPageWidth, h: defaultPageHeight})
			continue
		}
		sizes = append(sizes, pageSize{w: box["w"], h: box["h"]})
	}
	return sizes, nil
}

// writeSignatureImage stores the decoded signature under a unique name in
// the media tree and returns its path.
func (s *Stamper) writeSignatureImage(signatureData string) (string, error) {
	if idx := strings.Index(signatureData, ","); idx >= 0 && strings.Contains(signatureData[:idx], "data:image") {
		signatureData = signatureData[idx+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(signatureData))
	if err != nil {
		return "", apperr.Validation("signature image is not valid base64")
	}

	dir := filepath.Join(s.mediaRoot, "signatures")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &apperr.StampingError{Op: "create signatures directory", Cause: err}
	}
	path := filepath.Join(dir, fmt.Sprintf("signature_%s.png", uuid.New()))
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", &apperr.StampingError{Op: "write signature image", Cause: err}
	}
	return path, nil
}

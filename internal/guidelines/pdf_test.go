package guidelines

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writePDF writes a minimal PDF with one page per entry of pages. An empty
// entry becomes a page without a content stream.
func writePDF(t *testing.T, pages ...string) string {
	t.Helper()
	font := 3 + len(pages)
	var objs []string
	kids := ""
	for i := range pages {
		kids += fmt.Sprintf("%d 0 R ", 3+i)
	}
	objs = append(objs,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, len(pages)),
	)
	var streams []string
	for _, text := range pages {
		page := fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 %d 0 R >> >>", font)
		if text != "" {
			page += fmt.Sprintf(" /Contents %d 0 R", font+1+len(streams))
			streams = append(streams, fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text))
		}
		objs = append(objs, page+" >>")
	}
	objs = append(objs, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")
	for _, s := range streams {
		objs = append(objs, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(s), s))
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, o := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, o)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)

	path := filepath.Join(t.TempDir(), "guide.pdf")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestExtractPDFJoinsPagesInOrder(t *testing.T) {
	path := writePDF(t, "page one text", "", "page three text")

	text, err := extractPDF(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "page one text\n\npage three text", text)
}

func TestLoadPDFChunksExtractedText(t *testing.T) {
	path := writePDF(t, "alpha beta gamma", "delta epsilon")

	c, err := Load(context.Background(), path, 3, 1)
	require.NoError(t, err)
	assert.Equal(t, "alpha beta gamma\n\ndelta epsilon", c.FullText)
	assert.Equal(t, []string{"alpha beta gamma", "gamma delta epsilon"}, c.Chunks)
}

func TestExtractPDFHonorsCancellation(t *testing.T) {
	path := writePDF(t, "only page")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := extractPDF(ctx, path)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadPDFWithoutText(t *testing.T) {
	path := writePDF(t, "", "")

	_, err := Load(context.Background(), path, 5, 1)
	assert.ErrorIs(t, err, ErrNoText)
}

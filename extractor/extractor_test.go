package extractor

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"chatiip-backend/storage"
)

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported")
	}
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return p
}

func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return p
}

func TestDetect(t *testing.T) {
	tests := []struct {
		mime, name string
		want       Kind
	}{
		{storage.MimePDF, "", KindPDF},
		{"", "Luat.PDF", KindPDF},
		{storage.MimeDOCX, "x", KindDOCX},
		{"application/octet-stream", "a.docx", KindDOCX},
		{storage.MimeText, "a.txt", KindNone},
		{"", "", KindNone},
	}
	for _, tt := range tests {
		if got := Detect(tt.mime, tt.name); got != tt.want {
			t.Errorf("Detect(%q,%q) = %v, want %v", tt.mime, tt.name, got, tt.want)
		}
	}
}

func TestExtractPDFWithConverter(t *testing.T) {
	dir := t.TempDir()
	// pdftotext -layout <in> <out>
	bin := writeScript(t, dir, "pdftotext", `printf '  \nCHƯƠNG I\nĐiều 1. Phạm vi\n\n' > "$3"`)
	in := writeInput(t, dir, "a.pdf", "%PDF-1.4")

	e := New(WithPDFToText(bin), WithTempDir(dir), WithFallback(false))
	got := e.Extract(context.Background(), in, storage.MimePDF, "a.pdf")
	if got != "CHƯƠNG I\nĐiều 1. Phạm vi" {
		t.Fatalf("unexpected text: %q", got)
	}
	left, _ := filepath.Glob(filepath.Join(dir, "pdf-*.txt"))
	if len(left) != 0 {
		t.Fatalf("temp output not removed: %v", left)
	}
}

func TestExtractDOCXWithConverter(t *testing.T) {
	dir := t.TempDir()
	// pandoc <in> -t plain -o <out>
	bin := writeScript(t, dir, "pandoc", `[ "$2" = "-t" ] && [ "$3" = "plain" ] || exit 3
printf 'Điều 2. Đối tượng' > "$5"`)
	in := writeInput(t, dir, "b.docx", "PK")

	e := New(WithPandoc(bin), WithTempDir(dir), WithFallback(false))
	if got := e.Extract(context.Background(), in, "", "b.docx"); got != "Điều 2. Đối tượng" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestExtractUnsupportedTypeSkipsConverters(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "called")
	bin := writeScript(t, dir, "pdftotext", `touch "`+marker+`"`)
	in := writeInput(t, dir, "c.txt", "Điều 1. plain text")

	e := New(WithPDFToText(bin), WithPandoc(bin), WithTempDir(dir))
	if got := e.Extract(context.Background(), in, storage.MimeText, "c.txt"); got != "" {
		t.Fatalf("expected empty text, got %q", got)
	}
	if _, err := os.Stat(marker); !os.IsNotExist(err) {
		t.Fatalf("converter should not run for unsupported types")
	}
}

func TestExtractConverterFailureDegradesToEmpty(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "d.pdf", "not really a pdf")
	failing := writeScript(t, dir, "pdftotext", `echo boom >&2; exit 1`)

	for name, bin := range map[string]string{
		"non-zero exit":  failing,
		"missing binary": filepath.Join(dir, "does-not-exist"),
	} {
		t.Run(name, func(t *testing.T) {
			e := New(WithPDFToText(bin), WithTempDir(dir))
			if got := e.Extract(context.Background(), in, storage.MimePDF, "d.pdf"); got != "" {
				t.Fatalf("expected empty text, got %q", got)
			}
		})
	}
}

func TestExtractTimesOut(t *testing.T) {
	dir := t.TempDir()
	bin := writeScript(t, dir, "pdftotext", `exec sleep 10`)
	in := writeInput(t, dir, "e.pdf", "%PDF")

	e := New(WithPDFToText(bin), WithTempDir(dir), WithTimeout(200*time.Millisecond), WithFallback(false))
	start := time.Now()
	if got := e.Extract(context.Background(), in, storage.MimePDF, "e.pdf"); got != "" {
		t.Fatalf("expected empty text, got %q", got)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("converter was not killed by the timeout: %s", elapsed)
	}
}

func TestExtractMissingInput(t *testing.T) {
	e := New()
	if got := e.Extract(context.Background(), filepath.Join(t.TempDir(), "nope.pdf"), storage.MimePDF, "nope.pdf"); got != "" {
		t.Fatalf("expected empty text, got %q", got)
	}
	if got := e.Extract(context.Background(), "", storage.MimePDF, "x.pdf"); got != "" {
		t.Fatalf("expected empty text for empty path, got %q", got)
	}
}

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
	`<w:p><w:r><w:t>CHƯƠNG I</w:t></w:r></w:p>` +
	`<w:p><w:r><w:t xml:space="preserve">Điều 1. </w:t></w:r><w:r><w:t>Phạm vi &amp; đối tượng</w:t></w:r></w:p>` +
	`</w:body></w:document>`

const documentRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`

func writeDOCX(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create docx: %v", err)
	}
	zw := zip.NewWriter(f)
	for name, body := range map[string]string{
		"word/document.xml":            documentXML,
		"word/_rels/document.xml.rels": documentRels,
	} {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create: %v", err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("zip write: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("file close: %v", err)
	}
}

func TestExtractDOCXFallsBackToInProcessReader(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "f.docx")
	writeDOCX(t, in)

	e := New(WithPandoc(filepath.Join(dir, "no-pandoc")), WithTempDir(dir))
	got := e.Extract(context.Background(), in, storage.MimeDOCX, "f.docx")
	if got != "CHƯƠNG I\nĐiều 1. Phạm vi & đối tượng" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestDocxXMLToText(t *testing.T) {
	in := `<w:p><w:r><w:t>a</w:t><w:tab/><w:t>b</w:t></w:r></w:p><w:p></w:p><w:p></w:p><w:p></w:p><w:p><w:t>c&lt;d</w:t></w:p>`
	got := docxXMLToText(in)
	if got != "a\tb\n\nc<d" {
		t.Fatalf("got %q", got)
	}
	if strings.Contains(got, "<w:") {
		t.Fatalf("tags left in output")
	}
}

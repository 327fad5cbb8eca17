// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package process

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/docx-t2s/internal/chinese"
	"github.com/pdiddy/docx-t2s/internal/docx"
	"github.com/pdiddy/docx-t2s/internal/docx/docxtest"
)

func testProcessor(opts ...Option) *Processor {
	conv := chinese.NewWithTable(map[rune]rune{
		'這': '这', '體': '体', '測': '测', '試': '试', '個': '个', '檔': '档',
	})
	return New(conv, opts...)
}

func TestProcessDocument_Paragraph(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "input.docx")
	out := filepath.Join(dir, "output.docx")
	docxtest.Write(t, in, docxtest.Paragraph(docxtest.Run("這是繁體中文測試")))

	res := testProcessor().ProcessDocument(in, out, nil)
	require.True(t, res.Success, res.ErrorMessage)
	assert.Equal(t, 4, res.ConvertedChars)
	assert.Empty(t, res.ErrorMessage)

	doc, err := docx.Open(out)
	require.NoError(t, err)
	assert.Equal(t, "这是繁体中文测试", doc.Paragraphs()[0].Text())
}

func TestProcessDocument_TableOnlyCountsChanges(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "input.docx")
	out := filepath.Join(dir, "output.docx")
	plain := docxtest.Paragraph(docxtest.Run("简体"))
	docxtest.Write(t, in, plain, docxtest.Table([]string{"測試"}))

	res := testProcessor().ProcessDocument(in, out, nil)
	require.True(t, res.Success, res.ErrorMessage)
	assert.Equal(t, 2, res.ConvertedChars)

	xml := docxtest.ReadPart(t, out, "word/document.xml")
	assert.Contains(t, xml, plain)
	doc, err := docx.Open(out)
	require.NoError(t, err)
	assert.Equal(t, "测试", doc.Tables()[0].Rows()[0].Cells()[0].Text())
}

func TestProcessDocument_PreservesFormatting(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "input.docx")
	out := filepath.Join(dir, "output.docx")
	props := `<w:b/><w:i/><w:color w:val="FF0000"/><w:sz w:val="28"/>`
	centered := `<w:p><w:pPr><w:jc w:val="center"/></w:pPr>` + docxtest.StyledRun(props, "繁體") + `</w:p>`
	docxtest.Write(t, in, centered)

	res := testProcessor().ProcessDocument(in, out, nil)
	require.True(t, res.Success, res.ErrorMessage)

	xml := docxtest.ReadPart(t, out, "word/document.xml")
	assert.Contains(t, xml, `<w:pPr><w:jc w:val="center"/></w:pPr>`)
	doc, err := docx.Open(out)
	require.NoError(t, err)
	run := doc.Paragraphs()[0].Runs()[0]
	assert.Equal(t, "繁体", run.Text())
	assert.Equal(t, "<w:rPr>"+props+"</w:rPr>", run.Style().String())
}

func TestProcessDocument_Progress(t *testing.T) {
	tests := []struct {
		name string
		body []string
		want []int
	}{
		{
			name: "paragraphs then table",
			body: []string{
				docxtest.Paragraph(docxtest.Run("一")),
				docxtest.Table([]string{"測", "試"}, []string{"a", "b"}),
				docxtest.Paragraph(docxtest.Run("二")),
				docxtest.Paragraph(docxtest.Run("三")),
			},
			want: []int{25, 50, 75, 100},
		},
		{
			name: "three elements floor",
			body: []string{
				docxtest.Paragraph(docxtest.Run("一")),
				docxtest.Paragraph(docxtest.Run("二")),
				docxtest.Paragraph(docxtest.Run("三")),
			},
			want: []int{33, 66, 100},
		},
		{
			name: "empty body",
			body: nil,
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			in := filepath.Join(dir, "input.docx")
			docxtest.Write(t, in, tt.body...)

			var got []int
			res := testProcessor().ProcessDocument(in, filepath.Join(dir, "out.docx"), func(pct int) {
				got = append(got, pct)
			})
			require.True(t, res.Success, res.ErrorMessage)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProcessDocument_OpenFailures(t *testing.T) {
	dir := t.TempDir()
	corrupt := filepath.Join(dir, "corrupt.docx")
	require.NoError(t, os.WriteFile(corrupt, []byte("not a zip"), 0o644))

	for _, in := range []string{filepath.Join(dir, "missing.docx"), corrupt} {
		res := testProcessor().ProcessDocument(in, filepath.Join(dir, "out.docx"), nil)
		assert.False(t, res.Success)
		assert.Equal(t, 0, res.ConvertedChars)
		assert.NotEmpty(t, res.ErrorMessage)
	}
	_, err := os.Stat(filepath.Join(dir, "out.docx"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestProcessDocument_CreatesOutputDirectories(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "input.docx")
	out := filepath.Join(dir, "nested", "deeper", "output.docx")
	docxtest.Write(t, in, docxtest.Paragraph(docxtest.Run("體")))

	res := testProcessor().ProcessDocument(in, out, nil)
	require.True(t, res.Success, res.ErrorMessage)
	assert.FileExists(t, out)
}

func TestProcessDocument_SaveFailureResetsCount(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "input.docx")
	docxtest.Write(t, in, docxtest.Paragraph(docxtest.Run("測試")))
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("file"), 0o644))

	res := testProcessor().ProcessDocument(in, filepath.Join(blocker, "out.docx"), nil)
	assert.False(t, res.Success)
	assert.Equal(t, 0, res.ConvertedChars)
	assert.NotEmpty(t, res.ErrorMessage)
}

type fakeUpgrader struct {
	data  []byte
	err   error
	calls int
}

func (f *fakeUpgrader) Upgrade(string) ([]byte, error) {
	f.calls++
	return f.data, f.err
}

func TestProcessDocument_LegacyDoc(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "legacy.doc")
	require.NoError(t, os.WriteFile(in, []byte{0xD0, 0xCF, 0x11, 0xE0}, 0o644))
	out := filepath.Join(dir, "legacy_简体.docx")

	res := testProcessor().ProcessDocument(in, out, nil)
	assert.False(t, res.Success, "without an upgrader .doc cannot be opened")

	up := &fakeUpgrader{data: docxtest.Bytes(t, docxtest.Paragraph(docxtest.Run("這個檔")))}
	res = testProcessor(WithUpgrader(up)).ProcessDocument(in, out, nil)
	require.True(t, res.Success, res.ErrorMessage)
	assert.Equal(t, 3, res.ConvertedChars)
	assert.Equal(t, 1, up.calls)

	doc, err := docx.Open(out)
	require.NoError(t, err)
	assert.Equal(t, "这个档", doc.Paragraphs()[0].Text())
}

func TestProcessDocument_UpgraderSkippedForDocx(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "broken.docx")
	require.NoError(t, os.WriteFile(in, []byte("garbage"), 0o644))

	up := &fakeUpgrader{err: errors.New("should not run")}
	res := testProcessor(WithUpgrader(up)).ProcessDocument(in, filepath.Join(dir, "o.docx"), nil)
	assert.False(t, res.Success)
	assert.Equal(t, 0, up.calls)
}

func TestProcessDocument_UpgraderError(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "legacy.DOC")
	require.NoError(t, os.WriteFile(in, []byte("ole"), 0o644))

	up := &fakeUpgrader{err: errors.New("container exited")}
	res := testProcessor(WithUpgrader(up)).ProcessDocument(in, filepath.Join(dir, "o.docx"), nil)
	assert.False(t, res.Success)
	assert.Contains(t, res.ErrorMessage, "container exited")
}

// fakeRuntime implements container.Runtime for the upgrader.
type fakeRuntime struct {
	hasImage bool
	output   string
}

func (f *fakeRuntime) Name() string { return "docker" }
func (f *fakeRuntime) Available(context.Context) bool { return true }
func (f *fakeRuntime) ImageExists(_ context.Context, image string) error {
	if !f.hasImage {
		return errors.New("image " + image + " not found")
	}
	return nil
}

func (f *fakeRuntime) Filter(_ context.Context, _ string, stdin io.Reader, stdout io.Writer) error {
	if _, err := io.ReadAll(stdin); err != nil {
		return err
	}
	_, err := io.WriteString(stdout, f.output)
	return err
}

func TestContainerUpgrader(t *testing.T) {
	ctx := context.Background()
	_, err := NewContainerUpgrader(ctx, &fakeRuntime{}, "doc2docx:latest")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "doc2docx:latest")

	path := filepath.Join(t.TempDir(), "a.doc")
	require.NoError(t, os.WriteFile(path, []byte("ole"), 0o644))

	u, err := NewContainerUpgrader(ctx, &fakeRuntime{hasImage: true, output: "PK..."}, "doc2docx:latest")
	require.NoError(t, err)
	data, err := u.Upgrade(path)
	require.NoError(t, err)
	assert.Equal(t, "PK...", string(data))

	u, err = NewContainerUpgrader(ctx, &fakeRuntime{hasImage: true}, "doc2docx:latest")
	require.NoError(t, err)
	_, err = u.Upgrade(path)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "empty output"))
}

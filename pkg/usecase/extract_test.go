package usecase_test

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/lanchanto/pkg/domain/types"
	"github.com/m-mizutani/lanchanto/pkg/usecase"
)

type zipEntry struct {
	name    string
	content string
	mode    os.FileMode
}

// createTestZip creates a ZIP archive with entries in the given order
func createTestZip(t *testing.T, entries []zipEntry) []byte {
	var buf bytes.Buffer
	zipWriter := zip.NewWriter(&buf)

	for _, e := range entries {
		header := &zip.FileHeader{
			Name:   e.name,
			Method: zip.Deflate,
		}
		if e.mode != 0 {
			header.SetMode(e.mode)
		}

		writer, err := zipWriter.CreateHeader(header)
		gt.NoError(t, err)

		if e.content != "" {
			_, err = writer.Write([]byte(e.content))
			gt.NoError(t, err)
		}
	}

	gt.NoError(t, zipWriter.Close())
	return buf.Bytes()
}

func TestExtract(t *testing.T) {
	ctx := context.Background()
	target := filepath.Join(t.TempDir(), "site")

	data := createTestZip(t, []zipEntry{
		{name: "index.html", content: "<h1>hello</h1>"},
		{name: "assets/"},
		{name: "dir/file.txt", content: "nested content"},
		{name: "run.sh", content: "#!/bin/sh\n", mode: 0755},
	})

	result, err := usecase.Extract(ctx, data, target)
	gt.NoError(t, err)

	gt.Value(t, result.TargetDir).Equal(target)
	gt.A(t, result.Files).Length(3)
	gt.A(t, result.Skipped).Length(0)
	gt.Value(t, result.Size).Equal(int64(len("<h1>hello</h1>") + len("nested content") + len("#!/bin/sh\n")))

	content, err := os.ReadFile(filepath.Join(target, "dir", "file.txt"))
	gt.NoError(t, err)
	gt.Value(t, string(content)).Equal("nested content")

	content, err = os.ReadFile(filepath.Join(target, "index.html"))
	gt.NoError(t, err)
	gt.Value(t, string(content)).Equal("<h1>hello</h1>")

	info, err := os.Stat(filepath.Join(target, "assets"))
	gt.NoError(t, err)
	gt.True(t, info.IsDir())

	info, err = os.Stat(filepath.Join(target, "run.sh"))
	gt.NoError(t, err)
	gt.True(t, info.Mode().Perm()&0100 != 0)

	// Entries without stored permission bits are still readable
	info, err = os.Stat(filepath.Join(target, "index.html"))
	gt.NoError(t, err)
	gt.True(t, info.Mode().Perm()&0400 != 0)
}

func TestExtract_PathTraversal(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	target := filepath.Join(base, "a", "b")

	data := createTestZip(t, []zipEntry{
		{name: "../../etc/passwd", content: "root:x:0:0"},
		{name: "../escape.txt", content: "escaped"},
		{name: "ok/../../sneaky.txt", content: "sneaky"},
		{name: "dir/file.txt", content: "kept"},
	})

	result, err := usecase.Extract(ctx, data, target)
	gt.NoError(t, err)

	gt.A(t, result.Skipped).Length(3)
	gt.A(t, result.Files).Length(1)

	_, err = os.Stat(filepath.Join(base, "etc", "passwd"))
	gt.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(base, "a", "escape.txt"))
	gt.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(base, "a", "sneaky.txt"))
	gt.True(t, os.IsNotExist(err))

	content, err := os.ReadFile(filepath.Join(target, "dir", "file.txt"))
	gt.NoError(t, err)
	gt.Value(t, string(content)).Equal("kept")
}

func TestExtract_SkipsSymlink(t *testing.T) {
	ctx := context.Background()
	target := t.TempDir()

	data := createTestZip(t, []zipEntry{
		{name: "link", content: "/etc/passwd", mode: os.ModeSymlink | 0777},
		{name: "file.txt", content: "kept"},
	})

	result, err := usecase.Extract(ctx, data, target)
	gt.NoError(t, err)
	gt.A(t, result.Skipped).Length(1)

	_, err = os.Lstat(filepath.Join(target, "link"))
	gt.True(t, os.IsNotExist(err))
}

func TestExtract_Idempotent(t *testing.T) {
	ctx := context.Background()
	target := t.TempDir()

	data := createTestZip(t, []zipEntry{
		{name: "dir/"},
		{name: "dir/file.txt", content: "same content"},
	})

	_, err := usecase.Extract(ctx, data, target)
	gt.NoError(t, err)
	_, err = usecase.Extract(ctx, data, target)
	gt.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(target, "dir", "file.txt"))
	gt.NoError(t, err)
	gt.Value(t, string(content)).Equal("same content")

	entries, err := os.ReadDir(target)
	gt.NoError(t, err)
	gt.A(t, entries).Length(1)
	gt.Value(t, entries[0].Name()).Equal("dir")

	entries, err = os.ReadDir(filepath.Join(target, "dir"))
	gt.NoError(t, err)
	gt.A(t, entries).Length(1)
}

func TestExtract_OverwritesExistingFile(t *testing.T) {
	ctx := context.Background()
	target := t.TempDir()

	path := filepath.Join(target, "config.json")
	gt.NoError(t, os.WriteFile(path, []byte(`{"old": "and much longer content"}`), 0644))

	data := createTestZip(t, []zipEntry{
		{name: "config.json", content: `{"new":1}`},
	})

	_, err := usecase.Extract(ctx, data, target)
	gt.NoError(t, err)

	content, err := os.ReadFile(path)
	gt.NoError(t, err)
	gt.Value(t, string(content)).Equal(`{"new":1}`)
}

func TestExtract_CorruptArchive(t *testing.T) {
	ctx := context.Background()
	target := filepath.Join(t.TempDir(), "out")

	result, err := usecase.Extract(ctx, []byte("this is not valid zip data"), target)
	gt.Error(t, err)
	gt.Value(t, result).Nil()
	gt.True(t, goerr.HasTag(err, types.ErrTagCorruptArchive))

	// Target is created before the archive is opened
	info, err := os.Stat(target)
	gt.NoError(t, err)
	gt.True(t, info.IsDir())
}

func TestExtract_CorruptEntry(t *testing.T) {
	ctx := context.Background()
	target := t.TempDir()

	var buf bytes.Buffer
	zipWriter := zip.NewWriter(&buf)
	writer, err := zipWriter.CreateHeader(&zip.FileHeader{Name: "file.txt", Method: zip.Store})
	gt.NoError(t, err)
	_, err = writer.Write([]byte("original content"))
	gt.NoError(t, err)
	gt.NoError(t, zipWriter.Close())

	// Flip a byte of the stored content so that the CRC check fails
	data := buf.Bytes()
	idx := bytes.Index(data, []byte("original content"))
	gt.True(t, idx >= 0)
	data[idx] = 'X'

	_, err = usecase.Extract(ctx, data, target)
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, types.ErrTagCorruptArchive))
}

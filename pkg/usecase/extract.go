package usecase

import (
	"archive/zip"
	"bytes"
	"compress/flate"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/lanchanto/pkg/domain/model"
	"github.com/m-mizutani/lanchanto/pkg/domain/types"
)

const (
	defaultDirPerm  os.FileMode = 0755
	defaultFilePerm os.FileMode = 0644
)

// Extract writes the ZIP archive in data into targetDir, creating it if
// needed. Existing files are overwritten. Entries that would land outside
// targetDir, and symlinks, are skipped. Any other error aborts the
// extraction and leaves already written files in place.
func Extract(ctx context.Context, data []byte, targetDir string) (*model.ExtractResult, error) {
	logger := ctxlog.From(ctx)

	root := filepath.Clean(targetDir)
	if err := os.MkdirAll(root, defaultDirPerm); err != nil {
		return nil, goerr.Wrap(err, "failed to create target directory", goerr.V("target", root))
	}

	// ErrInsecurePath comes with a usable reader; such entries are skipped below
	zipReader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return nil, goerr.Wrap(err, "failed to create zip reader",
			goerr.T(types.ErrTagCorruptArchive),
			goerr.V("target", root))
	}

	result := &model.ExtractResult{TargetDir: root}

	for _, file := range zipReader.File {
		destPath, ok := resolvePath(root, file)
		if !ok {
			logger.Warn("Skipped unsafe archive entry", "name", file.Name, "target", root)
			result.Skipped = append(result.Skipped, file.Name)
			continue
		}

		n, err := extractFile(file, destPath)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to extract file",
				goerr.V("name", file.Name),
				goerr.V("target", root))
		}

		if !file.FileInfo().IsDir() {
			result.Files = append(result.Files, file.Name)
			result.Size += n
		}
	}

	return result, nil
}

// resolvePath returns the destination of file under root. It reports false
// when the entry escapes root, would replace root itself, or is a symlink.
func resolvePath(root string, file *zip.File) (string, bool) {
	if file.Mode()&os.ModeSymlink != 0 {
		return "", false
	}

	destPath := filepath.Join(root, file.Name)
	rel, err := filepath.Rel(root, destPath)
	if err != nil {
		return "", false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", false
	}
	if rel == "." && !file.FileInfo().IsDir() {
		return "", false
	}

	return destPath, true
}

// extractFile extracts a single entry and returns the number of bytes written
func extractFile(file *zip.File, destPath string) (int64, error) {
	if file.FileInfo().IsDir() {
		if err := os.MkdirAll(destPath, defaultDirPerm); err != nil {
			return 0, goerr.Wrap(err, "failed to create directory", goerr.V("path", destPath))
		}
		return 0, nil
	}

	if err := os.MkdirAll(filepath.Dir(destPath), defaultDirPerm); err != nil {
		return 0, goerr.Wrap(err, "failed to create parent directories", goerr.V("path", filepath.Dir(destPath)))
	}

	rc, err := file.Open()
	if err != nil {
		return 0, goerr.Wrap(err, "failed to open file in zip", goerr.T(types.ErrTagCorruptArchive))
	}
	defer rc.Close()

	perm := file.Mode().Perm()
	if perm == 0 {
		perm = defaultFilePerm
	}

	destFile, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to create destination file", goerr.V("path", destPath))
	}

	n, copyErr := io.Copy(destFile, rc)
	closeErr := destFile.Close()

	if copyErr != nil {
		opts := []goerr.Option{goerr.V("path", destPath)}
		if isCorruptEntry(copyErr) {
			opts = append(opts, goerr.T(types.ErrTagCorruptArchive))
		}
		return n, goerr.Wrap(copyErr, "failed to copy file content", opts...)
	}
	if closeErr != nil {
		return n, goerr.Wrap(closeErr, "failed to close destination file", goerr.V("path", destPath))
	}

	return n, nil
}

func isCorruptEntry(err error) bool {
	var flateErr flate.CorruptInputError
	return errors.Is(err, zip.ErrChecksum) ||
		errors.Is(err, zip.ErrFormat) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.As(err, &flateErr)
}

package importer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	// InboxDir is where CSV files wait to be imported, relative to the ledger root.
	InboxDir = "import"
	// ProcessedDir receives files after they are committed.
	ProcessedDir = "import/processed"
)

// InboxFile is a CSV file waiting in the inbox.
type InboxFile struct {
	Name string
	Path string
	Size int64
}

// Pending lists CSV files in <root>/import/ sorted by name. A missing inbox is empty.
func Pending(root string) ([]InboxFile, error) {
	dir := filepath.Join(root, InboxDir)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading inbox: %w", err)
	}

	var files []InboxFile
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, InboxFile{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// MarkProcessed moves an inbox file to import/processed/. If a file of the same
// name was processed before, the new one gets a numeric suffix ("bank-2.csv").
// Returns the destination path.
func MarkProcessed(root, name string) (string, error) {
	src := filepath.Join(root, InboxDir, name)
	dstDir := filepath.Join(root, ProcessedDir)
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return "", fmt.Errorf("creating processed dir: %w", err)
	}

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	dst := filepath.Join(dstDir, name)
	for n := 2; ; n++ {
		if _, err := os.Stat(dst); errors.Is(err, fs.ErrNotExist) {
			break
		}
		dst = filepath.Join(dstDir, fmt.Sprintf("%s-%d%s", base, n, ext))
	}

	if err := os.Rename(src, dst); err != nil {
		return "", fmt.Errorf("moving %s to processed: %w", name, err)
	}
	return dst, nil
}

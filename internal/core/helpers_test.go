package core

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// listBlobFiles returns the stored blob files below root, ignoring directories.
func listBlobFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && !strings.HasPrefix(d.Name(), ".") {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

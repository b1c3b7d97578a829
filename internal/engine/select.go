package engine

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// ProtoSuffix is the extension of files considered for vendoring.
const ProtoSuffix = ".proto"

// SelectFiles walks root and returns, in lexical order, every regular file
// with ProtoSuffix whose name without the suffix matches filter. The match
// is unanchored.
func SelectFiles(root string, filter *regexp.Regexp) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if !strings.HasSuffix(name, ProtoSuffix) {
			return nil
		}
		// Follow symlinks so linked files are selected like regular ones.
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			return nil
		}
		if filter.MatchString(strings.TrimSuffix(name, ProtoSuffix)) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

package indexer

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/motorag/motorag/internal/config"
)

// Scanner scans a directory for text documents
type Scanner struct {
	extensions map[string]bool
	ignoreDirs map[string]bool
}

// NewScanner creates a new file scanner
func NewScanner(cfg config.IndexerConfig) *Scanner {
	s := &Scanner{
		extensions: make(map[string]bool),
		ignoreDirs: make(map[string]bool),
	}
	for _, ext := range cfg.Extensions {
		s.extensions[strings.ToLower(ext)] = true
	}
	for _, dir := range cfg.IgnoreDirs {
		s.ignoreDirs[dir] = true
	}
	return s
}

// Scan walks rootPath and returns every file with an accepted extension,
// in lexical path order.
func (s *Scanner) Scan(rootPath string) ([]*FileInfo, error) {
	var files []*FileInfo

	err := filepath.Walk(rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		// Skip ignored directories
		if info.IsDir() {
			if path != rootPath && s.ignoreDirs[info.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if !s.extensions[ext] {
			return nil
		}

		relPath, err := filepath.Rel(rootPath, path)
		if err != nil {
			relPath = path
		}

		files = append(files, &FileInfo{
			Path:      path,
			RelPath:   filepath.ToSlash(relPath),
			Extension: ext,
			Size:      info.Size(),
		})

		return nil
	})

	return files, err
}

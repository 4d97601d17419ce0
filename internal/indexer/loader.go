package indexer

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/motorag/motorag/internal/config"
)

// Loader reads text documents from a directory tree
type Loader struct {
	scanner *Scanner
}

// NewLoader creates a new document loader
func NewLoader(cfg config.IndexerConfig) *Loader {
	return &Loader{scanner: NewScanner(cfg)}
}

// Load scans root and reads every accepted file. Files that cannot be read
// are reported in LoadResult.Errors instead of failing the whole load.
func (l *Loader) Load(root string) (*LoadResult, error) {
	startTime := time.Now()

	absPath, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("path does not exist: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", absPath)
	}

	files, err := l.scanner.Scan(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to scan directory: %w", err)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no documents found in %s", absPath)
	}

	// Read files concurrently, keeping scan order in the result
	docs := make([]*Document, len(files))
	var errors []string
	var mu sync.Mutex
	var wg sync.WaitGroup

	sem := make(chan struct{}, 10)

	for i, file := range files {
		wg.Add(1)
		go func(idx int, f *FileInfo) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			doc, err := readDocument(f)
			if err != nil {
				mu.Lock()
				errors = append(errors, fmt.Sprintf("%s: %v", f.RelPath, err))
				mu.Unlock()
				return
			}
			docs[idx] = doc
		}(i, file)
	}

	wg.Wait()

	result := &LoadResult{
		Root:        absPath,
		Errors:      errors,
		ElapsedTime: time.Since(startTime).String(),
	}
	for _, doc := range docs {
		if doc != nil {
			result.Documents = append(result.Documents, doc)
		}
	}

	return result, nil
}

func readDocument(f *FileInfo) (*Document, error) {
	content, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("not valid UTF-8 text")
	}
	return &Document{
		Path:    f.Path,
		RelPath: f.RelPath,
		Content: string(content),
	}, nil
}

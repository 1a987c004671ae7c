package etl

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"stock-analysis/src/helpers"
	"stock-analysis/src/logger"
	"stock-analysis/src/models"

	"gopkg.in/yaml.v3"
)

// sourceExtensions are matched case-insensitively.
var sourceExtensions = map[string]struct{}{
	".yaml": {},
	".yml":  {},
}

// -----------------------------------------------------------------------------

// Extractor discovers YAML source files and parses them into raw records.
type Extractor struct {
	Root   string
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewExtractor(root string, log *logger.Logger) *Extractor {
	return &Extractor{Root: root, Logger: log}
}

// -----------------------------------------------------------------------------

// Discover returns every source file under Root, sorted lexicographically.
// An unreadable Root is a *helpers.DiscoveryError. Unreadable subdirectories
// are logged and skipped.
func (e *Extractor) Discover() ([]string, error) {
	info, err := os.Stat(e.Root)
	if err != nil {
		return nil, helpers.NewDiscoveryError(e.Root, err)
	}
	if !info.IsDir() {
		return nil, helpers.NewDiscoveryError(e.Root, fmt.Errorf("not a directory"))
	}

	var files []string
	err = filepath.WalkDir(e.Root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == e.Root {
				return walkErr
			}
			e.Logger.Warning("Skipping unreadable path %s: %v", path, walkErr)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := sourceExtensions[strings.ToLower(filepath.Ext(path))]; ok {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, helpers.NewDiscoveryError(e.Root, err)
	}

	sort.Strings(files)
	return files, nil
}

// -----------------------------------------------------------------------------

// Extract parses one source file. The file must hold a YAML sequence of
// mappings; anything else yields no records. The returned error is always a
// *helpers.FileParseError and is already logged, so callers only count it.
func (e *Extractor) Extract(path string) ([]models.MRawRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		e.Logger.Error("Error reading %s: %v", path, err)
		return nil, helpers.NewFileParseError(path, err)
	}

	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		e.Logger.Error("Error reading %s: %v", path, err)
		return nil, helpers.NewFileParseError(path, err)
	}

	entries, ok := doc.([]interface{})
	if !ok {
		e.Logger.Warning("%s does not contain a list", path)
		return nil, helpers.NewFileParseError(path, fmt.Errorf("top-level value is %T, want a list", doc))
	}

	records := make([]models.MRawRecord, 0, len(entries))
	for i, entry := range entries {
		m, ok := asMapping(entry)
		if !ok {
			e.Logger.Warning("%s entry %d is %T, not a mapping", path, i, entry)
			return nil, helpers.NewFileParseError(path, fmt.Errorf("entry %d is not a mapping", i))
		}
		records = append(records, models.NewRawRecord(m, path))
	}

	return records, nil
}

// -----------------------------------------------------------------------------

// asMapping accepts both mapping shapes yaml.v3 can produce.
func asMapping(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case map[string]interface{}:
		return m, true
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	}
	return nil, false
}

package scanner

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/user/vsce-audit/pkg/engine"
)

// Enumerate lists the extensions under dir in lexical folder order. A folder
// counts as an extension when it holds a package.json; folders whose manifest
// cannot be read or parsed are returned as ScanErrors instead.
func Enumerate(dir string) ([]engine.ExtensionRecord, []engine.ScanError, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("reading extensions directory: %w", err)
	}

	var records []engine.ExtensionRecord
	var skipped []engine.ScanError
	for _, entry := range entries {
		sub := filepath.Join(dir, entry.Name())
		// Stat rather than entry.IsDir so symlinked extension folders count.
		fi, err := os.Stat(sub)
		if err != nil || !fi.IsDir() {
			continue
		}
		manifestPath := filepath.Join(sub, engine.ManifestFile)
		if _, err := os.Stat(manifestPath); err != nil {
			continue
		}

		rec, err := loadManifest(sub, entry.Name(), manifestPath)
		if err != nil {
			skipped = append(skipped, engine.ScanError{
				Extension: entry.Name(),
				Error:     fmt.Sprintf("package.json read error: %v", err),
			})
			continue
		}
		records = append(records, rec)
	}
	return records, skipped, nil
}

func loadManifest(dir, folder, path string) (engine.ExtensionRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return engine.ExtensionRecord{}, err
	}
	return engine.ParseManifest(dir, folder, data)
}

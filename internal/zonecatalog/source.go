package zonecatalog

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// fileMeta describes one zone file on disk.
type fileMeta struct {
	Path     string
	Checksum string
}

// source is a read-only view of the catalog directory.
type source struct {
	root string // absolute path to the catalog directory
}

func newSource(root string) (*source, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("zonecatalog: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("zonecatalog: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("zonecatalog: root is not a directory: %s", abs)
	}
	return &source{root: abs}, nil
}

// safePath resolves rel against the root and rejects anything that escapes it.
func (s *source) safePath(rel string) (string, error) {
	if rel == "" {
		return s.root, nil
	}
	cleaned := filepath.Clean(rel)
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("zonecatalog: absolute paths not allowed: %s", rel)
	}
	abs, err := filepath.Abs(filepath.Join(s.root, cleaned))
	if err != nil {
		return "", fmt.Errorf("zonecatalog: resolve path: %w", err)
	}
	if !strings.HasPrefix(abs, s.root+string(os.PathSeparator)) && abs != s.root {
		return "", fmt.Errorf("zonecatalog: path escapes catalog root: %s", rel)
	}
	return abs, nil
}

// list walks the catalog and returns every zone file with its checksum.
func (s *source) list() ([]fileMeta, error) {
	var out []fileMeta
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !isZoneFile(d.Name()) {
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(s.root, p)
		out = append(out, fileMeta{Path: rel, Checksum: checksum(data)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("zonecatalog: list: %w", err)
	}
	return out, nil
}

func (s *source) read(rel string) ([]byte, error) {
	abs, err := s.safePath(rel)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("zonecatalog: read %s: %w", rel, err)
	}
	return data, nil
}

func isZoneFile(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

// checksum returns the hex-encoded SHA-256 digest of data.
func checksum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

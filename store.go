package mrtrie

import (
	"bufio"
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"
)

// Store writes the trie rooted at root to path on fs in gob format.
// Paths ending in ".gz" are gzip-compressed. A partially written file is
// removed on failure.
func Store(fs afero.Fs, path string, root *Node) error {
	return writeFile(fs, path, func(w io.Writer) error {
		if err := gob.NewEncoder(w).Encode(root); err != nil {
			return fmt.Errorf("encoding trie: %w", err)
		}
		return nil
	})
}

// StoreYAML writes the trie rooted at root to path on fs as YAML, with the
// same directory creation, compression and cleanup rules as Store.
func StoreYAML(fs afero.Fs, path string, root *Node) error {
	return writeFile(fs, path, func(w io.Writer) error {
		return WriteYAML(w, root)
	})
}

// writeFile creates path and its parent directory, runs encode against it
// and removes the file if any step fails.
func writeFile(fs afero.Fs, path string, encode func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	out, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("creating file %s: %w", path, err)
	}

	success := false
	defer func() {
		out.Close()
		if !success {
			fs.Remove(path) // best-effort cleanup of partial file
		}
	}()

	bw := bufio.NewWriter(out)
	var w io.Writer = bw
	var zw *gzip.Writer
	if isGzipPath(path) {
		zw = gzip.NewWriter(bw)
		w = zw
	}

	if err := encode(w); err != nil {
		return err
	}
	if zw != nil {
		if err := zw.Close(); err != nil {
			return fmt.Errorf("compressing %s: %w", path, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing file %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing file %s: %w", path, err)
	}
	success = true
	return nil
}

// Load reads a trie written by Store.
func Load(fs afero.Fs, path string) (*Node, error) {
	fi, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer fi.Close()

	var r io.Reader = bufio.NewReader(fi)
	if isGzipPath(path) {
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("creating gzip reader: %w", err)
		}
		defer zr.Close()
		r = zr
	}

	root := &Node{}
	if err := gob.NewDecoder(r).Decode(root); err != nil {
		return nil, fmt.Errorf("decoding trie: %w", err)
	}
	// gob does not transmit empty maps.
	root.Walk(func(_ []string, n *Node) error {
		if n.Children == nil {
			n.Children = make(map[string]*Node)
		}
		return nil
	})
	return root, nil
}

// WriteYAML writes a human-readable rendition of the trie.
func WriteYAML(w io.Writer, root *Node) error {
	b, err := yaml.Marshal(root)
	if err != nil {
		return fmt.Errorf("encoding trie as yaml: %w", err)
	}
	_, err = w.Write(b)
	return err
}

func isGzipPath(path string) bool {
	return strings.HasSuffix(path, ".gz")
}

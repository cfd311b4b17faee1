package mrtrie

import (
	"bytes"
	"compress/gzip"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"
)

func sampleTrie() *Node {
	return BuildTrie([]Entity{
		entity("North Sea", "1001"),
		entity("North Sea Canal", "1002"),
		entity("North Sea", "2001"),
		entity("Skagerrak", "007"),
	}, nil)
}

func TestStoreLoadRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"plain gob", "/out/mr_trie.gob"},
		{"gzip gob", "/out/mr_trie.gob.gz"},
		{"relative path", "mr_trie.gob"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			want := sampleTrie()

			if err := Store(fs, tt.path, want); err != nil {
				t.Fatalf("Store() error = %v", err)
			}
			got, err := Load(fs, tt.path)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if diff := compareTries(want, got); diff != "" {
				t.Errorf("round trip mismatch: %s", diff)
			}

			// The loaded trie must accept further insertions at leaves.
			canal, _ := got.Lookup([]string{"North", "Sea", "Canal"})
			if _, created := canal.childOrInsert("Locks"); !created {
				t.Error("childOrInsert on loaded leaf did not create a node")
			}
		})
	}
}

func TestStoreGzipIsCompressed(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := Store(fs, "/t.gob.gz", sampleTrie()); err != nil {
		t.Fatal(err)
	}
	b, err := afero.ReadFile(fs, "/t.gob.gz")
	if err != nil {
		t.Fatal(err)
	}
	if len(b) < 2 || b[0] != 0x1f || b[1] != 0x8b {
		t.Errorf("output does not start with the gzip magic number: % x", b)
	}
}

func TestStoreReadOnlyFs(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	if err := Store(fs, "/out/t.gob", sampleTrie()); err == nil {
		t.Error("Store() on read-only fs error = nil, want error")
	}
}

func TestLoadErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	if _, err := Load(fs, "/missing.gob"); err == nil {
		t.Error("Load(missing) error = nil, want error")
	}

	if err := afero.WriteFile(fs, "/garbage.gob", []byte("not a gob stream"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(fs, "/garbage.gob"); err == nil {
		t.Error("Load(garbage) error = nil, want error")
	}

	if err := afero.WriteFile(fs, "/garbage.gob.gz", []byte("not gzip"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(fs, "/garbage.gob.gz"); err == nil {
		t.Error("Load(bad gzip) error = nil, want error")
	}
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	want := sampleTrie()
	if err := WriteYAML(&buf, want); err != nil {
		t.Fatalf("WriteYAML() error = %v", err)
	}
	if !strings.Contains(buf.String(), "Skagerrak:") {
		t.Errorf("yaml output missing token key:\n%s", buf.String())
	}

	got := &Node{}
	if err := yaml.Unmarshal(buf.Bytes(), got); err != nil {
		t.Fatalf("yaml.Unmarshal() error = %v", err)
	}
	if diff := compareTries(want, got); diff != "" {
		t.Errorf("yaml round trip mismatch: %s", diff)
	}
}

// compareTries reports the first structural difference between two tries,
// ignoring nil versus empty collections.
func compareTries(want, got *Node) string {
	type entry struct {
		path string
		ids  string
	}
	flatten := func(n *Node) []entry {
		var out []entry
		n.Walk(func(path []string, n *Node) error {
			out = append(out, entry{strings.Join(path, "/"), strings.Join(n.IDs, ",")})
			return nil
		})
		return out
	}
	w, g := flatten(want), flatten(got)
	if len(w) != len(g) {
		return "node count differs"
	}
	for i := range w {
		if w[i] != g[i] {
			return "at " + w[i].path + ": want ids [" + w[i].ids + "], got " + g[i].path + " [" + g[i].ids + "]"
		}
	}
	return ""
}

func TestStoreYAML(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"nested directory", "/out/deep/mr_trie.yaml"},
		{"gzip", "/out/mr_trie.yaml.gz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			want := sampleTrie()
			if err := StoreYAML(fs, tt.path, want); err != nil {
				t.Fatalf("StoreYAML() error = %v", err)
			}

			f, err := fs.Open(tt.path)
			if err != nil {
				t.Fatalf("opening output: %v", err)
			}
			defer f.Close()
			var r io.Reader = f
			if isGzipPath(tt.path) {
				zr, err := gzip.NewReader(f)
				if err != nil {
					t.Fatalf("gzip.NewReader() error = %v", err)
				}
				r = zr
			}
			b, err := io.ReadAll(r)
			if err != nil {
				t.Fatal(err)
			}

			got := &Node{}
			if err := yaml.Unmarshal(b, got); err != nil {
				t.Fatalf("yaml.Unmarshal() error = %v", err)
			}
			if diff := compareTries(want, got); diff != "" {
				t.Errorf("yaml file mismatch: %s", diff)
			}
		})
	}
}

func TestWriteFileRemovesPartialOutput(t *testing.T) {
	fs := afero.NewMemMapFs()
	encodeErr := errors.New("encoder failed")
	err := writeFile(fs, "/out/partial.yaml", func(w io.Writer) error {
		if _, err := w.Write([]byte("children:\n")); err != nil {
			return err
		}
		return encodeErr
	})
	if !errors.Is(err, encodeErr) {
		t.Fatalf("writeFile() error = %v, want %v", err, encodeErr)
	}
	if exists, _ := afero.Exists(fs, "/out/partial.yaml"); exists {
		t.Error("partial output file was left behind")
	}
}

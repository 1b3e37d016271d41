package tpl

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

const FileSuffix = ".gohtml"

// HTMLTemplateStore keys each template by its path under the root without suffix, e.g. "email/order".
type HTMLTemplateStore struct {
	Base  map[string]*template.Template
	Funcs template.FuncMap // applied to every parsed template
}

func NewHTMLTemplateStore() *HTMLTemplateStore {
	return &HTMLTemplateStore{
		Base: make(map[string]*template.Template),
		Funcs: template.FuncMap{
			"upper": strings.ToUpper,
		},
	}
}

func (s *HTMLTemplateStore) Has(key string) bool {
	_, ok := s.Base[key]
	return ok
}

// Render executes template key into w. Output is buffered so w sees nothing on failure.
func (s *HTMLTemplateStore) Render(w io.Writer, key string, data any) error {
	t, ok := s.Base[key]
	if !ok {
		return fmt.Errorf("template %q not loaded", key)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return fmt.Errorf("render %s: %w", key, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

func (s *HTMLTemplateStore) LoadBaseTemplates(tplRoot string) error {
	tplRoot = filepath.Clean(tplRoot)
	if err := s.LoadFS(os.DirFS(tplRoot)); err != nil {
		return err
	}
	log.Printf("[INFO][TEMPLATE] Loaded %d templates from %s", len(s.Base), tplRoot)
	return nil
}

// LoadFS parses every *.gohtml file in fsys, skipping hidden files and directories.
func (s *HTMLTemplateStore) LoadFS(fsys fs.FS) error {
	return fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != "." && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(path, FileSuffix) {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return err
		}
		if !utf8.Valid(data) {
			return fmt.Errorf("file %s is not valid UTF-8", path)
		}
		key := strings.TrimSuffix(path, FileSuffix)
		if _, exists := s.Base[key]; exists {
			return fmt.Errorf("duplicate template key detected: %s (file=%s)", key, path)
		}
		t, err := template.New(key).Funcs(s.Funcs).Parse(string(data))
		if err != nil {
			return fmt.Errorf("parse error in %s: %w", path, err)
		}
		s.Base[key] = t
		return nil
	})
}

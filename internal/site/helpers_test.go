package site

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const testTemplate = `<h1>{{name}}</h1><p>{{role}}</p>{{#mail}}<a href="{{mail}}">mail</a>{{/mail}}<span>{{version}}</span>`

type fixture struct {
	root     string
	dataDir  string
	outDir   string
	template string
}

func newFixture(t *testing.T, registry string, docs map[string]string) fixture {
	t.Helper()
	root := t.TempDir()
	f := fixture{
		root:     root,
		dataDir:  filepath.Join(root, "data"),
		outDir:   filepath.Join(root, "out"),
		template: filepath.Join(root, "templates", "resume.html"),
	}
	writeFile(t, filepath.Join(f.dataDir, RegistryFile), registry)
	for name, content := range docs {
		writeFile(t, filepath.Join(f.dataDir, ResumesDir, name), content)
	}
	writeFile(t, f.template, testTemplate)
	return f
}

func (f fixture) options() Options {
	return Options{
		DataDir:      f.dataDir,
		OutDir:       f.outDir,
		TemplatePath: f.template,
		Concurrency:  2,
	}
}

func (f fixture) read(t *testing.T, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.outDir, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

type memoryStore struct {
	mu    sync.Mutex
	files map[string][]byte
	ids   map[uuid.UUID]int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{files: map[string][]byte{}, ids: map[uuid.UUID]int{}}
}

func (m *memoryStore) Put(_ context.Context, a Artifact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[a.Path] = append([]byte(nil), a.Data...)
	m.ids[a.BuildID]++
	return nil
}

type failingStore struct{}

func (failingStore) Put(context.Context, Artifact) error {
	return errors.New("disk full")
}

type fakeRecorder struct {
	created   []uuid.UUID
	status    string
	built     int
	failed    int
	completed bool
}

func (r *fakeRecorder) CreateBuild(_ context.Context, id uuid.UUID, _ string) error {
	r.created = append(r.created, id)
	return nil
}

func (r *fakeRecorder) CompleteBuild(_ context.Context, _ uuid.UUID, status string, built, failed int) error {
	r.status, r.built, r.failed, r.completed = status, built, failed, true
	return nil
}

type fakeExporter struct {
	err error
}

func (e fakeExporter) PDF(_ context.Context, html string) ([]byte, error) {
	if e.err != nil {
		return nil, e.err
	}
	return []byte("%PDF-" + html[:4]), nil
}

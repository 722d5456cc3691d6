package e2e

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"inferd/internal/engine"
	"inferd/internal/httpapi"
	"inferd/internal/registry"
	"inferd/internal/session"
)

// createTempModelsDir creates a temporary directory populated with empty
// model files and returns the directory path and the list of model IDs.
func createTempModelsDir(t *testing.T, names ...string) (string, []string) {
	t.Helper()
	dir := t.TempDir()
	for _, n := range names {
		p := filepath.Join(dir, n)
		if err := os.WriteFile(p, []byte(""), 0o644); err != nil {
			t.Fatalf("write temp model %s: %v", p, err)
		}
	}
	return dir, names
}

// scriptedEngine streams a fixed fragment script for every generation.
type scriptedEngine struct {
	fragments []string
	loadErr   error
}

func (e *scriptedEngine) Load(path string, cfg engine.Config) (engine.Instance, error) {
	if e.loadErr != nil {
		return nil, e.loadErr
	}
	return &scriptedInstance{fragments: e.fragments}, nil
}

type scriptedInstance struct {
	fragments []string
}

func (i *scriptedInstance) Generate(prompt string) (engine.Stream, error) {
	st := engine.NewPushStream(len(i.fragments))
	go func() {
		for _, f := range i.fragments {
			if !st.Push(f) {
				st.Close()
				return
			}
		}
		st.Close()
	}()
	return st, nil
}

func (i *scriptedInstance) Reset() error { return nil }
func (i *scriptedInstance) Close() error { return nil }

func newServerForDir(t *testing.T, modelsDir, defaultModel string, eng engine.Engine) (*httptest.Server, *session.Manager) {
	t.Helper()
	reg, err := registry.LoadDir(modelsDir)
	if err != nil {
		t.Fatalf("scan models: %v", err)
	}
	mgr := session.NewWithConfig(session.ManagerConfig{
		Registry:     reg,
		DefaultModel: defaultModel,
		Engine:       eng,
	})
	srv := httptest.NewServer(httpapi.NewMux(mgr))
	t.Cleanup(srv.Close)
	return srv, mgr
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, body
}

package discover

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("class X; end"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestControllers(t *testing.T) {
	ws := t.TempDir()
	touch(t, filepath.Join(ws, "app", "controllers", "users_controller.rb"))
	touch(t, filepath.Join(ws, "app", "controllers", "admin", "users_controller.rb"))
	touch(t, filepath.Join(ws, "app", "controllers", "application_controller.rb"))
	touch(t, filepath.Join(ws, "app", "controllers", "concerns", "auth_controller.rb"))
	touch(t, filepath.Join(ws, "app", "controllers", "helper.rb"))
	touch(t, filepath.Join(ws, "app", "models", "user_controller.rb"))

	files, err := Controllers(context.Background(), ws)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}

	got := make(map[string]bool, len(files))
	for _, f := range files {
		got[f.Controller] = true
	}
	for _, want := range []string{"users", "admin/users", "application"} {
		if !got[want] {
			t.Errorf("missing controller %q in %v", want, files)
		}
	}
	if len(files) != 3 {
		t.Errorf("discovered %d controllers, want 3: %+v", len(files), files)
	}
	if got["concerns/auth"] {
		t.Error("concerns/ must be skipped")
	}
}

func TestControllersMissingRoot(t *testing.T) {
	files, err := Controllers(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("missing app/controllers should not error: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("files = %v, want none", files)
	}
}

func TestControllersCancelled(t *testing.T) {
	ws := t.TempDir()
	touch(t, filepath.Join(ws, "app", "controllers", "users_controller.rb"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Controllers(ctx, ws); err == nil {
		t.Error("expected context error")
	}
}

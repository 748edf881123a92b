package platform

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindRoot(t *testing.T) {
	// baseDir/
	//   store/ (.studynotes)
	//     subdir/
	//       nested/
	//   configured/ (studynotes.yaml)
	//     child/
	//   empty/

	baseDir := t.TempDir()
	storeDir := filepath.Join(baseDir, "store")
	subDir := filepath.Join(storeDir, "subdir")
	nestedDir := filepath.Join(subDir, "nested")
	configuredDir := filepath.Join(baseDir, "configured")
	childDir := filepath.Join(configuredDir, "child")
	emptyDir := filepath.Join(baseDir, "empty")

	for _, dir := range []string{nestedDir, childDir, emptyDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(storeDir, SystemDir), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(configuredDir, ConfigFile), []byte("adapter: fs\n"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		startPath string
		wantRoot  string
		wantErr   bool
	}{
		{name: "Start at Root", startPath: storeDir, wantRoot: storeDir},
		{name: "Start in Subdir", startPath: subDir, wantRoot: storeDir},
		{name: "Start Nested Deeply", startPath: nestedDir, wantRoot: storeDir},
		{name: "Config File Marker", startPath: childDir, wantRoot: configuredDir},
		{name: "No Root Found", startPath: emptyDir, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindRoot(tt.startPath)
			if (err != nil) != tt.wantErr {
				t.Errorf("FindRoot() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != "" && filepath.Clean(got) != filepath.Clean(tt.wantRoot) {
				t.Errorf("FindRoot() = %v, want %v", got, tt.wantRoot)
			}
		})
	}
}

func TestResolveStorePath(t *testing.T) {
	tmp := t.TempDir()

	tests := []struct {
		name      string
		path      string
		forceTemp bool
		want      string
	}{
		{name: "No Force Keeps Path", path: "data", want: "data"},
		{name: "No Force Empty Path", path: "", want: "."},
		{name: "Inside Temp Is Trusted", path: tmp, forceTemp: true, want: tmp},
		{name: "Outside Temp Is Re-rooted", path: "/srv/notes", forceTemp: true, want: filepath.Join(os.TempDir(), "studynotes-dev", "notes")},
		{name: "Dot Uses Default", path: ".", forceTemp: true, want: filepath.Join(os.TempDir(), "studynotes-dev", "default")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveStorePath(tt.path, tt.forceTemp); got != tt.want {
				t.Errorf("ResolveStorePath(%q, %v) = %q, want %q", tt.path, tt.forceTemp, got, tt.want)
			}
		})
	}
}

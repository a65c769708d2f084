package compileinfo

import (
	"runtime/debug"
	"testing"
)

func TestString(t *testing.T) {
	bi := &debug.BuildInfo{
		GoVersion: "go1.18",
		Path:      "github.com/carbocation/sradownload/cmd/sradownload",
		Main:      debug.Module{Path: "github.com/carbocation/sradownload", Version: "(devel)"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2022-04-01T12:00:00Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	}

	expected := "github.com/carbocation/sradownload/cmd/sradownload (go1.18, commit abc123 at 2022-04-01T12:00:00Z, modified)"
	if got := fromBuildInfo(bi).String(); got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}

	bi.Main.Version = "v1.2.0"
	bi.Settings = nil
	expected = "github.com/carbocation/sradownload/cmd/sradownload v1.2.0 (go1.18)"
	if got := fromBuildInfo(bi).String(); got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

func TestEmpty(t *testing.T) {
	if got := (CompileInfo{}).String(); got != "build information unavailable" {
		t.Errorf("unexpected %q", got)
	}
}

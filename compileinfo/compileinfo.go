// Package compileinfo reports which build of a command is running, so that a
// batch's logs identify the downloader that produced them.
package compileinfo

import (
	"fmt"
	"runtime/debug"
	"strings"
)

type CompileInfo struct {
	Command    string
	Version    string
	GoVersion  string
	Commit     string
	CommitTime string
	Modified   bool
}

func (c CompileInfo) String() string {
	if c.Command == "" {
		return "build information unavailable"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s", c.Command)
	if c.Version != "" && c.Version != "(devel)" {
		fmt.Fprintf(&b, " %s", c.Version)
	}
	fmt.Fprintf(&b, " (%s", c.GoVersion)
	if c.Commit != "" {
		fmt.Fprintf(&b, ", commit %s at %s", c.Commit, c.CommitTime)
		if c.Modified {
			b.WriteString(", modified")
		}
	}
	b.WriteString(")")

	return b.String()
}

// Get reads the build information embedded in the running binary.
func Get() CompileInfo {
	z, ok := debug.ReadBuildInfo()
	if !ok {
		return CompileInfo{}
	}

	return fromBuildInfo(z)
}

func fromBuildInfo(z *debug.BuildInfo) CompileInfo {
	out := CompileInfo{
		Command:   z.Path,
		Version:   z.Main.Version,
		GoVersion: z.GoVersion,
	}

	for _, s := range z.Settings {
		switch s.Key {
		case "vcs.revision":
			out.Commit = s.Value
		case "vcs.time":
			out.CommitTime = s.Value
		case "vcs.modified":
			out.Modified = s.Value == "true"
		}
	}

	return out
}

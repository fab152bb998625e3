package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wippyai/bitpack"
	"github.com/wippyai/bitpack/layout"
	"github.com/wippyai/bitpack/transcoder"
)

const controlSchema = `
package = "regs"

[[enum]]
name = "Mode"
width = 2
exhaustive = true
variants = [{ name = "A" }, { name = "B" }, { name = "C" }, { name = "D" }]

[[bitfield]]
name = "Control"
storage_type = "u16"
fields = [
  { name = "f1", type = "u7" },
  { name = "f6", type = "Mode" },
  { name = "status", type = "bool", attr = "r" },
]
`

const overflowSchema = `
[[bitfield]]
name = "R"
storage_type = "u8"
fields = [{ name = "wide", type = "u9" }]
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rc := newRootCommand(strings.NewReader(""), &stdout, &stderr)
	rc.SetArgs(args)
	err := rc.Execute()
	return stdout.String(), stderr.String(), err
}

func TestGenerateCommand(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "regs.toml", controlSchema)

	t.Run("stdout", func(t *testing.T) {
		out, _, err := execute(t, "generate", "-s", schemaPath)
		if err != nil {
			t.Fatal(err)
		}
		for _, want := range []string{"package regs", "type Control uint16", "from regs.toml"} {
			if !strings.Contains(out, want) {
				t.Errorf("output lacks %q", want)
			}
		}
	})

	t.Run("file", func(t *testing.T) {
		outPath := filepath.Join(dir, "regs_gen.go")
		if _, _, err := execute(t, "generate", "-s", schemaPath, "-o", outPath, "--package", "hw"); err != nil {
			t.Fatal(err)
		}
		data, err := os.ReadFile(outPath)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), "package hw") {
			t.Errorf("package flag ignored:\n%s", data)
		}
	})

	t.Run("invalid schema", func(t *testing.T) {
		bad := writeFile(t, dir, "bad.toml", overflowSchema)
		_, stderr, err := execute(t, "generate", "-s", bad)
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(stderr, "R.wide") {
			t.Errorf("stderr = %q", stderr)
		}
	})

	t.Run("missing schema flag", func(t *testing.T) {
		if _, _, err := execute(t, "generate"); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestConfig(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "regs.toml", controlSchema)

	t.Run("file", func(t *testing.T) {
		cfg := writeFile(t, dir, "custom.toml", "package = \"fromconfig\"\nruntime-import = \"example.com/rt\"\n")
		out, _, err := execute(t, "generate", "-c", cfg, "-s", schemaPath)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(out, "package fromconfig") || !strings.Contains(out, `bitpack "example.com/rt"`) {
			t.Errorf("config not applied:\n%s", out)
		}
	})

	t.Run("flag beats config", func(t *testing.T) {
		cfg := writeFile(t, dir, "custom.toml", "package = \"fromconfig\"\n")
		out, _, err := execute(t, "generate", "-c", cfg, "-s", schemaPath, "--package", "fromflag")
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(out, "package fromflag") {
			t.Errorf("flag did not win:\n%s", out[:200])
		}
	})

	t.Run("env", func(t *testing.T) {
		t.Setenv("BITGEN_PACKAGE", "fromenv")
		out, _, err := execute(t, "generate", "-s", schemaPath)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(out, "package fromenv") {
			t.Errorf("env not applied:\n%s", out[:200])
		}
	})

	t.Run("default file", func(t *testing.T) {
		work := t.TempDir()
		writeFile(t, work, defaultConfigFile, "package = \"fromdefault\"\n")
		t.Chdir(work)
		out, _, err := execute(t, "generate", "-s", schemaPath)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(out, "package fromdefault") {
			t.Errorf("default config not applied:\n%s", out[:200])
		}
	})

	t.Run("key of another command", func(t *testing.T) {
		cfg := writeFile(t, dir, "shared.toml", "record = \"Control\"\npackage = \"x\"\n")
		if _, _, err := execute(t, "check", "-c", cfg, "-s", schemaPath); err != nil {
			t.Errorf("shared config rejected: %v", err)
		}
	})

	t.Run("unknown key", func(t *testing.T) {
		cfg := writeFile(t, dir, "bad.toml", "colour = \"red\"\n")
		_, _, err := execute(t, "check", "-c", cfg, "-s", schemaPath)
		if err == nil || !strings.Contains(err.Error(), "colour") {
			t.Errorf("error = %v", err)
		}
	})
}

func TestCheckCommand(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "regs.toml", controlSchema)
	bad := writeFile(t, dir, "bad.toml", overflowSchema)

	out, _, err := execute(t, "check", "-s", good)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "1 enums, 1 records ok") || !strings.Contains(out, "10 of  16 bits, 6 spare") {
		t.Errorf("output = %q", out)
	}

	if _, _, err := execute(t, "check", "-s", bad); err == nil {
		t.Error("overflowing schema passed check")
	}

	overlap := writeFile(t, dir, "overlap.toml", `
[[bitfield]]
name = "R"
storage_type = "u8"
fields = [{ name = "a", type = "u4" }, { name = "b", type = "u2", attr = "bits: 2..4" }]
`)
	if _, _, err := execute(t, "check", "-s", overlap); err != nil {
		t.Errorf("overlap rejected without --check-overlap: %v", err)
	}
	if _, _, err := execute(t, "check", "--check-overlap", "-s", overlap); err == nil {
		t.Error("overlap accepted with --check-overlap")
	}
}

func TestLayoutCommand(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "regs.toml", controlSchema)

	out, _, err := execute(t, "layout", "-s", path, "-r", "Control")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Control: 10 of 16 bits", "f1", "0..7", "7..9", "u7", "Mode", "......21 10000000"} {
		if !strings.Contains(out, want) {
			t.Errorf("layout lacks %q:\n%s", want, out)
		}
	}

	if _, _, err := execute(t, "layout", "-s", path, "-r", "Nope"); err == nil {
		t.Error("expected error for unknown record")
	}
}

func TestBitMap(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "arr.toml", `
[[bitfield]]
name = "R"
storage_type = "u16"
fields = [
  { name = "lanes", type = "[u2; 3]", attr = "stride := 3" },
  { name = "x", type = "u3", attr = "bits: 1..4" },
]
`)
	s, err := loadSchema(path)
	if err != nil {
		t.Fatal(err)
	}
	info, err := layout.NewCalculator().Record(s.Records[0])
	if err != nil {
		t.Fatal(err)
	}
	// lanes at 0, 3 and 6; x overlaps bits 1 and 3
	if got, want := bitMap(info), "........ 00.0#1#0"; got != want {
		t.Errorf("bitMap = %q, want %q", got, want)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l, err := newLogger("info", &buf)
	if err != nil {
		t.Fatal(err)
	}
	l.Debug("hidden")
	l.Info("shown")
	if got := buf.String(); strings.Contains(got, "hidden") || !strings.Contains(got, "shown") {
		t.Errorf("log output = %q", got)
	}
	if _, err := newLogger("loud", &buf); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestImportWITCommand_MissingFile(t *testing.T) {
	if _, _, err := execute(t, "import-wit", "-w", filepath.Join(t.TempDir(), "none.json")); err == nil {
		t.Error("expected error")
	}
}

func TestExploreModel(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "regs.toml", controlSchema)

	m := newExploreModel(path, layout.Options{})
	m.Update(m.loadSchema())
	if m.err != nil {
		t.Fatal(m.err)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.state != stateEditFields {
		t.Fatalf("state = %v", m.state)
	}
	// raw, f1, f6; status is read-only
	if got := strings.Join(m.labels, ","); got != "raw,f1,f6" {
		t.Fatalf("inputs = %s", got)
	}

	m.inputs[1].SetValue("5")
	m.inputs[2].SetValue("C")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.status != nil {
		t.Fatal(m.status)
	}
	if want := bitpack.Uint128From(5 | 2<<7); m.raw != want {
		t.Errorf("raw = %s, want %s", m.raw, want)
	}

	m.inputs[0].SetValue("0x200")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	v, err := m.rec.Get(m.raw, "status")
	if err != nil {
		t.Fatal(err)
	}
	if v != transcoder.Bool(true) {
		t.Errorf("status = %v", v)
	}
	if !strings.Contains(m.View(), "0x200") {
		t.Errorf("view does not show raw word")
	}

	m.inputs[1].SetValue("200")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.status == nil {
		t.Error("out of range value accepted")
	}

	m.inputs[0].SetValue("0x10000")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.status == nil {
		t.Error("raw wider than storage accepted")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.state != stateSelectRecord {
		t.Error("esc did not return to record list")
	}
}

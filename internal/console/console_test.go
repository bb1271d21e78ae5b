package console

import (
	"bytes"
	"errors"
	"testing"
)

func TestWriterReporter(t *testing.T) {
	var buf bytes.Buffer
	r := NewWriterReporter(&buf)

	r.WriteLine("Sistema em Standby")
	r.WriteLine("Ajuda a Caminho")

	want := "Sistema em Standby\nAjuda a Caminho\n"
	if buf.String() != want {
		t.Errorf("output: got %q, want %q", buf.String(), want)
	}
}

type failWriter struct{}

func (failWriter) Write(p []byte) (int, error) { return 0, errors.New("port closed") }

func TestWriterReporterIgnoresWriteErrors(t *testing.T) {
	r := NewWriterReporter(failWriter{})
	r.WriteLine("Sistema em Standby") // must not panic
}

func TestFakeReporter(t *testing.T) {
	f := NewFakeReporter()
	f.WriteLine("a")
	f.WriteLine("b")

	lines := f.Lines()
	if len(lines) != 2 || lines[0] != "a" || lines[1] != "b" {
		t.Errorf("lines: got %v, want [a b]", lines)
	}

	lines[0] = "mutated"
	if f.Lines()[0] != "a" {
		t.Error("Lines should return a copy")
	}

	f.Reset()
	if len(f.Lines()) != 0 {
		t.Errorf("after Reset: got %d lines, want 0", len(f.Lines()))
	}
}

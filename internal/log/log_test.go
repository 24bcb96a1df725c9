package log

import (
	"bytes"
	"testing"
)

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, false)

	l.Infof("ran %d", 3)
	l.Errorf("failed %s", "x")
	l.Debugf("hidden")

	want := "[INFO]\tran 3\n[ERROR]\tfailed x\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}

	buf.Reset()
	New(&buf, true).Debugf("step %02X", 0x1F)
	if buf.String() != "[DEBUG]\tstep 1F\n" {
		t.Errorf("debug output = %q", buf.String())
	}
}

func TestNullLogger(t *testing.T) {
	l := NewNullLogger()
	l.Infof("x")
	l.Errorf("x")
	l.Debugf("x")
}

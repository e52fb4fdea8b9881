// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package console_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/js-arias/beastgen/cmd/beastgen/console"
)

func TestNew(t *testing.T) {
	var b bytes.Buffer
	l := console.New(&b, false)
	l.Info("3 languages included in analysis.")
	l.Debug("hidden")
	l.Named("dependency").Info("package needed")

	out := b.String()
	if !strings.Contains(out, "INFO\t3 languages included in analysis.") {
		t.Errorf("expecting info message, got %q", out)
	}
	if !strings.Contains(out, "INFO\tdependency\tpackage needed") {
		t.Errorf("expecting dependency message, got %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("unexpected debug message in %q", out)
	}

	b.Reset()
	l = console.New(&b, true)
	l.Debug("shown")
	if !strings.Contains(b.String(), "DEBUG\tshown") {
		t.Errorf("expecting debug message, got %q", b.String())
	}
}

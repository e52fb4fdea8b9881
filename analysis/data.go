// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package analysis

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/js-arias/beastgen/trait"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// readData reads the data files of the models.
// Each file is read in its own goroutine.
func (a *Analysis) readData() error {
	models := a.settings.Models
	a.data = make([]*trait.Data, len(models))
	a.files = make([]string, len(models))
	a.raw = make([]string, len(models))

	var g errgroup.Group
	for i, m := range models {
		name := m.Data
		if !filepath.IsAbs(name) {
			name = filepath.Join(a.dir, name)
		}
		a.files[i] = name

		g.Go(func() error {
			b, err := os.ReadFile(name)
			if err != nil {
				return fmt.Errorf("model %q: %v", m.Name, err)
			}
			d, err := readTraits(b, name)
			if err != nil {
				return fmt.Errorf("model %q: on file %q: %v", m.Name, name, err)
			}
			a.data[i] = d
			a.raw[i] = string(b)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, m := range models {
		a.logger.Debug("data read",
			zap.String("model", m.Name),
			zap.String("file", a.files[i]),
			zap.Int("languages", len(a.data[i].Taxa())),
			zap.Int("features", len(a.data[i].Features())),
		)
	}
	return nil
}

// readTraits reads a data file,
// either a wide CSV file,
// or a long TSV file.
func readTraits(b []byte, name string) (*trait.Data, error) {
	if strings.EqualFold(filepath.Ext(name), ".csv") {
		return trait.ReadCSV(bytes.NewReader(b))
	}
	return trait.ReadTSV(bytes.NewReader(b))
}

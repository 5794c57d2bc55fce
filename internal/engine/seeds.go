package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/loomworks/loom/internal/pipeline"
)

// LoadSeeds populates the pipeline's source tables from CSV files in the
// seeds directory. Each source table maps to "<physical_name>.csv"; tables
// without a seed file are skipped, since source data may arrive by other
// means.
func (e *Engine) LoadSeeds(ctx context.Context, p *pipeline.Pipeline) error {
	if e.cfg.SeedsDir == "" {
		return nil
	}
	if err := e.ensureConnected(ctx); err != nil {
		return err
	}

	for _, t := range p.Sources() {
		name := t.PhysicalName()
		path := filepath.Join(e.cfg.SeedsDir, name+".csv")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			e.logger.Debug("no seed file for source table", "table", name, "path", path)
			continue
		}

		e.logger.Debug("loading seed file", "table", name, "path", path)
		if err := e.db.LoadCSV(ctx, name, path); err != nil {
			return fmt.Errorf("failed to load seed for %s: %w", name, err)
		}
		e.logger.Info("seed loaded", "table", name)
	}
	return nil
}

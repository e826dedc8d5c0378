package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/boxjoint/pkg/engine"
	"github.com/chazu/boxjoint/pkg/project"
)

// loadInput reads a project file (.json) or evaluates a design script
// (anything else).
func (a *app) loadInput(path string) (project.Project, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return project.Load(path)
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return project.Project{}, fmt.Errorf("read script: %w", err)
	}
	eng := engine.NewEngine(
		engine.WithTimeout(a.cfg.Eval.Timeout),
		engine.WithLogger(a.logger),
	)
	p, evalErrs, err := eng.Evaluate(string(src))
	if err != nil {
		return project.Project{}, fmt.Errorf("%s: %w", path, err)
	}
	if len(evalErrs) > 0 {
		errs := make([]error, len(evalErrs))
		for i, e := range evalErrs {
			errs[i] = fmt.Errorf("%s: %w", path, e)
		}
		return project.Project{}, errors.Join(errs...)
	}
	return *p, nil
}

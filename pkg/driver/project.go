package driver

import (
	"context"
	"sort"

	"brook/pkg/deps"
	"brook/pkg/errors"
	"brook/pkg/source"
)

// ProjectResult aggregates a parallel project check: one outcome per file,
// sorted by path, plus the requires graph assembled from the results.
type ProjectResult struct {
	Outcomes []*Outcome
	Graph    *deps.Graph
}

// ErrorCount returns the number of non-warning diagnostics across all
// outcomes.
func (r *ProjectResult) ErrorCount() int {
	n := 0
	for _, out := range r.Outcomes {
		for _, e := range out.Errors {
			if !errors.IsWarning(e) {
				n++
			}
		}
	}
	return n
}

// CheckProject reads the named files and elaborates them in parallel, one
// typing context per file.
func (b *Brook) CheckProject(ctx context.Context, paths []string) (*ProjectResult, error) {
	files := make([]*source.SourceFile, 0, len(paths))
	for _, path := range paths {
		sf, err := source.ReadFile(path)
		if err != nil {
			return nil, err
		}
		files = append(files, sf)
	}
	return b.CheckSources(ctx, files)
}

// CheckSources elaborates the given sources in parallel through a worker
// pool, builds the requires graph from the results, and filters each file's
// diagnostics through the suppress-comment patterns.
func (b *Brook) CheckSources(ctx context.Context, files []*source.SourceFile) (*ProjectResult, error) {
	pool := deps.NewPool(deps.PoolConfig{
		Workers:       b.cfg.Workers,
		Libs:          b.libs,
		SuppressTypes: b.cfg.SuppressTypes,
	})
	if err := pool.Start(ctx); err != nil {
		return nil, err
	}

	byPath := make(map[string]*source.SourceFile, len(files))
	for _, sf := range files {
		byPath[sf.DisplayPath()] = sf
	}

	var collected []deps.Result
	done := make(chan struct{})
	go func() {
		for r := range pool.Results() {
			collected = append(collected, r)
		}
		close(done)
	}()

	for _, sf := range files {
		if err := pool.Submit(sf); err != nil {
			pool.Shutdown(ctx)
			<-done
			return nil, err
		}
	}
	if err := pool.Shutdown(ctx); err != nil {
		return nil, err
	}
	<-done

	result := &ProjectResult{Graph: deps.NewGraph()}
	for _, r := range collected {
		out := &Outcome{
			Source:   byPath[r.Path],
			Program:  r.Program,
			Ctx:      r.Ctx,
			Requires: r.Requires,
		}
		out.Errors, out.Suppressed = b.filterDiagnostics(r.Errors, r.Comments)
		result.Outcomes = append(result.Outcomes, out)
		result.Graph.Add(r.Path, r.Requires)
	}
	sort.Slice(result.Outcomes, func(i, j int) bool {
		return result.Outcomes[i].Source.DisplayPath() < result.Outcomes[j].Source.DisplayPath()
	})
	return result, nil
}

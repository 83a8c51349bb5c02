package deps

import (
	"context"
	"testing"
	"time"

	"brook/pkg/source"
)

func TestPoolElaboratesFiles(t *testing.T) {
	// The library carries its own unresolved reference. Per-file results
	// must not pick it up.
	lib := source.NewSourceFile("model.js", "model.js", `
		declare class Model { id: number; }
		type Sloppy = Whatever;
	`)

	pool := NewPool(PoolConfig{
		Workers: 2,
		Libs:    []*source.SourceFile{lib},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := pool.Start(ctx); err != nil {
		t.Fatalf("expected successful start, got: %v", err)
	}
	if pool.HasActiveJobs() {
		t.Error("expected no active jobs initially")
	}

	collected := make(map[string]Result)
	done := make(chan struct{})
	go func() {
		for r := range pool.Results() {
			collected[r.Path] = r
		}
		close(done)
	}()

	ok := source.NewSourceFile("ok.js", "ok.js", `
		// @requires "./model"
		type T = Model;
	`)
	bad := source.NewSourceFile("bad.js", "bad.js", `type U = Missing;`)

	for _, file := range []*source.SourceFile{ok, bad} {
		if err := pool.Submit(file); err != nil {
			t.Fatalf("expected successful submit of %s, got: %v", file.Name, err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer shutdownCancel()
	if err := pool.Shutdown(shutdownCtx); err != nil {
		t.Fatalf("expected clean shutdown, got: %v", err)
	}
	<-done

	if len(collected) != 2 {
		t.Fatalf("expected 2 results, got %d", len(collected))
	}

	okRes := collected["ok.js"]
	if len(okRes.Errors) != 0 {
		t.Errorf("expected no diagnostics for ok.js, got %v", okRes.Errors)
	}
	if len(okRes.Requires) != 1 || okRes.Requires[0] != "./model" {
		t.Errorf("expected requires [./model], got %v", okRes.Requires)
	}
	if okRes.Ctx == nil || okRes.Program == nil {
		t.Error("expected ok.js result to carry its context and program")
	}
	if okRes.Duration <= 0 {
		t.Error("expected positive duration")
	}

	badRes := collected["bad.js"]
	if len(badRes.Errors) != 1 {
		t.Fatalf("expected 1 diagnostic for bad.js, got %v", badRes.Errors)
	}

	stats := pool.Stats()
	if stats.TotalJobs != 2 || stats.CompletedJobs != 1 || stats.FailedJobs != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if stats.ActiveJobs != 0 {
		t.Errorf("expected no active jobs after shutdown, got %d", stats.ActiveJobs)
	}
}

func TestPoolLifecycleErrors(t *testing.T) {
	pool := NewPool(PoolConfig{Workers: 1})

	if err := pool.Submit(source.NewInlineSource("type T = number;")); err == nil {
		t.Error("expected submit before start to fail")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := pool.Start(ctx); err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}
	if err := pool.Start(ctx); err == nil {
		t.Error("expected second start to fail")
	}

	done := make(chan struct{})
	go func() {
		for range pool.Results() {
		}
		close(done)
	}()

	if err := pool.Shutdown(ctx); err != nil {
		t.Fatalf("unexpected shutdown error: %v", err)
	}
	<-done

	if err := pool.Submit(source.NewInlineSource("type T = number;")); err == nil {
		t.Error("expected submit after shutdown to fail")
	}
	if err := pool.Shutdown(ctx); err == nil {
		t.Error("expected second shutdown to fail")
	}
}

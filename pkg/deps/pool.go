package deps

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"brook/pkg/ast"
	"brook/pkg/checker"
	"brook/pkg/errors"
	"brook/pkg/lexer"
	"brook/pkg/parser"
	"brook/pkg/source"
)

const depsDebug = false

func debugPrintf(format string, args ...interface{}) {
	if depsDebug {
		fmt.Printf(format, args...)
	}
}

// Result carries everything one job produced: the parsed program, the typing
// context holding its resolved annotations, the requires directives found in
// its comments, and the diagnostics the file itself raised. Library
// diagnostics are not included; the library pass owns those.
type Result struct {
	Path     string
	Program  *ast.Program
	Ctx      *checker.Context
	Comments []lexer.Comment
	Requires []string
	Errors   []errors.BrookError
	WorkerID int
	Duration time.Duration
}

// PoolConfig configures an elaboration pool.
type PoolConfig struct {
	// Workers is the number of elaboration goroutines. Zero or negative
	// means one per CPU.
	Workers int

	// JobBuffer and ResultBuffer size the pool's channels. Zero means
	// twice the worker count.
	JobBuffer    int
	ResultBuffer int

	// Libs are elaborated into every job's context before the job's own
	// file, so their declarations are visible everywhere. Signature
	// identities live in the per-file arena, so libraries elaborate fresh
	// for each job instead of being shared across contexts.
	Libs []*source.SourceFile

	// SuppressTypes are names forced to a suppressed any in every context.
	SuppressTypes []string
}

// PoolStats describes pool activity since Start.
type PoolStats struct {
	Workers       int
	TotalJobs     int
	CompletedJobs int
	FailedJobs    int
	ActiveJobs    int
	TotalTime     time.Duration
	AverageTime   time.Duration
}

// Pool elaborates declaration files in parallel, one typing context per
// file. Start launches the workers, Submit queues files, Shutdown closes the
// queue and waits for in-flight jobs to drain.
type Pool struct {
	workers      int
	jobBuffer    int
	resultBuffer int
	libs         []*source.SourceFile
	suppress     []string

	jobs    chan *source.SourceFile
	results chan Result

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	started    int32 // atomic
	stopped    int32 // atomic
	activeJobs int32 // atomic

	stats      PoolStats
	statsMutex sync.RWMutex
}

// NewPool creates a pool from config. Nothing runs until Start.
func NewPool(cfg PoolConfig) *Pool {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	jobBuffer := cfg.JobBuffer
	if jobBuffer <= 0 {
		jobBuffer = workers * 2
	}
	resultBuffer := cfg.ResultBuffer
	if resultBuffer <= 0 {
		resultBuffer = workers * 2
	}
	return &Pool{
		workers:      workers,
		jobBuffer:    jobBuffer,
		resultBuffer: resultBuffer,
		libs:         cfg.Libs,
		suppress:     cfg.SuppressTypes,
	}
}

// Start launches the worker goroutines.
func (p *Pool) Start(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&p.started, 0, 1) {
		return fmt.Errorf("pool already started")
	}

	p.ctx, p.cancel = context.WithCancel(ctx)
	p.jobs = make(chan *source.SourceFile, p.jobBuffer)
	p.results = make(chan Result, p.resultBuffer)
	p.stats = PoolStats{Workers: p.workers}

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run(i)
	}
	return nil
}

// Submit queues one file for elaboration.
func (p *Pool) Submit(file *source.SourceFile) error {
	if atomic.LoadInt32(&p.started) == 0 {
		return fmt.Errorf("pool not started")
	}
	if atomic.LoadInt32(&p.stopped) == 1 {
		return fmt.Errorf("pool stopped")
	}

	select {
	case p.jobs <- file:
		atomic.AddInt32(&p.activeJobs, 1)
		p.statsMutex.Lock()
		p.stats.TotalJobs++
		p.statsMutex.Unlock()
		return nil
	case <-p.ctx.Done():
		return p.ctx.Err()
	}
}

// Results returns the channel results arrive on. Shutdown closes it after
// the last in-flight job drains.
func (p *Pool) Results() <-chan Result {
	return p.results
}

// Shutdown closes the job queue and waits for the workers to finish, or for
// ctx to expire.
func (p *Pool) Shutdown(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&p.stopped, 0, 1) {
		return fmt.Errorf("pool already stopped")
	}

	close(p.jobs)

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		close(p.results)
		return nil
	case <-ctx.Done():
		p.cancel()
		return ctx.Err()
	}
}

// HasActiveJobs reports whether any submitted job is still waiting for its
// result.
func (p *Pool) HasActiveJobs() bool {
	return atomic.LoadInt32(&p.activeJobs) > 0
}

// Stats returns a snapshot of pool activity.
func (p *Pool) Stats() PoolStats {
	p.statsMutex.RLock()
	defer p.statsMutex.RUnlock()
	stats := p.stats
	stats.ActiveJobs = int(atomic.LoadInt32(&p.activeJobs))
	return stats
}

func (p *Pool) run(id int) {
	defer p.wg.Done()

	for {
		select {
		case file, ok := <-p.jobs:
			if !ok {
				return
			}
			result := p.process(id, file)

			p.statsMutex.Lock()
			if len(result.Errors) == 0 {
				p.stats.CompletedJobs++
			} else {
				p.stats.FailedJobs++
			}
			p.stats.TotalTime += result.Duration
			if finished := p.stats.CompletedJobs + p.stats.FailedJobs; finished > 0 {
				p.stats.AverageTime = p.stats.TotalTime / time.Duration(finished)
			}
			p.statsMutex.Unlock()

			atomic.AddInt32(&p.activeJobs, -1)

			select {
			case p.results <- result:
			case <-p.ctx.Done():
				return
			}

		case <-p.ctx.Done():
			return
		}
	}
}

// process runs the full pipeline for one file: lex, parse, scan requires
// directives, then elaborate into a context of the file's own. Libraries go
// in first through a shared scope the file's scope encloses.
func (p *Pool) process(id int, file *source.SourceFile) Result {
	start := time.Now()
	debugPrintf("// [Pool] worker %d: %s\n", id, file.DisplayPath())

	result := Result{Path: file.DisplayPath(), WorkerID: id}

	lx := lexer.NewLexerWithSource(file)
	ps := parser.NewParser(lx)
	program, parseErrs := ps.ParseProgram()
	result.Program = program
	result.Comments = lx.Comments()
	result.Requires = ScanRequires(result.Comments)
	result.Errors = append(result.Errors, parseErrs...)

	ctx := checker.NewContext()
	ctx.SuppressTypes(p.suppress)
	libEnv := ElaborateLibs(ctx, p.libs)
	libErrs := len(ctx.Errors())

	chk := checker.NewCheckerWithEnvironment(ctx, file, checker.NewEnclosedEnvironment(libEnv))
	all := chk.CheckProgram(program)
	// everything before libErrs belongs to the libraries
	result.Errors = append(result.Errors, all[libErrs:]...)
	result.Ctx = ctx
	result.Duration = time.Since(start)
	return result
}

// ElaborateLibs builds a library scope inside ctx: every lib is parsed and
// elaborated into one shared environment that file scopes then enclose.
// Libraries that fail to parse are skipped; callers validate them once up
// front, and their diagnostics do not belong to any single file.
func ElaborateLibs(ctx *checker.Context, libs []*source.SourceFile) *checker.Environment {
	env := checker.NewEnvironment()
	for _, lib := range libs {
		lx := lexer.NewLexerWithSource(lib)
		ps := parser.NewParser(lx)
		program, parseErrs := ps.ParseProgram()
		if len(parseErrs) > 0 {
			debugPrintf("// [Pool] skipping malformed library %s\n", lib.DisplayPath())
			continue
		}
		chk := checker.NewCheckerWithEnvironment(ctx, lib, env)
		chk.CheckProgram(program)
	}
	return env
}

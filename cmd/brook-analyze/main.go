package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/davecgh/go-spew/spew"
	git "github.com/go-git/go-git/v5"

	"brook/pkg/config"
	"brook/pkg/deps"
	"brook/pkg/driver"
	"brook/pkg/errors"
)

func main() {
	dumpFlag := flag.Bool("dump", false, "Dump each file's annotated program")
	depsFlag := flag.Bool("deps", false, "Print the requires graph and check order")
	changedFlag := flag.String("changed", "", "Comma-separated changed files; print the recheck set")
	gitFlag := flag.Bool("git", false, "Take changed files from the git worktree status")
	configFlag := flag.String("config", "", "Path to brook.yaml (default: nearest ancestor)")

	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: brook-analyze [flags] <files...>")
		os.Exit(64)
	}

	cfg, err := loadConfig(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "brook-analyze: %v\n", err)
		os.Exit(64)
	}

	b, err := driver.NewWithConfig(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "brook-analyze: %v\n", err)
		os.Exit(70)
	}

	if libErrs := b.CheckLibs(); len(libErrs) > 0 {
		errors.DisplayErrors(nil, libErrs)
	}

	res, err := b.CheckProject(context.Background(), flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "brook-analyze: %v\n", err)
		os.Exit(70)
	}

	dumper := spew.ConfigState{
		Indent:                  "  ",
		DisablePointerAddresses: true,
		DisableCapacities:       true,
	}
	for _, out := range res.Outcomes {
		b.DisplayOutcome(out)
		if *dumpFlag && out.Program != nil {
			fmt.Printf("--- %s\n", out.Source.DisplayPath())
			fmt.Print(dumper.Sdump(out.Program))
		}
	}
	printSummary(res)

	if *depsFlag {
		printGraph(res.Graph)
	}

	var changed []string
	switch {
	case *gitFlag:
		changed, err = changedFromGit(".")
		if err != nil {
			fmt.Fprintf(os.Stderr, "brook-analyze: %v\n", err)
			os.Exit(70)
		}
		changed = matchAnalyzed(changed, res)
	case *changedFlag != "":
		for _, f := range strings.Split(*changedFlag, ",") {
			if f = strings.TrimSpace(f); f != "" {
				changed = append(changed, f)
			}
		}
	}
	if len(changed) > 0 {
		printRecheckSet(res.Graph, changed)
	}

	if res.ErrorCount() > 0 {
		os.Exit(70)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return config.Default(), nil
	}
	if found, err := config.Discover(cwd); err == nil && found != "" {
		return config.Load(found)
	}
	return config.Default(), nil
}

func printSummary(res *driver.ProjectResult) {
	errCount, warnCount, suppressed := 0, 0, 0
	for _, out := range res.Outcomes {
		suppressed += out.Suppressed
		for _, e := range out.Errors {
			if errors.IsWarning(e) {
				warnCount++
			} else {
				errCount++
			}
		}
	}
	fmt.Printf("checked %d file(s): %d error(s), %d warning(s), %d suppressed\n",
		len(res.Outcomes), errCount, warnCount, suppressed)
}

func printGraph(g *deps.Graph) {
	for _, file := range g.Files() {
		reqs := g.Requires(file)
		if len(reqs) == 0 {
			fmt.Printf("%s: no requires\n", file)
			continue
		}
		fmt.Printf("%s: requires %s\n", file, strings.Join(reqs, ", "))
	}
	order, err := g.CheckOrder()
	if err != nil {
		fmt.Fprintf(os.Stderr, "brook-analyze: %v\n", err)
		return
	}
	fmt.Printf("check order: %s\n", strings.Join(order, ", "))
}

func printRecheckSet(g *deps.Graph, changed []string) {
	closure := g.DependentsClosure(changed)
	files := closure.Slice()
	sort.Strings(files)
	fmt.Printf("recheck %d file(s):\n", len(files))
	for _, f := range files {
		fmt.Printf("  %s\n", f)
	}
}

// changedFromGit lists the files with uncommitted changes in the repository
// containing dir, as absolute paths.
func changedFromGit(dir string) ([]string, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, err
	}
	status, err := wt.Status()
	if err != nil {
		return nil, err
	}

	root := wt.Filesystem.Root()
	var changed []string
	for path, st := range status {
		if st.Worktree == git.Unmodified && st.Staging == git.Unmodified {
			continue
		}
		changed = append(changed, filepath.Join(root, path))
	}
	sort.Strings(changed)
	return changed, nil
}

// matchAnalyzed keeps the git-changed paths that name analyzed files,
// translated back to the paths the graph was built with.
func matchAnalyzed(gitChanged []string, res *driver.ProjectResult) []string {
	byAbs := make(map[string]string, len(res.Outcomes))
	for _, out := range res.Outcomes {
		display := out.Source.DisplayPath()
		if abs, err := filepath.Abs(display); err == nil {
			byAbs[abs] = display
		}
	}
	var matched []string
	for _, p := range gitChanged {
		if display, ok := byAbs[p]; ok {
			matched = append(matched, display)
		}
	}
	return matched
}

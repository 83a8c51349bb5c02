package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/davecgh/go-spew/spew"
	"github.com/peterh/liner"

	"brook/pkg/config"
	"brook/pkg/driver"
	"brook/pkg/errors"
)

const (
	historyFile = ".brook_history"
	prompt      = "> "
)

func main() {
	exprFlag := flag.String("e", "", "Elaborate the given declarations and exit")
	astFlag := flag.Bool("ast", false, "Dump the annotated syntax tree")
	typesFlag := flag.Bool("types", false, "Print the resolved type at every annotation position")
	configFlag := flag.String("config", "", "Path to brook.yaml (default: nearest ancestor)")

	flag.Parse()

	cfg, err := loadConfig(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "brook: %v\n", err)
		os.Exit(64)
	}

	b, err := driver.NewWithConfig(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "brook: %v\n", err)
		os.Exit(70)
	}

	// library problems are reported once, up front
	if libErrs := b.CheckLibs(); len(libErrs) > 0 {
		errors.DisplayErrors(nil, libErrs)
	}

	if *exprFlag != "" {
		out := b.CheckString(*exprFlag)
		dumpOutcome(out, *astFlag, *typesFlag)
		if !b.DisplayOutcome(out) {
			os.Exit(70)
		}
		return
	}

	switch flag.NArg() {
	case 0:
		runRepl(b)
	case 1:
		out, err := b.CheckFile(flag.Arg(0))
		if err != nil {
			fmt.Fprintf(os.Stderr, "brook: %v\n", err)
			os.Exit(70)
		}
		dumpOutcome(out, *astFlag, *typesFlag)
		if !b.DisplayOutcome(out) {
			os.Exit(70)
		}
	default:
		res, err := b.CheckProject(context.Background(), flag.Args())
		if err != nil {
			fmt.Fprintf(os.Stderr, "brook: %v\n", err)
			os.Exit(70)
		}
		failed := false
		for _, out := range res.Outcomes {
			dumpOutcome(out, *astFlag, *typesFlag)
			if !b.DisplayOutcome(out) {
				failed = true
			}
		}
		if failed {
			os.Exit(70)
		}
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

func dumpOutcome(out *driver.Outcome, showAST, showTypes bool) {
	if showAST && out.Program != nil {
		dumper := spew.ConfigState{
			Indent:                  "  ",
			DisablePointerAddresses: true,
			DisableCapacities:       true,
		}
		fmt.Print(dumper.Sdump(out.Program))
	}
	if showTypes && out.Ctx != nil {
		printTypeTable(out)
	}
}

// printTypeTable lists every recorded annotation position of the outcome's
// own file with its resolved type, in source order.
func printTypeTable(out *driver.Outcome) {
	table := out.Ctx.RecordedTypes()
	positions := make([]errors.Position, 0, len(table))
	for pos := range table {
		if pos.Source != out.Source {
			continue
		}
		positions = append(positions, pos)
	}
	sort.Slice(positions, func(i, j int) bool {
		if positions[i].Line != positions[j].Line {
			return positions[i].Line < positions[j].Line
		}
		return positions[i].Column < positions[j].Column
	})
	for _, pos := range positions {
		fmt.Printf("%s:%d:%d: %s\n", out.Source.DisplayPath(), pos.Line, pos.Column, table[pos].String())
	}
}

func runRepl(b *driver.Brook) {
	fmt.Println("Brook REPL. :type <annotation> shows a resolved type, :reset clears the scope, :quit exits.")

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		ln.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			ln.WriteHistory(f)
			f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	for {
		line, err := ln.Prompt(prompt)
		if err == io.EOF {
			fmt.Println()
			return
		}
		if err == liner.ErrPromptAborted {
			continue
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "brook: %v\n", err)
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		ln.AppendHistory(input)

		if strings.HasPrefix(input, ":") {
			if !replCommand(b, input) {
				return
			}
			continue
		}

		b.DisplayOutcome(b.Eval(input))
	}
}

// replCommand handles one colon command and reports whether the REPL should
// keep running.
func replCommand(b *driver.Brook, input string) bool {
	cmd, rest, _ := strings.Cut(input, " ")
	switch cmd {
	case ":quit", ":q":
		return false
	case ":reset":
		b.Reset()
		fmt.Println("scope cleared")
	case ":type", ":t":
		if strings.TrimSpace(rest) == "" {
			fmt.Println("usage: :type <annotation>")
			break
		}
		t, errs := b.EvalAnnotation(rest)
		if len(errs) > 0 {
			errors.DisplayErrors(nil, errs)
			break
		}
		fmt.Println(t.String())
	default:
		fmt.Println("unknown command. :type <annotation>, :reset, :quit")
	}
	return true
}

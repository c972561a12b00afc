package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/gops/agent"
	"github.com/peterh/liner"
	"github.com/scott-cotton/cli"
	"github.com/signadot/fodot"
)

const historyFile = ".fodot_history"

func repl(cfg *ReplConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Repl.Parse(cc, args)
	if err != nil {
		return err
	}
	if cfg.Gops {
		if err := agent.Listen(agent.Options{}); err != nil {
			fmt.Fprintf(cc.Out, "gops agent failed: %v\n", err)
		}
		defer agent.Close()
	}
	s, err := cfg.session(args)
	if err != nil {
		return err
	}
	histPath := cfg.History
	if histPath == "" {
		home, _ := os.UserHomeDir()
		histPath = filepath.Join(home, historyFile)
	}

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

	colors := cfg.colors(cc.Out)
	for {
		line, err := ln.Prompt("fodot> ")
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Fprintln(cc.Out)
			return nil
		}
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ln.AppendHistory(line)
		quit, err := replLine(cc.Out, colors, s, line)
		if err != nil {
			fmt.Fprintln(cc.Out, colors.Delete(err.Error()))
		}
		if quit {
			return nil
		}
	}
}

func replLine(w io.Writer, colors *Colors, s *fodot.Session, line string) (bool, error) {
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	switch cmd {
	case "quit", "exit":
		return true, nil
	case "show":
		for _, a := range s.Theory().Assignments.All() {
			if a.Value == nil {
				continue
			}
			fmt.Fprintln(w, colors.status(a.Status)(a.String()))
		}
	case "ground":
		for _, f := range s.Formulas {
			fmt.Fprintf(w, "  %s\n", f)
		}
	case "sat":
		prob, err := s.Sat()
		if err != nil {
			return false, err
		}
		ok, model := prob.Solve(s.Theory().Assignments)
		if !ok {
			fmt.Fprintln(w, colors.Heading("unsatisfiable"))
			return false, nil
		}
		writeModel(w, prob, model)
	case "assert":
		i := strings.LastIndex(rest, " ")
		if i < 0 {
			return false, fmt.Errorf("usage: assert <atom> <value>")
		}
		atom, err := s.Parse(rest[:i])
		if err != nil {
			return false, err
		}
		value, err := s.Parse(rest[i+1:])
		if err != nil {
			return false, err
		}
		if err := s.Assert(atom, value); err != nil {
			return false, err
		}
		fmt.Fprintf(w, "%d formulas left\n", len(s.Formulas))
	default:
		return false, fmt.Errorf("unknown command %q, try assert, show, ground, sat or quit", cmd)
	}
	return false, nil
}

package main

import (
	"fmt"
	"io"

	"github.com/scott-cotton/cli"
	"github.com/signadot/fodot/ast"
	"github.com/signadot/fodot/sat"
)

func satCmd(cfg *SatConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Sat.Parse(cc, args)
	if err != nil {
		return err
	}
	s, err := cfg.session(args)
	if err != nil {
		return err
	}
	prob, err := s.Sat()
	if err != nil {
		return err
	}
	models := prob.Models(s.Theory().Assignments, cfg.N)
	colors := cfg.colors(cc.Out)
	if len(models) == 0 {
		fmt.Fprintln(cc.Out, colors.Heading("unsatisfiable"))
		return cli.ExitCodeErr(1)
	}
	for i, m := range models {
		fmt.Fprintln(cc.Out, colors.Heading(fmt.Sprintf("model %d", i+1)))
		writeModel(cc.Out, prob, m)
	}
	return nil
}

func writeModel(w io.Writer, prob *sat.Problem, model map[string]bool) {
	for _, a := range prob.Atoms() {
		fmt.Fprintf(w, "  %s = %v\n", a, model[a.Code()])
	}
}

func check(cfg *CheckConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Check.Parse(cc, args)
	if err != nil {
		return err
	}
	s, err := cfg.session(args)
	if err != nil {
		return err
	}
	prob, err := s.Sat()
	if err != nil {
		return err
	}
	colors := cfg.colors(cc.Out)
	ok, model := prob.Solve(s.Theory().Assignments)
	if !ok {
		fmt.Fprintln(cc.Out, colors.Heading("unsatisfiable"))
		return cli.ExitCodeErr(1)
	}
	violated, err := s.Check(prob.Atoms(), model)
	if err != nil {
		return err
	}
	if len(violated) == 0 {
		fmt.Fprintln(cc.Out, colors.Heading("model satisfies every formula"))
		writeModel(cc.Out, prob, model)
		return nil
	}
	fmt.Fprintln(cc.Out, colors.Heading("violated"))
	for _, v := range violated {
		fmt.Fprintf(cc.Out, "  %s\n", colors.status(ast.Unknown)(v.String()))
	}
	return cli.ExitCodeErr(1)
}

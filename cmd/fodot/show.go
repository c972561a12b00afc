package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/scott-cotton/cli"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/signadot/fodot/ast"
	"github.com/signadot/fodot/load"
)

func annotateCmd(cfg *AnnotateConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Annotate.Parse(cc, args)
	if err != nil {
		return err
	}
	p, err := parseProgram(args)
	if err != nil {
		return err
	}
	if err := cfg.tool().Annotate(p); err != nil {
		return err
	}
	colors := cfg.colors(cc.Out)
	fmt.Fprintln(cc.Out, colors.Heading("vocabulary "+p.Vocab.Name))
	for _, d := range p.Vocab.Decls {
		fmt.Fprintf(cc.Out, "  %s\n", describe(d))
	}
	writeTheory(cc.Out, colors, p.Theory)
	return nil
}

func parseProgram(args []string) (*ast.Program, error) {
	d, name, err := program(args)
	if err != nil {
		return nil, err
	}
	p, err := load.Parse(d)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return p, nil
}

func describe(d ast.Declaration) string {
	switch x := d.(type) {
	case *ast.TypeDecl:
		names := make([]string, len(x.Constructors))
		for i, c := range x.Constructors {
			names[i] = c.Name
		}
		if len(names) == 0 {
			return "type " + x.Name
		}
		return fmt.Sprintf("type %s := {%s}", x.Name, strings.Join(names, ", "))
	case *ast.RangeDecl:
		var els []string
		for _, el := range x.Elements {
			if el.To == nil {
				els = append(els, el.From.Code())
				continue
			}
			els = append(els, el.From.Code()+".."+el.To.Code())
		}
		return fmt.Sprintf("type %s := {%s} ⊆ %s", x.Name, strings.Join(els, ", "), x.Base)
	case *ast.SymbolDecl:
		return x.String()
	}
	return d.DeclName()
}

func writeTheory(w io.Writer, colors *Colors, th *ast.Theory) {
	if th == nil {
		return
	}
	fmt.Fprintln(w, colors.Heading("theory "+th.Name+":"+th.VocabName))
	for _, c := range th.Constraints {
		fmt.Fprintf(w, "  %s.\n", c)
	}
	for _, def := range th.Definitions {
		fmt.Fprintln(w, "  {")
		for _, r := range def.Rules {
			fmt.Fprintf(w, "    %s.\n", r)
		}
		fmt.Fprintln(w, "  }")
	}
}

func complete(cfg *CompleteConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Complete.Parse(cc, args)
	if err != nil {
		return err
	}
	p, err := parseProgram(args)
	if err != nil {
		return err
	}
	t := cfg.tool()
	if err := t.Annotate(p); err != nil {
		return err
	}
	if err := t.Complete(p); err != nil {
		return err
	}
	colors := cfg.colors(cc.Out)
	for i, def := range p.Theory.Definitions {
		fmt.Fprintln(cc.Out, colors.Heading(fmt.Sprintf("definition %d", i+1)))
		for _, sd := range def.Symbols() {
			fmt.Fprintf(cc.Out, "  %s.\n", def.Clarks[sd])
		}
	}
	return nil
}

func groundCmd(cfg *GroundConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Ground.Parse(cc, args)
	if err != nil {
		return err
	}
	s, err := cfg.session(args)
	if err != nil {
		return err
	}
	colors := cfg.colors(cc.Out)
	if cfg.Diff {
		dmp := diffmatchpatch.New()
		for i, c := range s.Theory().Constraints {
			g := s.Grounded.Constraints[i]
			diffs := dmp.DiffMain(c.String(), g.String(), false)
			diffs = dmp.DiffCleanupSemantic(diffs)
			fmt.Fprintf(cc.Out, "%s\n", diffText(colors, diffs))
		}
		return nil
	}
	fmt.Fprintln(cc.Out, colors.Heading("formulas"))
	for _, f := range s.Formulas {
		fmt.Fprintf(cc.Out, "  %s\n", f)
	}
	return nil
}

func diffText(colors *Colors, diffs []diffmatchpatch.Diff) string {
	var b strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			b.WriteString(colors.Insert(d.Text))
		case diffmatchpatch.DiffDelete:
			b.WriteString(colors.Delete(d.Text))
		case diffmatchpatch.DiffEqual:
			b.WriteString(d.Text)
		}
	}
	return b.String()
}

func atoms(cfg *AtomsConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Atoms.Parse(cc, args)
	if err != nil {
		return err
	}
	s, err := cfg.session(args)
	if err != nil {
		return err
	}
	writeAssignments(cc.Out, cfg.colors(cc.Out), s.Theory().Assignments, cfg.Unknown)
	return nil
}

func writeAssignments(w io.Writer, colors *Colors, as *ast.Assignments, unknownOnly bool) {
	for _, a := range as.All() {
		if unknownOnly && a.Value != nil {
			continue
		}
		fmt.Fprintln(w, colors.status(a.Status)(a.String()))
	}
}

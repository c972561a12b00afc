package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/scott-cotton/cli"
	"github.com/signadot/fodot/ast"
)

type MainConfig struct {
	Color    bool `cli:"name=color desc='output with color'"`
	Verbose  bool `cli:"name=v desc='log the pipeline steps'"`
	MaxRange int  `cli:"name=maxrange desc='largest range to expand'"`

	Out      string
	CloseOut func() error

	Main *cli.Command
}

type Colors struct {
	Heading func(...any) string
	Insert  func(...any) string
	Delete  func(...any) string
	Status  map[ast.Status]func(...any) string
}

func (c *Colors) status(s ast.Status) func(...any) string {
	if f, ok := c.Status[s]; ok {
		return f
	}
	return fmt.Sprint
}

func plainColors() *Colors {
	return &Colors{
		Heading: fmt.Sprint,
		Insert:  func(a ...any) string { return "{+" + fmt.Sprint(a...) + "+}" },
		Delete:  func(a ...any) string { return "[-" + fmt.Sprint(a...) + "-]" },
		Status:  map[ast.Status]func(...any) string{},
	}
}

func newColors() *Colors {
	mk := func(attrs ...color.Attribute) func(...any) string {
		c := color.New(attrs...)
		c.EnableColor()
		return c.SprintFunc()
	}
	return &Colors{
		Heading: mk(color.Bold, color.FgCyan),
		Insert:  mk(color.FgGreen),
		Delete:  mk(color.FgRed, color.CrossedOut),
		Status: map[ast.Status]func(...any) string{
			ast.Given:           mk(color.FgYellow),
			ast.StructureStatus: mk(color.FgBlue),
			ast.Consequence:     mk(color.FgGreen),
			ast.Unknown:         mk(color.Faint),
		},
	}
}

// colors colors the output when -color is given or when w is a
// terminal and -color is not set.
func (cfg *MainConfig) colors(w io.Writer) *Colors {
	if cfg.Color {
		return newColors()
	}
	for _, opt := range cfg.Main.Opts {
		if opt.Name != "color" {
			continue
		}
		if opt.Value != nil {
			return plainColors()
		}
		break
	}
	f, ok := w.(*os.File)
	if !ok {
		return plainColors()
	}
	if isatty.IsTerminal(f.Fd()) {
		return newColors()
	}
	return plainColors()
}

type AnnotateConfig struct {
	*MainConfig
	Annotate *cli.Command
}

type CompleteConfig struct {
	*MainConfig
	Complete *cli.Command
}

type GroundConfig struct {
	*MainConfig
	Diff bool `cli:"name=diff desc='show each constraint against its grounded form'"`

	Ground *cli.Command
}

type AtomsConfig struct {
	*MainConfig
	Unknown bool `cli:"name=u desc='only atoms without a value'"`

	Atoms *cli.Command
}

type CheckConfig struct {
	*MainConfig
	Check *cli.Command
}

type SatConfig struct {
	*MainConfig
	N int `cli:"name=n desc='number of models, 0 for all'"`

	Sat *cli.Command
}

type ReplConfig struct {
	*MainConfig
	Gops    bool   `cli:"name=gops desc='start a gops diagnostics agent'"`
	History string `cli:"name=history desc='history file'"`

	Repl *cli.Command
}

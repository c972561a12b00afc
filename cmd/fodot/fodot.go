package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/scott-cotton/cli"
	"github.com/signadot/fodot"
)

func fodotMain(cfg *MainConfig, cc *cli.Context, args []string) error {
	defer func() {
		if cfg.CloseOut != nil {
			cfg.CloseOut()
		}
	}()
	args, err := cfg.Main.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return cli.ErrNoCommandProvided
	}
	sub := cfg.Main.FindSub(cc, args[0])
	if sub == nil {
		return fmt.Errorf("%w: %q not found", cli.ErrNoSuchCommand, args[0])
	}
	err = sub.Run(cc, args[1:])
	if errors.Is(err, cli.ErrUsage) {
		sub.Usage(cc, err)
		os.Exit(sub.Exit(cc, err))
	}
	return err
}

func (cfg *MainConfig) outOpt(cc *cli.Context, a string) (any, error) {
	cfg.Out = a
	if a == "-" {
		return nil, nil
	}
	f, err := os.OpenFile(cfg.Out, os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}
	cc.Out = f
	cfg.CloseOut = f.Close
	return nil, nil
}

func (cfg *MainConfig) tool() *fodot.Tool {
	t := fodot.DefaultTool()
	t.Log = newLog(cfg.Verbose)
	if cfg.MaxRange > 0 {
		t.MaxRange = cfg.MaxRange
	}
	return t
}

// program reads the one program file in args, "-" for stdin.
func program(args []string) ([]byte, string, error) {
	if len(args) != 1 {
		return nil, "", fmt.Errorf("%w: expected one program file", cli.ErrUsage)
	}
	file := args[0]
	if file == "-" {
		d, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, "", fmt.Errorf("error reading stdin: %w", err)
		}
		return d, "<stdin>", nil
	}
	d, err := os.ReadFile(file)
	if err != nil {
		return nil, "", fmt.Errorf("could not read %q: %w", file, err)
	}
	return d, file, nil
}

// session runs the whole pipeline on the program in args.
func (cfg *MainConfig) session(args []string) (*fodot.Session, error) {
	d, name, err := program(args)
	if err != nil {
		return nil, err
	}
	s, err := cfg.tool().Load(d)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return s, nil
}

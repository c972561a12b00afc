package main

import (
	"github.com/scott-cotton/cli"
)

func MainCommand() *cli.Command {
	cfg := &MainConfig{}
	sOpts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	opts := append(sOpts, &cli.Opt{
		Name:        "o",
		Description: "output file (default stdout)",
		Type:        cli.NamedFuncOpt(cfg.outOpt, "(filepath)"),
	})

	return cli.NewCommandAt(&cfg.Main, "fodot").
		WithSynopsis("fodot [opts] command [opts] program.yaml").
		WithDescription("fodot annotates, completes and grounds FO(·) knowledge bases.").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return fodotMain(cfg, cc, args)
		}).
		WithSubs(
			AnnotateCommand(cfg),
			CompleteCommand(cfg),
			GroundCommand(cfg),
			AtomsCommand(cfg),
			CheckCommand(cfg),
			SatCommand(cfg),
			ReplCommand(cfg))
}

func AnnotateCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &AnnotateConfig{MainConfig: mainCfg}
	return cli.NewCommandAt(&cfg.Annotate, "annotate").
		WithAliases("a").
		WithSynopsis("annotate program.yaml").
		WithDescription("print the resolved vocabulary and the annotated theory").
		WithRun(func(cc *cli.Context, args []string) error {
			return annotateCmd(cfg, cc, args)
		})
}

func CompleteCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &CompleteConfig{MainConfig: mainCfg}
	return cli.NewCommandAt(&cfg.Complete, "complete").
		WithAliases("c").
		WithSynopsis("complete program.yaml").
		WithDescription("print the completion of each defined symbol").
		WithRun(func(cc *cli.Context, args []string) error {
			return complete(cfg, cc, args)
		})
}

func GroundCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &GroundConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Ground, "ground").
		WithAliases("g").
		WithSynopsis("ground [-diff] program.yaml").
		WithDescription("print the ground formulas handed to a solver").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return groundCmd(cfg, cc, args)
		})
}

func AtomsCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &AtomsConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Atoms, "atoms").
		WithSynopsis("atoms [-u] program.yaml").
		WithDescription("print the ground atoms with their value and status").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return atoms(cfg, cc, args)
		})
}

func CheckCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &CheckConfig{MainConfig: mainCfg}
	return cli.NewCommandAt(&cfg.Check, "check").
		WithSynopsis("check program.yaml").
		WithDescription("find a model of the propositional formulas and evaluate every ground formula in it").
		WithRun(func(cc *cli.Context, args []string) error {
			return check(cfg, cc, args)
		})
}

func SatCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &SatConfig{MainConfig: mainCfg, N: 1}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Sat, "sat").
		WithSynopsis("sat [-n models] program.yaml").
		WithDescription("solve the ground formulas when they are propositional").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return satCmd(cfg, cc, args)
		})
}

func ReplCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ReplConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Repl, "repl").
		WithAliases("r").
		WithSynopsis("repl [-gops] [-history file] program.yaml").
		WithDescription(replDescription).
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return repl(cfg, cc, args)
		})
}

const replDescription = `repl grounds a program and then reads commands:

  assert <atom> <value>   give a ground atom a value and propagate it,
                          e.g. 'assert [p, Red] true'
  show                    print the atoms with a value
  ground                  print the formulas left to solve
  sat                     solve the formulas left, when propositional
  quit                    leave

Atoms and values are written in the tree form of program files.`

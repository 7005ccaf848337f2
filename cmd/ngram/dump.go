package main

import (
	"flag"
	"os"

	"github.com/grammarcheck/ngramstore/internal/ngram"
)

const dumpHelp = `dump - print a model section as ngram<TAB>count lines

The output is sorted and can be fed back into ngram build.

Example:
  % ngram dump -model=/srv/ngram/en.ngram -arity=bigram | head -n 2
  the house	400
  their house	100
`

func dump(args []string) error {
	fset := flag.NewFlagSet("dump", flag.ExitOnError)
	fset.Usage = usage(fset, dumpHelp)
	var model string
	fset.StringVar(&model, "model", "", "path to the model file to work with")
	var arityFlag string
	fset.StringVar(&arityFlag, "arity", "", "section to print (unigram, bigram, trigram)")
	if err := fset.Parse(args); err != nil {
		return err
	}
	if model == "" || arityFlag == "" {
		fset.Usage()
		os.Exit(1)
	}
	a, err := ngram.ParseArity(arityFlag)
	if err != nil {
		return err
	}
	return ngram.Dump(model, a, os.Stdout)
}

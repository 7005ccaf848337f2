package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/grammarcheck/ngramstore/internal/ngram"
	"github.com/grammarcheck/ngramstore/internal/varz"
)

const compareHelp = `compare - compare two candidate words in context

Prints the likelihood ratio of the first versus the second candidate between
the -left and -right context, and the evidence which decided. The back-off
parameters are taken from the [compare] section of the configuration.

Example:
  % ngram compare -model=/srv/ngram/en.ngram -left="I went to" -right="house" their there
  their/there: 9.181818 (trigram evidence: 50 vs. 5)
`

func compare(args []string) error {
	fset := flag.NewFlagSet("compare", flag.ExitOnError)
	fset.Usage = usage(fset, compareHelp)
	var model string
	fset.StringVar(&model, "model", "", "path to the model file to work with")
	var left, right string
	fset.StringVar(&left, "left", "", "words preceding the candidate")
	fset.StringVar(&right, "right", "", "words following the candidate")
	if err := fset.Parse(args); err != nil {
		return err
	}
	if model == "" || fset.NArg() != 2 {
		fset.Usage()
		os.Exit(1)
	}
	varz.SetModel(model)
	m, err := ngram.Open(model)
	if err != nil {
		return err
	}
	defer m.Close()
	m.Backoff = cfg.Compare

	w1, w2 := fset.Arg(0), fset.Arg(1)
	c := m.Compare(w1, w2, left, right)
	if c.Arity == 0 {
		fmt.Printf("%s/%s: %f (no evidence)\n", w1, w2, c.Ratio)
		return nil
	}
	fmt.Printf("%s/%s: %f (%v evidence: %d vs. %d)\n", w1, w2, c.Ratio, c.Arity, c.Count1, c.Count2)
	return nil
}

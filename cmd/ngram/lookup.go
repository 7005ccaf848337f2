package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/grammarcheck/ngramstore/internal/ngram"
	"github.com/grammarcheck/ngramstore/internal/varz"
)

const lookupHelp = `lookup - display the count of the specified n-grams

The arity of each n-gram is derived from its number of words, unless -arity
is specified. With -prefix, the counts of all n-grams starting with the
argument are summed.

Example:
  % ngram lookup -model=/srv/ngram/en.ngram their "their house" "to their house"
  their	200
  their house	100
  to their house	50

  % ngram lookup -model=/srv/ngram/en.ngram -arity=trigram -prefix "to "
  to 	55 (2 n-grams)
`

func lookup(args []string) error {
	fset := flag.NewFlagSet("lookup", flag.ExitOnError)
	fset.Usage = usage(fset, lookupHelp)
	var model string
	fset.StringVar(&model, "model", "", "path to the model file to work with")
	var arityFlag string
	fset.StringVar(&arityFlag, "arity", "", "section to query (unigram, bigram, trigram); derived from the word count if empty")
	var prefix bool
	fset.BoolVar(&prefix, "prefix", false, "sum the counts of all n-grams with the specified prefix")
	if err := fset.Parse(args); err != nil {
		return err
	}
	if model == "" || fset.NArg() < 1 || (prefix && arityFlag == "") {
		fset.Usage()
		os.Exit(1)
	}
	var fixed ngram.Arity
	if arityFlag != "" {
		var err error
		if fixed, err = ngram.ParseArity(arityFlag); err != nil {
			return err
		}
	}
	varz.SetModel(model)
	m, err := ngram.Open(model)
	if err != nil {
		return err
	}
	defer m.Close()

	for _, text := range fset.Args() {
		a := fixed
		if a == 0 {
			a = ngram.Arity(len(strings.Fields(text)))
		}
		if prefix {
			sum, n, err := m.PrefixCount(a, text)
			if err != nil {
				return err
			}
			fmt.Printf("%s\t%d (%d n-grams)\n", text, sum, n)
			continue
		}
		if a < ngram.Unigram || a > ngram.Trigram {
			fmt.Printf("%s\t(not an n-gram of 1 to 3 words)\n", text)
			continue
		}
		count, ok, err := m.Lookup(a, text)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Printf("%s\t(not found)\n", text)
			continue
		}
		fmt.Printf("%s\t%d\n", text, count)
	}
	return nil
}

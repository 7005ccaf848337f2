package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/grammarcheck/ngramstore/internal/ngram"
	"github.com/grammarcheck/ngramstore/internal/varz"
)

const buildHelp = `build - build a model from ngram<TAB>count files

Each input file contains one "ngram<TAB>count" record per line, where the
words of bigrams and trigrams are separated by a single space. Omitted or
missing files result in empty sections. Malformed lines are skipped and
counted.

By default, the model is built by streaming the inputs, which requires them
to be sorted bytewise (e.g. LC_ALL=C sort) and free of duplicates. With -mem,
the inputs are loaded into memory instead, where they are summed and sorted.

Example:
  % LC_ALL=C sort -o 3.tsv 3.tsv
  % ngram build -unigrams=1.tsv -bigrams=2.tsv -trigrams=3.tsv -out=/srv/ngram/en.ngram
  14:02:11 INFO ngram: wrote /srv/ngram/en.ngram: 2291 unigrams, 4870 bigrams, …

  % ngram build -mem -total=1000000 -unigrams=1.tsv -out=/tmp/small.ngram
`

func build(args []string) error {
	fset := flag.NewFlagSet("build", flag.ExitOnError)
	fset.Usage = usage(fset, buildHelp)
	var unigrams, bigrams, trigrams string
	fset.StringVar(&unigrams, "unigrams", "", "path to the unigram counts")
	fset.StringVar(&bigrams, "bigrams", "", "path to the bigram counts")
	fset.StringVar(&trigrams, "trigrams", "", "path to the trigram counts")
	var out string
	fset.StringVar(&out, "out", "", "path to the model file to create (replaced atomically)")
	var mem bool
	fset.BoolVar(&mem, "mem", false, "load the inputs into memory instead of streaming them")
	var total uint64
	fset.Uint64Var(&total, "total", 0, "total token count (requires -mem; defaults to the sum of unigram counts)")
	var sequential bool
	fset.BoolVar(&sequential, "sequential", false, "size the inputs one after another instead of concurrently")
	if err := fset.Parse(args); err != nil {
		return err
	}
	if out == "" || fset.NArg() != 0 {
		fset.Usage()
		os.Exit(1)
	}
	if total != 0 && !mem {
		return fmt.Errorf("-total requires -mem")
	}
	varz.SetModel(out)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	opts := cfg.BuildOptions(logger)
	if sequential {
		opts.Sequential = true
	}
	sources := ngram.StreamSources{
		Unigrams: unigrams,
		Bigrams:  bigrams,
		Trigrams: trigrams,
	}
	if !mem {
		_, err := ngram.BuildStreaming(ctx, out, sources, opts)
		return err
	}

	w := ngram.NewWriter(opts)
	for _, src := range []struct {
		a    ngram.Arity
		path string
	}{
		{ngram.Unigram, sources.Unigrams},
		{ngram.Bigram, sources.Bigrams},
		{ngram.Trigram, sources.Trigrams},
	} {
		if err := w.AddFile(ctx, src.a, src.path); err != nil {
			return err
		}
	}
	if total != 0 {
		w.SetTotalTokens(total)
	}
	_, err := w.Flush(out)
	return err
}

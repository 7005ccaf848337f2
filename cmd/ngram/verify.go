package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/grammarcheck/ngramstore/internal/ngram"
)

const verifyHelp = `verify - check that a model file is well-formed and sorted

Reads the entire model file and checks that every section is sorted, that
every entry refers to text within its section and that reserved fields are
zero. Models built by streaming unsorted input fail verification.

Example:
  % ngram verify /srv/ngram/*.ngram
  /srv/ngram/de.ngram: ok (1204 unigrams, 3310 bigrams, 4023 trigrams)
  /srv/ngram/en.ngram: ok (2291 unigrams, 4870 bigrams, 6938 trigrams)
`

func verify(args []string) error {
	fset := flag.NewFlagSet("verify", flag.ExitOnError)
	fset.Usage = usage(fset, verifyHelp)
	if err := fset.Parse(args); err != nil {
		return err
	}
	if fset.NArg() < 1 {
		fset.Usage()
		os.Exit(1)
	}
	var failed int
	for _, path := range fset.Args() {
		report, err := ngram.Verify(path)
		if err != nil {
			logger.Error("verification failed", "err", err)
			failed++
			continue
		}
		c := report.Header.Counts
		fmt.Printf("%s: ok (%d unigrams, %d bigrams, %d trigrams)\n", path, c[0], c[1], c[2])
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d model files failed verification", failed, fset.NArg())
	}
	return nil
}

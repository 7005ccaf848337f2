package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/kr/pretty"

	"github.com/grammarcheck/ngramstore/internal/ngram"
)

const headerHelp = `header - display the header of the specified model files

Example:
  % ngram header /srv/ngram/en.ngram
  /srv/ngram/en.ngram: ngram.Header{
      Version:     0x1,
      Counts:      {0x8f3, 0x1306, 0x1b1a},
      TotalTokens: 0xf4240,
      Offsets:     {0x3c, 0x9c4f, 0x1d7c3},
  }
`

func header(args []string) error {
	fset := flag.NewFlagSet("header", flag.ExitOnError)
	fset.Usage = usage(fset, headerHelp)
	if err := fset.Parse(args); err != nil {
		return err
	}
	if fset.NArg() < 1 {
		fset.Usage()
		os.Exit(1)
	}
	for _, path := range fset.Args() {
		m, err := ngram.Open(path)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %# v\n", path, pretty.Formatter(m.Header()))
		if err := m.Close(); err != nil {
			return err
		}
	}
	return nil
}

package main

import (
	"flag"
	"fmt"

	"github.com/grammarcheck/ngramstore/internal/ngram"
	"github.com/grammarcheck/ngramstore/internal/version"
)

const versionHelp = `version - print version information

Example:
  % ngram version
  ngram 4f0c2b1, built with go1.22.1 (model format version 1)
`

func printVersion(args []string) error {
	fset := flag.NewFlagSet("version", flag.ExitOnError)
	fset.Usage = usage(fset, versionHelp)
	if err := fset.Parse(args); err != nil {
		return err
	}
	fmt.Printf("ngram %v (model format version %d)\n", version.Read(), ngram.Version)
	return nil
}

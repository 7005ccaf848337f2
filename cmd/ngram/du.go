package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/grammarcheck/ngramstore/internal/ngram"
)

const duHelp = `du - shows disk usage of the specified model files, per section

Think du(1), but for model files: each section is split into its entry table
and its string blob.

Example:
  % ngram du -h /srv/ngram/en.ngram
  section   entries  table   strings
  unigram   2291     35.8K   14.1K
  bigram    4870     76.1K   51.3K
  trigram   6938     108.4K  109.9K
  232.3K /srv/ngram/en.ngram
`

func humanReadableBytes(v uint64) string {
	switch {
	case v > (1024 * 1024 * 1024):
		return fmt.Sprintf("%.1fG", float64(v)/1024/1024/1024)
	case v > (1024 * 1024):
		return fmt.Sprintf("%.1fM", float64(v)/1024/1024)
	case v > 1024:
		return fmt.Sprintf("%.1fK", float64(v)/1024)
	default:
		return fmt.Sprintf("%d", v)
	}
}

func du(args []string) error {
	fset := flag.NewFlagSet("du", flag.ExitOnError)
	fset.Usage = usage(fset, duHelp)
	var h bool
	fset.BoolVar(&h, "h", false, "human readable output")
	if err := fset.Parse(args); err != nil {
		return err
	}
	if fset.NArg() < 1 {
		return fmt.Errorf("Usage: du <model> [<model>…]")
	}
	format := func(v uint64) string { return fmt.Sprintf("%d", v) }
	if h {
		format = humanReadableBytes
	}
	for _, path := range fset.Args() {
		report, err := ngram.Verify(path)
		if err != nil {
			return err
		}
		st, err := os.Stat(path)
		if err != nil {
			return err
		}
		fmt.Printf("section\tentries\ttable\tstrings\n")
		for i, count := range report.Header.Counts {
			fmt.Printf("%v\t%d\t%s\t%s\n",
				ngram.Arity(i+1),
				count,
				format(count*ngram.EntrySize),
				format(report.StringBytes[i]))
		}
		fmt.Printf("%v %s\n", format(uint64(st.Size())), path)
	}
	return nil
}

package main

import (
	"flag"
	"os"
)

const configHelp = `config - print the effective configuration

Prints the configuration in TOML format: the defaults, overridden by the file
passed via the global -config flag. The output is a valid configuration file.

Example:
  % ngram config -out=/etc/ngram.toml
  % ngram -config=/etc/ngram.toml config
  [build]
    buffer_size = 1048576
  […]
`

func printConfig(args []string) error {
	fset := flag.NewFlagSet("config", flag.ExitOnError)
	fset.Usage = usage(fset, configHelp)
	var out string
	fset.StringVar(&out, "out", "", "write the configuration to this file instead of stdout")
	if err := fset.Parse(args); err != nil {
		return err
	}
	if fset.NArg() != 0 {
		fset.Usage()
		os.Exit(1)
	}
	if out != "" {
		return cfg.Save(out)
	}
	return cfg.Encode(os.Stdout)
}

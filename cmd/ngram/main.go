// Binary ngram builds and inspects n-gram model files.
package main

import (
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/charmbracelet/log"

	"github.com/grammarcheck/ngramstore/internal/config"
	"github.com/grammarcheck/ngramstore/internal/varz"
)

const globalHelp = `ngram - n-gram model swiss-army knife

Syntax: ngram [global flags] <command> [flags] [args]

To get help on any command, use ngram <command> -help or ngram help <command>.

Model query commands:
	header   - display the header of the specified model files
	lookup   - display the count of the specified n-grams
	compare  - compare two candidate words in context
	du       - shows disk usage of the specified model files, per section

Model manipulation commands:
	build    - build a model from ngram<TAB>count files
	dump     - print a model section as ngram<TAB>count lines
	verify   - check that a model file is well-formed and sorted

Other commands:
	config   - print the effective configuration
	version  - print version information
`

func usage(fset *flag.FlagSet, help string) func() {
	return func() {
		fmt.Fprintf(fset.Output(), "%s", help)
		fmt.Fprintf(fset.Output(), "\nFlags:\n")
		fset.PrintDefaults()
	}
}

// Global flags (not command-specific)
var (
	configPath string
	cpuprofile string
	memprofile string
	listen     string
	verbose    bool
)

// Set up by main from the global flags.
var (
	cfg    *config.Config
	logger *log.Logger
)

func init() {
	flag.StringVar(&configPath, "config", "", "path to a TOML configuration file (defaults are used if empty)")
	flag.StringVar(&cpuprofile, "cpuprofile", "", "write cpu profile to this file")
	flag.StringVar(&memprofile, "memprofile", "", "write memory profile to this file")
	flag.StringVar(&listen, "listen", "", "speak HTTP (/metrics, /varz, /goroutinez, /debug/pprof) on this [host]:port if non-empty")
	flag.BoolVar(&verbose, "v", false, "enable debug logging")
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "%s", globalHelp)
		fmt.Fprintf(flag.CommandLine.Output(), "\nGlobal flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}
	level := cfg.LogLevel()
	if verbose {
		level = log.DebugLevel
	}
	log.SetLevel(level)
	logger = log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          "ngram",
		ReportTimestamp: true,
		Level:           level,
	})

	if listen != "" {
		varz.Handle(http.DefaultServeMux)
		go func() {
			if err := http.ListenAndServe(listen, nil); err != nil {
				logger.Fatal(err)
			}
		}()
	}

	if cpuprofile != "" {
		f, err := os.Create(cpuprofile)
		if err != nil {
			logger.Fatal(err)
		}
		defer f.Close()
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	if memprofile != "" {
		defer func() {
			f, err := os.Create(memprofile)
			if err != nil {
				logger.Fatal(err)
			}
			runtime.GC()
			pprof.WriteHeapProfile(f)
			f.Close()
		}()
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		return
	}
	cmd, args := args[0], args[1:]
	if cmd == "help" {
		if len(args) > 0 {
			cmd = args[0]
		} else {
			cmd = ""
		}
		args = []string{"-help"}
	}
	switch cmd {
	case "build":
		err = build(args)
	case "header":
		err = header(args)
	case "lookup":
		err = lookup(args)
	case "compare":
		err = compare(args)
	case "du":
		err = du(args)
	case "dump":
		err = dump(args)
	case "verify":
		err = verify(args)
	case "config":
		err = printConfig(args)
	case "version":
		err = printVersion(args)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		flag.Usage()
		os.Exit(1)
	}
	if err != nil {
		// Fatal skips deferred functions, so stop profiling explicitly.
		if cpuprofile != "" {
			pprof.StopCPUProfile()
		}
		logger.Fatal(err)
	}
}

// Command build-trie builds a token trie from a Marine Regions gazetteer
// export.
//
// Usage:
//
//	go run ./cmd/build-trie marineregions_gazetteer_export.csv mr_trie.gob.gz
//
// The input is a tab-separated file with the header MRGID, GeoName,
// Language, Placetype. The trie is written in gob format, gzip-compressed
// when OUTPUT ends in .gz, or as YAML with --format=yaml.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"

	"github.com/andreiashu/mrtrie"
)

type options struct {
	configPath string
	logLevel   string
	format     string
	printToken string
	input      string
	output     string
}

func (o *options) validate() error {
	if o.input == "" || o.output == "" {
		return fmt.Errorf("expected INPUT and OUTPUT arguments")
	}
	switch o.format {
	case "gob", "yaml":
	default:
		return fmt.Errorf("--format must be gob or yaml, got %q", o.format)
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	opt := &options{}
	pflag.StringVar(&opt.configPath, "config", "", "Path to a YAML file overriding the skipped place types, names and name pattern.")
	pflag.StringVar(&opt.logLevel, "log-level", "info", "Log level (debug, info, warn, error).")
	pflag.StringVar(&opt.format, "format", "gob", "Output format: gob or yaml.")
	pflag.StringVar(&opt.printToken, "print", "", "Print the subtree starting at this token to stdout after building.")
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] INPUT OUTPUT\n", os.Args[0])
		pflag.PrintDefaults()
	}
	pflag.Parse()
	if args := pflag.Args(); len(args) == 2 {
		opt.input, opt.output = args[0], args[1]
	}
	if err := opt.validate(); err != nil {
		pflag.Usage()
		return err
	}

	level, err := logrus.ParseLevel(opt.logLevel)
	if err != nil {
		return fmt.Errorf("--log-level: %w", err)
	}
	logger := logrus.New()
	logger.SetLevel(level)

	cfg, err := mrtrie.LoadFilterConfig(opt.configPath)
	if err != nil {
		return err
	}
	filter, err := cfg.Filter()
	if err != nil {
		return err
	}

	fs := afero.NewOsFs()
	loader := mrtrie.NewLoader(
		mrtrie.WithFilter(filter),
		mrtrie.WithLogger(logger),
		mrtrie.WithFs(fs),
	)
	entities, stats, err := loader.ReadFile(opt.input)
	if err != nil {
		return fmt.Errorf("loading entities: %w", err)
	}
	logger.WithFields(logrus.Fields{
		"records":   stats.Records,
		"malformed": stats.Malformed,
		"filtered":  stats.Filtered,
		"empty":     stats.Empty,
	}).Info("loaded gazetteer")

	root := mrtrie.BuildTrie(entities, logger)

	if opt.printToken != "" {
		if err := root.PrintFrom(os.Stdout, opt.printToken); err != nil {
			logger.Warn(err)
		}
	}

	logger.Infof("writing trie to file %s", opt.output)
	return storeTrie(fs, opt.format, opt.output, root)
}

func storeTrie(fs afero.Fs, format, path string, root *mrtrie.Node) error {
	switch format {
	case "yaml":
		return mrtrie.StoreYAML(fs, path, root)
	case "gob":
		return mrtrie.Store(fs, path, root)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

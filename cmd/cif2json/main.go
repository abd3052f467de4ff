// cif2json parses an mmCIF file, resolves the parent-child
// relationships between its categories and prints the nested
// structure as indented JSON. Plain files are memory-mapped and
// decoded lazily; .gz files are read through the decompressor.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/lucas-ebi/mmcif/cif"
	"github.com/lucas-ebi/mmcif/meta"
	"github.com/lucas-ebi/mmcif/nest"
	"github.com/lucas-ebi/mmcif/zwrap"
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(),
		"usage: %s [options] file.cif[.gz]\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "cif2json: %v\n", err)
		os.Exit(1)
	}
}

func mainImpl() error {
	var (
		cats    = flag.String("c", "", "comma separated category allow-list")
		schema  = flag.String("m", "", "YAML schema file with category keys and parent links")
		blockNm = flag.String("b", "", "data block to resolve (default: the first one)")
		verbose = flag.Bool("v", false, "debug logging, including skipped lines")
	)
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() != 1 {
		usage()
		return errors.New("exactly one input file expected")
	}
	path := flag.Arg(0)

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:   level,
		NoColor: !isatty.IsTerminal(os.Stderr.Fd()),
	}))

	var prov meta.Provider
	if *schema != "" {
		p, err := meta.Load(*schema)
		if err != nil {
			return err
		}
		prov = p
	}

	r := cif.NewReader()
	r.SetLogger(logger)
	if *cats != "" {
		r.SetCategories(strings.Split(*cats, ","))
	}

	var cont *cif.Container
	var err error
	if strings.HasSuffix(path, ".gz") {
		src, oerr := zwrap.Open(path)
		if oerr != nil {
			return oerr
		}
		cont, err = r.Parse(src)
		src.Close()
	} else {
		cont, err = r.ParseFile(path)
	}
	if err != nil {
		return err
	}
	defer cont.Close()

	names := cont.BlockNames()
	if len(names) == 0 {
		return errors.New("no data blocks in " + path)
	}
	name := names[0]
	if *blockNm != "" {
		name = *blockNm
	}
	b, err := cont.Block(name)
	if err != nil {
		return err
	}

	resolver := nest.New(prov)
	resolver.SetLogger(logger)
	tree := resolver.Resolve(b)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(tree)
}

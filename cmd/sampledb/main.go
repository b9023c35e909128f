// Command sampledb writes the sample database served as the fallback source.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/bryan-buckman/condominio/internal/sample"
)

func main() {
	out := flag.String("o", "data/sample.db", "output path")
	empty := flag.Bool("empty", false, "write the schema without demo rows")
	force := flag.Bool("f", false, "overwrite an existing file")
	flag.Parse()

	if _, err := os.Stat(*out); err == nil {
		if !*force {
			fmt.Fprintf(os.Stderr, "%s already exists, use -f to overwrite\n", *out)
			os.Exit(1)
		}
		if err := os.Remove(*out); err != nil {
			fmt.Fprintf(os.Stderr, "remove %s: %v\n", *out, err)
			os.Exit(1)
		}
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "create directory: %v\n", err)
		os.Exit(1)
	}
	if err := sample.Build(*out, !*empty); err != nil {
		fmt.Fprintf(os.Stderr, "build sample database: %v\n", err)
		os.Exit(1)
	}

	fi, err := os.Stat(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "stat %s: %v\n", *out, err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s (%s)\n", *out, humanize.Bytes(uint64(fi.Size())))
}

// Package main generates CLI reference documentation from the islookup command tree.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra/doc"

	"github.com/donaldgifford/intellisearch-client/cmd/islookup/cmd"
)

const (
	formatMarkdown = "markdown"
	formatMan      = "man"
)

func main() {
	output := flag.String("output", "docs/cli", "output directory for generated docs")
	format := flag.String("format", formatMarkdown, "output format: markdown or man")
	flag.Parse()

	if err := run(*output, *format); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("islookup %s docs generated in %s/\n", *format, *output)
}

func run(output, format string) error {
	if err := os.MkdirAll(output, 0o750); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	root := cmd.Root()
	root.DisableAutoGenTag = true

	switch format {
	case formatMarkdown:
		if err := doc.GenMarkdownTreeCustom(root, output, frontMatter, linkHandler); err != nil {
			return fmt.Errorf("generating markdown: %w", err)
		}
	case formatMan:
		// Title is left empty so each page is titled after its command path.
		header := &doc.GenManHeader{
			Section: "1",
			Source:  "islookup " + cmd.Version,
			Manual:  "IntelliSearch Client Manual",
		}
		if err := doc.GenManTree(root, header, output); err != nil {
			return fmt.Errorf("generating man pages: %w", err)
		}
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	return nil
}

// frontMatter titles each page after its command path, so islookup_find.md
// becomes "islookup find".
func frontMatter(filename string) string {
	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	return fmt.Sprintf("---\ntitle: %q\n---\n\n", strings.ReplaceAll(name, "_", " "))
}

func linkHandler(name string) string {
	return strings.ToLower(name)
}

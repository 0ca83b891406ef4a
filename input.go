package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"seo-cluster/pkg/keyword"
)

// keywordInput collects keywords from --keywords, --file or piped stdin.
type keywordInput struct {
	text string
	file string
	// stdinTTY reports whether stdin is a terminal; nil checks os.Stdin.
	stdinTTY func() bool
}

func (in *keywordInput) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&in.text, "keywords", "k", "", "keywords separated by newlines or commas")
	cmd.Flags().StringVarP(&in.file, "file", "f", "", "CSV file with keywords in the first column, or a text file with one per line")
}

func (in *keywordInput) read(stdin io.Reader) ([]string, error) {
	var raw []string
	switch {
	case in.text != "":
		raw = keyword.ParseLines(in.text)
	case in.file != "":
		f, err := os.Open(in.file)
		if err != nil {
			return nil, fmt.Errorf("failed to open keyword file: %w", err)
		}
		defer f.Close()
		if strings.EqualFold(filepath.Ext(in.file), ".csv") {
			raw, err = keyword.ParseCSV(f)
			if err != nil {
				return nil, err
			}
		} else {
			data, err := io.ReadAll(f)
			if err != nil {
				return nil, fmt.Errorf("failed to read keyword file: %w", err)
			}
			raw = keyword.ParseLines(string(data))
		}
	case !in.isTerminal():
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		raw = keyword.ParseLines(string(data))
	}

	keywords := keyword.Dedupe(raw)
	if len(keywords) == 0 {
		return nil, fmt.Errorf("no keywords given: use --keywords, --file or pipe them on stdin")
	}
	return keywords, nil
}

func (in *keywordInput) isTerminal() bool {
	if in.stdinTTY != nil {
		return in.stdinTTY()
	}
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

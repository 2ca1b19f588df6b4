package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"sheetqa/internal/domain"
)

// printer writes results to out and diagnostics to errOut.
type printer struct {
	out       io.Writer
	errOut    io.Writer
	useColors bool
}

func newPrinter(cmd *cobra.Command) (*printer, error) {
	useColors, err := resolveColors(colorMode)
	if err != nil {
		return nil, err
	}
	return &printer{out: cmd.OutOrStdout(), errOut: cmd.ErrOrStderr(), useColors: useColors}, nil
}

func resolveColors(mode string) (bool, error) {
	switch mode {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "auto":
		if _, ok := os.LookupEnv("NO_COLOR"); ok {
			return false, nil
		}
		if os.Getenv("TERM") == "dumb" {
			return false, nil
		}
		return !color.NoColor, nil
	default:
		return false, fmt.Errorf("invalid color mode %q: must be auto, always, or never", mode)
	}
}

func (p *printer) Println(text string) {
	fmt.Fprintln(p.out, text)
}

func (p *printer) Header(title string) {
	if p.useColors {
		color.New(color.FgWhite, color.Bold).Fprintf(p.errOut, "%s\n", title)
		return
	}
	fmt.Fprintf(p.errOut, "%s\n", title)
}

func (p *printer) Info(format string, args ...interface{}) {
	if p.useColors {
		color.New(color.FgCyan).Fprintf(p.errOut, format+"\n", args...)
		return
	}
	fmt.Fprintf(p.errOut, format+"\n", args...)
}

func (p *printer) Warn(format string, args ...interface{}) {
	if p.useColors {
		color.New(color.FgYellow).Fprintf(p.errOut, "⚠ "+format+"\n", args...)
		return
	}
	fmt.Fprintf(p.errOut, "⚠ "+format+"\n", args...)
}

// renderRanking prints the first top entries of ranked. top <= 0 prints all.
func renderRanking(w io.Writer, snapshot *domain.DocumentSnapshot, ranked []domain.ScoredDocument, top int) {
	if top <= 0 || top > len(ranked) {
		top = len(ranked)
	}

	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoWrap: tw.WrapNone,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoFormat: tw.On,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{
					ShowHeader: tw.Off,
				},
			},
		}),
	)

	rows := make([][]string, 0, top)
	for i, doc := range ranked[:top] {
		words := ""
		if body, ok := snapshot.Body(doc.Title); ok {
			words = strconv.Itoa(domain.CountWords(body))
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			strconv.FormatFloat(doc.Score, 'f', 4, 64),
			words,
			doc.Title,
		})
	}

	table.Header([]string{"rank", "score", "words", "title"})
	_ = table.Bulk(rows)
	_ = table.Render()
}

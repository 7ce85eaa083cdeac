package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/franz/music-catalog/internal/catalog"
	"github.com/franz/music-catalog/internal/util"
	"github.com/olekukonko/tablewriter"
)

// heading prints a section title
func heading(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w)
	color.New(color.FgYellow, color.Bold).Fprintf(w, format+"\n", args...)
	fmt.Fprintln(w, util.Rule('-', 60))
}

// newTable returns a table writer in the house style
func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	return table
}

// num renders an optional number
func num(n catalog.Num, decimals int) string {
	if !n.Valid {
		return "N/A"
	}
	return util.FormatNumber(n.Value, decimals)
}

func count(n int) string {
	return util.FormatNumber(float64(n), 0)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

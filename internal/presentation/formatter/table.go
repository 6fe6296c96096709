package formatter

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/penwyp/go-tally/internal/util"
)

type TableFormatter struct {
	headers []string
}

func NewTableFormatter() *TableFormatter {
	return &TableFormatter{
		headers: []string{"Topic", "Count", "Share"},
	}
}

func (f *TableFormatter) Format(w io.Writer, stats Stats) error {
	table := tablewriter.NewWriter(w)
	table.Header(f.headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	data := make([][]string, 0, len(stats.Rows)+1)
	for _, r := range stats.Rows {
		data = append(data, []string{
			swatch(util.Printable(r.Topic), r.Color),
			strconv.Itoa(r.Count),
			formatShare(r.Share),
		})
	}
	data = append(data, []string{"Total", strconv.Itoa(stats.Total), ""})

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "Events: %d / %d\n", stats.Events, stats.Capacity)
	return err
}

// swatch paints the name on the topic's color. With color disabled it is
// the plain name.
func swatch(name, hex string) string {
	bg, err := util.ParseHexColor(hex)
	if err != nil {
		return name
	}
	fg, _ := util.ParseHexColor(util.ContrastColor(hex))
	c := color.RGB(fg.R, fg.G, fg.B).AddBgRGB(bg.R, bg.G, bg.B)
	return c.Sprint(" " + name + " ")
}

func formatShare(share float64) string {
	return fmt.Sprintf("%.1f%%", share*100)
}

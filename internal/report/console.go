package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/olekukonko/tablewriter"

	"github.com/K8pain/optopussy/internal/models"
	"github.com/K8pain/optopussy/internal/util"
)

// PrintBucketSummary renders the top buckets by mean percentage return.
// Values are rounded for display; the CSV artifacts keep full precision.
func PrintBucketSummary(w io.Writer, stats []*models.BucketStat, top int) {
	if len(stats) == 0 {
		fmt.Fprintln(w, "no buckets produced")
		return
	}

	ranked := make([]*models.BucketStat, len(stats))
	copy(ranked, stats)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Mean > ranked[j].Mean })
	if top > 0 && len(ranked) > top {
		ranked = ranked[:top]
	}

	fmt.Fprintln(w, "Best buckets by mean pct change:")
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"DTE", "OTM %", "COUNT", "MEAN", "STD", "P25", "P50", "P75"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetColumnSeparator("")
	for _, b := range ranked {
		table.Append([]string{
			b.DTERange.String(),
			b.OTMPctRange.String(),
			fmt.Sprintf("%d", b.Count),
			cell(b.Mean),
			cell(b.Std),
			cell(b.P25),
			cell(b.P50),
			cell(b.P75),
		})
	}
	table.Render()
}

// cell formats one statistic at display precision.
func cell(v float64) string {
	return fmt.Sprintf("%.4f", util.RoundToTick(v, 0.0001))
}

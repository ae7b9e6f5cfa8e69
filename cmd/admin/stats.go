package main

import (
	"context"
	"fmt"
	"time"
)

// printStats shows the stored snapshot as last written by a mutation; it does not recompute
func (cli *commandLine) printStats(ctx context.Context) error {
	stats, err := cli.deps.StatsService.Current(ctx)
	if err != nil {
		return err
	}

	updated := "never"
	if stats.UpdatedAt != nil {
		updated = stats.UpdatedAt.Format(time.RFC3339)
	}
	avg := "-"
	if stats.AvgMarks != nil {
		avg = fmt.Sprintf("%.2f", *stats.AvgMarks)
	}

	fmt.Fprintf(cli.out, "students: %d\n", stats.TotalStudents)
	fmt.Fprintf(cli.out, "average:  %s\n", avg)
	fmt.Fprintf(cli.out, "highest:  %s\n", intOrDash(stats.HighestMarks))
	fmt.Fprintf(cli.out, "lowest:   %s\n", intOrDash(stats.LowestMarks))
	fmt.Fprintf(cli.out, "updated:  %s\n", updated)
	for _, bucket := range stats.Distribution {
		fmt.Fprintf(cli.out, "  %s: %d\n", bucket.Grade, bucket.Count)
	}
	return nil
}

func intOrDash(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprint(*v)
}

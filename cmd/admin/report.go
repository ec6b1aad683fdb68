package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"boxoffice/internal/models"

	"golang.org/x/text/message"
)

func showingHeader() string {
	labels := make([]string, 0, models.ShowingCount)
	for _, s := range models.Showings() {
		labels = append(labels, s.Label())
	}
	return strings.Join(labels, "\t")
}

func printOccupancy(w io.Writer, p *message.Printer, points []models.OccupancyPoint) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "date\t%s\ttotal\t%%\t\n", showingHeader())

	for _, pt := range points {
		if !pt.Initialized {
			fmt.Fprintf(tw, "%s\t-\t-\t-\t-\tno data\t\t\n", pt.Date)
			continue
		}
		r := pt.Report
		p.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%.2f\t\n",
			r.Date, r.Sold[0], r.Sold[1], r.Sold[2], r.Sold[3], r.DailyTotal, r.DailyPercent*100)
	}
	tw.Flush()
}

func printRevenue(w io.Writer, p *message.Printer, points []models.RevenuePoint) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "date\t%s\ttotal\t\n", showingHeader())

	var sum models.Amount
	for _, pt := range points {
		if !pt.Initialized {
			fmt.Fprintf(tw, "%s\t-\t-\t-\t-\tno data\t\n", pt.Date)
			continue
		}
		r := pt.Report
		sum += r.DailyTotal
		p.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t\n", r.Date,
			int64(r.Revenue[0]), int64(r.Revenue[1]), int64(r.Revenue[2]), int64(r.Revenue[3]),
			int64(r.DailyTotal))
	}
	if len(points) > 1 {
		p.Fprintf(tw, "\t\t\t\t\t%d\t\n", int64(sum))
	}
	tw.Flush()
}

func printDump(w io.Writer, seats []models.SeatDay, sales []models.Sale) {
	tw := tabwriter.NewWriter(w, 0, 4, 1, ' ', 0)

	fmt.Fprintln(tw, "seats")
	fmt.Fprintf(tw, "rec_no\tseat\t%s\tdate\n", showingHeader())
	for _, s := range seats {
		flags := make([]string, 0, models.ShowingCount)
		for _, sold := range s.Sold {
			if sold {
				flags = append(flags, "1")
			} else {
				flags = append(flags, "0")
			}
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", s.RecNo, s.SeatCode, strings.Join(flags, "\t"), s.Date)
	}

	fmt.Fprintln(tw, "sales")
	fmt.Fprintf(tw, "rec_no\tdate\tseat\t%s\n", showingHeader())
	for _, s := range sales {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%d\t%d\n", s.RecNo, s.Date, s.SeatCode,
			int64(s.Amounts[0]), int64(s.Amounts[1]), int64(s.Amounts[2]), int64(s.Amounts[3]))
	}
	tw.Flush()
}

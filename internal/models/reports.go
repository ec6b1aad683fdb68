package models

// OccupancyReport - отчет по проданным местам за день
type OccupancyReport struct {
	Date         Day               `json:"date"`
	Sold         [ShowingCount]int `json:"sold"`
	DailyTotal   int               `json:"daily_total"`
	DailyPercent float64           `json:"daily_percent"`
}

// NewOccupancyReport derives the daily total and the fraction of DailyCapacity
// from the per-showing counts.
func NewOccupancyReport(day Day, sold [ShowingCount]int) *OccupancyReport {
	total := 0
	for _, n := range sold {
		total += n
	}
	return &OccupancyReport{
		Date:         day,
		Sold:         sold,
		DailyTotal:   total,
		DailyPercent: float64(total) / float64(DailyCapacity),
	}
}

// SoldFor returns the count for one showing.
func (r *OccupancyReport) SoldFor(s Showing) int {
	if !s.Valid() {
		return 0
	}
	return r.Sold[s]
}

// RevenueReport - отчет по выручке за день
type RevenueReport struct {
	Date       Day                  `json:"date"`
	Revenue    [ShowingCount]Amount `json:"revenue"`
	DailyTotal Amount               `json:"daily_total"`
}

// NewRevenueReport sums the per-showing revenue into the daily total.
func NewRevenueReport(day Day, revenue [ShowingCount]Amount) *RevenueReport {
	var total Amount
	for _, a := range revenue {
		total += a
	}
	return &RevenueReport{
		Date:       day,
		Revenue:    revenue,
		DailyTotal: total,
	}
}

// RevenueFor returns the revenue of one showing.
func (r *RevenueReport) RevenueFor(s Showing) Amount {
	if !s.Valid() {
		return 0
	}
	return r.Revenue[s]
}

// OccupancyPoint is one day of an occupancy series. Days that were never
// initialized carry Initialized=false and a zero report.
type OccupancyPoint struct {
	Date        Day             `json:"date"`
	Initialized bool            `json:"initialized"`
	Report      OccupancyReport `json:"report"`
}

// RevenuePoint is one day of a revenue series.
type RevenuePoint struct {
	Date        Day           `json:"date"`
	Initialized bool          `json:"initialized"`
	Report      RevenueReport `json:"report"`
}

// SeriesSummary aggregates a series over its initialized days.
type SeriesSummary struct {
	Days        int     `json:"days"`
	Initialized int     `json:"initialized"`
	SeatsSold   int     `json:"seats_sold"`
	Revenue     Amount  `json:"revenue"`
	AvgPercent  float64 `json:"avg_percent"`
}

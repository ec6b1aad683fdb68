package models

// Amount is a ticket price or revenue sum in whole currency units.
type Amount int64

// SeatDay is a row of the seats table: sold flags of one seat on one date.
type SeatDay struct {
	RecNo    int64              `json:"rec_no" db:"rec_no"`
	SeatCode SeatCode           `json:"seat_code" db:"seat_code"`
	Sold     [ShowingCount]bool `json:"sold"`
	Date     Day                `json:"rec_date" db:"rec_date"`
}

// IsSold reports the flag for one showing.
func (s SeatDay) IsSold(showing Showing) bool {
	if !showing.Valid() {
		return false
	}
	return s.Sold[showing]
}

// Sale is a row of the sales table: amounts taken for one seat on one date.
type Sale struct {
	RecNo    int64                `json:"rec_no" db:"rec_no"`
	Date     Day                  `json:"rec_date" db:"rec_date"`
	SeatCode SeatCode             `json:"seat_code" db:"seat_code"`
	Amounts  [ShowingCount]Amount `json:"amounts"`
}

// AmountFor returns the amount recorded for one showing.
func (s Sale) AmountFor(showing Showing) Amount {
	if !showing.Valid() {
		return 0
	}
	return s.Amounts[showing]
}

// Mismatch is a (date, seat, showing) where the seat flag and the sale amount
// disagree, or where one of the paired records is missing.
type Mismatch struct {
	Date     Day      `json:"date"`
	SeatCode SeatCode `json:"seat_code"`
	Showing  Showing  `json:"showing"`
	Sold     bool     `json:"sold"`
	Amount   Amount   `json:"amount"`
	Reason   string   `json:"reason"`
}

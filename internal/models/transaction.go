package models

import "sort"

// FetchStatus distinguishes a confirmed-empty month from a failed fetch.
type FetchStatus int

const (
	StatusData FetchStatus = iota
	StatusEmpty
	StatusFailed
)

// String returns the string representation of a FetchStatus
func (s FetchStatus) String() string {
	switch s {
	case StatusData:
		return "data"
	case StatusEmpty:
		return "empty"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// TransactionRecord is one apartment sale reported by the transaction registry.
// Price is in 10k-won units, Area in m². ContractDate is "YYYY-MM-DD".
type TransactionRecord struct {
	LawdCd       string  `json:"lawd_cd"`
	AptName      string  `json:"apt_name"`
	Dong         string  `json:"dong"`
	Price        int     `json:"price"`
	Area         float64 `json:"area"`
	Floor        string  `json:"floor"`
	BuiltYear    string  `json:"built_year"`
	ContractDate string  `json:"contract_date"`
}

// FetchResult is the outcome of a single region-month registry call.
// Reason is only set when Status is StatusFailed.
type FetchResult struct {
	Status FetchStatus         `json:"status"`
	Rows   []TransactionRecord `json:"rows,omitempty"`
	Reason string              `json:"reason,omitempty"`
}

// MonthStatus reports how one month of a period fetch resolved.
type MonthStatus struct {
	YearMonth string      `json:"year_month"`
	Status    FetchStatus `json:"status"`
	Rows      int         `json:"rows"`
	Reason    string      `json:"reason,omitempty"`
}

// PeriodResult is the merged outcome of a trailing-window fetch. Rows holds
// every transaction from months that returned data, in window order; Months
// carries the per-month status list so callers can tell an outage from a
// genuinely quiet market.
type PeriodResult struct {
	Rows   []TransactionRecord `json:"rows"`
	Months []MonthStatus       `json:"months"`
}

// SortByDateDesc orders rows most-recent-first. Ties keep their relative order.
func SortByDateDesc(rows []TransactionRecord) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].ContractDate > rows[j].ContractDate
	})
}

// MostRecent returns the latest transaction in rows, or false if rows is empty.
func MostRecent(rows []TransactionRecord) (TransactionRecord, bool) {
	if len(rows) == 0 {
		return TransactionRecord{}, false
	}
	best := rows[0]
	for _, r := range rows[1:] {
		if r.ContractDate > best.ContractDate {
			best = r
		}
	}
	return best, true
}

// RegionStats summarizes the archived transactions for one region.
type RegionStats struct {
	LawdCd            string  `json:"lawd_cd"`
	TotalTransactions int     `json:"total_transactions"`
	AveragePrice      float64 `json:"average_price"`
	AvgPricePerSqm    float64 `json:"avg_price_per_sqm"`
}

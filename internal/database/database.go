package database

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"wondash/server/internal/models"
)

// Archive accumulates every transaction row ever observed from the registry,
// so recent-sales and price-level queries survive cache expiry and outages.
type Archive struct {
	db *sql.DB
}

func NewArchive(dbPath string) (*Archive, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Serialize concurrent writers instead of surfacing SQLITE_BUSY
	_, err = db.Exec("PRAGMA busy_timeout = 5000")
	if err != nil {
		return nil, err
	}

	return &Archive{db: db}, nil
}

// InsertTransactions stores a batch, silently skipping rows already archived.
func (a *Archive) InsertTransactions(records []models.TransactionRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := a.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO transactions
			(lawd_cd, apt_name, dong, price, area, floor, built_year, contract_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.Exec(r.LawdCd, r.AptName, r.Dong, r.Price, r.Area, r.Floor, r.BuiltYear, r.ContractDate); err != nil {
			return fmt.Errorf("failed to insert transaction: %w", err)
		}
	}

	return tx.Commit()
}

// RecentSales returns the latest archived transactions for a region.
func (a *Archive) RecentSales(lawdCd string, limit int) ([]models.TransactionRecord, error) {
	rows, err := a.db.Query(`
		SELECT lawd_cd, apt_name, dong, price, area, floor, built_year, contract_date
		FROM transactions
		WHERE lawd_cd = ?
		ORDER BY contract_date DESC, id DESC
		LIMIT ?
	`, lawdCd, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.TransactionRecord
	for rows.Next() {
		var r models.TransactionRecord
		err := rows.Scan(&r.LawdCd, &r.AptName, &r.Dong, &r.Price, &r.Area, &r.Floor, &r.BuiltYear, &r.ContractDate)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// RegionStats summarizes the archive for one region. Price-per-m² averages
// skip rows with a zero area (degraded parses).
func (a *Archive) RegionStats(lawdCd string) (models.RegionStats, error) {
	stats := models.RegionStats{LawdCd: lawdCd}

	err := a.db.QueryRow(`
		SELECT
			COUNT(*),
			COALESCE(AVG(price), 0),
			COALESCE(AVG(CASE WHEN area > 0 THEN price * 10000.0 / area END), 0)
		FROM transactions
		WHERE lawd_cd = ?
	`, lawdCd).Scan(&stats.TotalTransactions, &stats.AveragePrice, &stats.AvgPricePerSqm)
	if err != nil {
		return models.RegionStats{}, err
	}
	return stats, nil
}

func (a *Archive) Close() error {
	return a.db.Close()
}

package database

func (a *Archive) RunMigrations() error {
	// The unique index doubles as the dedup key for INSERT OR IGNORE
	_, err := a.db.Exec(`
		CREATE TABLE IF NOT EXISTS transactions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			lawd_cd TEXT NOT NULL,
			apt_name TEXT NOT NULL,
			dong TEXT,
			price INTEGER NOT NULL,
			area REAL,
			floor TEXT,
			built_year TEXT,
			contract_date TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(lawd_cd, apt_name, contract_date, price, area, floor)
		);
	`)
	if err != nil {
		return err
	}

	_, err = a.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_transactions_region_date
		ON transactions(lawd_cd, contract_date);
	`)
	if err != nil {
		return err
	}

	return nil
}

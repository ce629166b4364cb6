package repositories

import (
	"database/sql"
	"time"

	"propdesk/internal/platform/models"
)

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(account *models.TradingAccount) error {
	_, err := r.db.Exec(`
		INSERT INTO trading_accounts (id, user_id, account_number, platform_account_id, program, status, balance, currency, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, account.ID, account.UserID, account.AccountNumber, account.PlatformAccountID,
		account.Program, account.Status, account.Balance, account.Currency,
		account.CreatedAt, account.UpdatedAt)
	return err
}

func (r *AccountRepository) GetByID(id string) (*models.TradingAccount, error) {
	account := &models.TradingAccount{}
	err := r.db.QueryRow(`
		SELECT id, user_id, account_number, platform_account_id, program, status, balance, currency, created_at, updated_at
		FROM trading_accounts WHERE id = ?
	`, id).Scan(&account.ID, &account.UserID, &account.AccountNumber, &account.PlatformAccountID,
		&account.Program, &account.Status, &account.Balance, &account.Currency,
		&account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return account, nil
}

func (r *AccountRepository) ListByUser(userID string) ([]*models.TradingAccount, error) {
	return r.list(`
		SELECT id, user_id, account_number, platform_account_id, program, status, balance, currency, created_at, updated_at
		FROM trading_accounts WHERE user_id = ? ORDER BY created_at DESC
	`, userID)
}

func (r *AccountRepository) List(limit, offset int) ([]*models.TradingAccount, error) {
	return r.list(`
		SELECT id, user_id, account_number, platform_account_id, program, status, balance, currency, created_at, updated_at
		FROM trading_accounts ORDER BY created_at DESC LIMIT ? OFFSET ?
	`, limit, offset)
}

func (r *AccountRepository) UpdateStatus(id, status string) error {
	_, err := r.db.Exec(`UPDATE trading_accounts SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().Unix(), id)
	return err
}

func (r *AccountRepository) UpdateBalance(id string, balance float64) error {
	_, err := r.db.Exec(`UPDATE trading_accounts SET balance = ?, updated_at = ? WHERE id = ?`,
		balance, time.Now().Unix(), id)
	return err
}

func (r *AccountRepository) list(query string, args ...interface{}) ([]*models.TradingAccount, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.TradingAccount
	for rows.Next() {
		account := &models.TradingAccount{}
		if err := rows.Scan(&account.ID, &account.UserID, &account.AccountNumber, &account.PlatformAccountID,
			&account.Program, &account.Status, &account.Balance, &account.Currency,
			&account.CreatedAt, &account.UpdatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

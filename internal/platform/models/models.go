package models

type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	FullName     string `json:"full_name"`
	Role         string `json:"role"`
	LastLoginAt  *int64 `json:"last_login_at,omitempty"`
	CreatedAt    int64  `json:"created_at"`
	UpdatedAt    int64  `json:"updated_at"`
	DeletedAt    *int64 `json:"deleted_at,omitempty"`
}

const (
	RoleAdmin  = "admin"
	RoleTrader = "trader"
)

type TradingAccount struct {
	ID                string  `json:"id"`
	UserID            string  `json:"user_id"`
	AccountNumber     string  `json:"account_number"`
	PlatformAccountID string  `json:"platform_account_id"`
	Program           string  `json:"program"`
	Status            string  `json:"status"`
	Balance           float64 `json:"balance"`
	Currency          string  `json:"currency"`
	CreatedAt         int64   `json:"created_at"`
	UpdatedAt         int64   `json:"updated_at"`
}

const (
	AccountStatusActive   = "active"
	AccountStatusDisabled = "disabled"
	AccountStatusBreached = "breached"
)

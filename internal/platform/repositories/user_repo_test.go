package repositories

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"propdesk/internal/platform/models"
)

func TestUserRepository_GetByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewUserRepository(db)

	rows := sqlmock.NewRows([]string{"id", "email", "password_hash", "full_name", "role", "last_login_at", "created_at", "updated_at", "deleted_at"}).
		AddRow("usr_1", "ann@example.com", "$2a$10$hash", "Ann Trader", "trader", nil, 1234567890, 1234567890, nil)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email = ?").
		WithArgs("ann@example.com").
		WillReturnRows(rows)

	user, err := repo.GetByEmail("ann@example.com")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if user == nil || user.ID != "usr_1" || user.Role != "trader" {
		t.Errorf("Unexpected user: %+v", user)
	}

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email = ?").
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	user, err = repo.GetByEmail("ghost@example.com")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if user != nil {
		t.Error("Expected nil for unknown email")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestUserRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO users").
		WithArgs("usr_1", "ann@example.com", "$2a$10$hash", "Ann Trader", "trader", int64(1234567890), int64(1234567890)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	user := &models.User{
		ID:           "usr_1",
		Email:        "ann@example.com",
		PasswordHash: "$2a$10$hash",
		FullName:     "Ann Trader",
		Role:         "trader",
		CreatedAt:    1234567890,
		UpdatedAt:    1234567890,
	}
	if err := repo.Create(user); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestUserRepository_UpdateRole(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewUserRepository(db)

	mock.ExpectExec("UPDATE users SET role = ?").
		WithArgs("admin", sqlmock.AnyArg(), "usr_1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdateRole("usr_1", "admin"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/faculty-portal-api/internal/models"
)

const accountColumns = `id, name, email, password_hash, role, department, designation, is_approved, created_at, updated_at`

// AccountRepository provides database access for accounts.
type AccountRepository struct {
	db *sqlx.DB
}

// NewAccountRepository creates a new instance of AccountRepository.
func NewAccountRepository(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// FindByEmail returns an account by its lower-cased email.
func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1 LIMIT 1`
	var account models.Account
	if err := r.db.GetContext(ctx, &account, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find account by email: %w", err)
	}
	return &account, nil
}

// FindByID returns an account by identifier.
func (r *AccountRepository) FindByID(ctx context.Context, id string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 LIMIT 1`
	var account models.Account
	if err := r.db.GetContext(ctx, &account, query, id); err != nil {
		if err = notFoundOnBadID(err); err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find account by id: %w", err)
	}
	return &account, nil
}

// List returns every account, newest first.
func (r *AccountRepository) List(ctx context.Context) ([]models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY created_at DESC`
	accounts := []models.Account{}
	if err := r.db.SelectContext(ctx, &accounts, query); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

// Directory returns the public directory projection ordered by name.
func (r *AccountRepository) Directory(ctx context.Context) ([]models.DirectoryEntry, error) {
	const query = `SELECT id, name, email, department, role FROM accounts ORDER BY name ASC`
	entries := []models.DirectoryEntry{}
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("list directory: %w", err)
	}
	return entries, nil
}

// CountByRole returns the number of accounts per role.
func (r *AccountRepository) CountByRole(ctx context.Context) (map[models.Role]int, error) {
	const query = `SELECT role, COUNT(*) AS total FROM accounts GROUP BY role`
	var rows []struct {
		Role  models.Role `db:"role"`
		Total int         `db:"total"`
	}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count accounts by role: %w", err)
	}
	counts := make(map[models.Role]int, len(rows))
	for _, row := range rows {
		counts[row.Role] = row.Total
	}
	return counts, nil
}

// Create inserts a new account.
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now

	const query = `INSERT INTO accounts (id, name, email, password_hash, role, department, designation, is_approved, created_at, updated_at) VALUES (:id, :name, :email, :password_hash, :role, :department, :designation, :is_approved, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, account); err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

// Update writes every mutable column of the account.
func (r *AccountRepository) Update(ctx context.Context, account *models.Account) error {
	account.UpdatedAt = time.Now().UTC()
	const query = `UPDATE accounts SET name = :name, email = :email, password_hash = :password_hash, role = :role, department = :department, designation = :designation, is_approved = :is_approved, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, account)
	if err != nil {
		if err = notFoundOnBadID(err); err == sql.ErrNoRows {
			return err
		}
		return fmt.Errorf("update account: %w", err)
	}
	return expectAffected(res, "update account")
}

// SetApproval sets the approval flag.
func (r *AccountRepository) SetApproval(ctx context.Context, id string, approved bool) error {
	const query = `UPDATE accounts SET is_approved = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, approved, time.Now().UTC())
	if err != nil {
		if err = notFoundOnBadID(err); err == sql.ErrNoRows {
			return err
		}
		return fmt.Errorf("set account approval: %w", err)
	}
	return expectAffected(res, "set account approval")
}

// Delete removes the account row. Tasks and leave requests keep their references.
func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM accounts WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		if err = notFoundOnBadID(err); err == sql.ErrNoRows {
			return err
		}
		return fmt.Errorf("delete account: %w", err)
	}
	return expectAffected(res, "delete account")
}

// expectAffected maps a write that touched no rows to sql.ErrNoRows.
func expectAffected(res sql.Result, op string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

const expenseColumns = `id, group_id, description, amount, date, paid_by, split_type, created_by, created_at`

// CreateExpense persists a new expense with its split details.
func (s *Store) CreateExpense(ctx context.Context, expense *models.Expense) error {
	// Generate ID if not set
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}
	if expense.Date == 0 {
		expense.Date = expense.CreatedAt
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, s.q(
		`INSERT INTO expenses (`+expenseColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		expense.ID, expense.GroupID, expense.Description, expense.Amount, expense.Date,
		expense.PaidBy, expense.SplitType, expense.CreatedBy, expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for i, detail := range expense.SplitDetails {
		_, err = tx.ExecContext(ctx, s.q(
			`INSERT INTO expense_splits (expense_id, position, user_id, amount) VALUES (?, ?, ?, ?)`),
			expense.ID, i, detail.UserID, detail.Amount,
		)
		if err != nil {
			return fmt.Errorf("failed to insert split detail: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (*models.Expense, error) {
	e := &models.Expense{}
	err := row.Scan(&e.ID, &e.GroupID, &e.Description, &e.Amount, &e.Date,
		&e.PaidBy, &e.SplitType, &e.CreatedBy, &e.CreatedAt)
	return e, err
}

// GetExpense retrieves an expense by ID, including its split details.
func (s *Store) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expense, err := scanExpense(s.db.QueryRowContext(ctx, s.q(
		`SELECT `+expenseColumns+` FROM expenses WHERE id = ?`), expenseID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: expense %s", storage.ErrNotFound, expenseID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	if err := s.loadSplitDetails(ctx, expense); err != nil {
		return nil, err
	}
	return expense, nil
}

// ListExpensesByGroup retrieves all expenses for a group, oldest first.
func (s *Store) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx, s.q(
		`SELECT `+expenseColumns+` FROM expenses WHERE group_id = ? ORDER BY date, created_at, id`),
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses by group: %w", err)
	}

	var expenses []*models.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	for _, expense := range expenses {
		if err := s.loadSplitDetails(ctx, expense); err != nil {
			return nil, err
		}
	}
	return expenses, nil
}

func (s *Store) loadSplitDetails(ctx context.Context, expense *models.Expense) error {
	rows, err := s.db.QueryContext(ctx, s.q(
		`SELECT user_id, amount FROM expense_splits WHERE expense_id = ? ORDER BY position`),
		expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get split details: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d models.SplitDetail
		if err := rows.Scan(&d.UserID, &d.Amount); err != nil {
			return fmt.Errorf("failed to scan split detail: %w", err)
		}
		expense.SplitDetails = append(expense.SplitDetails, d)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate split details: %w", err)
	}
	return nil
}

// DeleteExpense removes an expense and its split details.
func (s *Store) DeleteExpense(ctx context.Context, expenseID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM expense_splits WHERE expense_id = ?`), expenseID); err != nil {
		return fmt.Errorf("failed to delete split details: %w", err)
	}

	res, err := tx.ExecContext(ctx, s.q(`DELETE FROM expenses WHERE id = ?`), expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: expense %s", storage.ErrNotFound, expenseID)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

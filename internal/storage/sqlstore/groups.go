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

// CreateGroup persists a new group and its initial members.
func (s *Store) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if group.CreatedAt == 0 {
		group.CreatedAt = now
	}
	group.UpdatedAt = group.CreatedAt

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, s.q(
		`INSERT INTO groups (id, name, description, created_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`),
		group.ID, group.Name, group.Description, group.CreatedBy, group.CreatedAt, group.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}

	for i := range group.Members {
		member := &group.Members[i]
		if member.JoinedAt == 0 {
			member.JoinedAt = now
		}
		if err := s.insertMember(ctx, tx, group.ID, i+1, member); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) insertMember(ctx context.Context, tx *sql.Tx, groupID string, position int, m *models.Member) error {
	_, err := tx.ExecContext(ctx, s.q(
		`INSERT INTO group_members (group_id, user_id, position, name, email, phone, is_admin, joined_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		groupID, m.UserID, position, m.Name, m.Email, m.Phone, boolToInt(m.IsAdmin), m.JoinedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert member: %w", err)
	}
	return nil
}

// GetGroup retrieves a group by ID, including its members in join order.
func (s *Store) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group := &models.Group{}
	err := s.db.QueryRowContext(ctx, s.q(
		`SELECT id, name, description, created_by, created_at, updated_at FROM groups WHERE id = ?`),
		groupID,
	).Scan(&group.ID, &group.Name, &group.Description, &group.CreatedBy, &group.CreatedAt, &group.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: group %s", storage.ErrNotFound, groupID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, s.q(
		`SELECT user_id, name, email, phone, is_admin, joined_at
		 FROM group_members WHERE group_id = ? ORDER BY position`),
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m models.Member
		var isAdmin int
		if err := rows.Scan(&m.UserID, &m.Name, &m.Email, &m.Phone, &isAdmin, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		m.IsAdmin = isAdmin != 0
		group.Members = append(group.Members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}

	return group, nil
}

// ListGroupsForUser returns the groups a user belongs to, oldest first.
func (s *Store) ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error) {
	rows, err := s.db.QueryContext(ctx, s.q(
		`SELECT g.id FROM groups g
		 JOIN group_members m ON m.group_id = g.id
		 WHERE m.user_id = ?
		 ORDER BY g.created_at, g.id`),
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan group id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}

	groups := make([]*models.Group, 0, len(ids))
	for _, id := range ids {
		group, err := s.GetGroup(ctx, id)
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	return groups, nil
}

// DeleteGroup removes a group, its members, its expenses and their splits.
func (s *Store) DeleteGroup(ctx context.Context, groupID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmts := []string{
		`DELETE FROM expense_splits WHERE expense_id IN (SELECT id FROM expenses WHERE group_id = ?)`,
		`DELETE FROM expenses WHERE group_id = ?`,
		`DELETE FROM group_members WHERE group_id = ?`,
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, s.q(stmt), groupID); err != nil {
			return fmt.Errorf("failed to delete group data: %w", err)
		}
	}

	res, err := tx.ExecContext(ctx, s.q(`DELETE FROM groups WHERE id = ?`), groupID)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: group %s", storage.ErrNotFound, groupID)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// AddGroupMember appends a member after the current last member.
func (s *Store) AddGroupMember(ctx context.Context, groupID string, member *models.Member) error {
	if member.JoinedAt == 0 {
		member.JoinedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, s.q(`SELECT 1 FROM groups WHERE id = ?`), groupID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: group %s", storage.ErrNotFound, groupID)
	}
	if err != nil {
		return fmt.Errorf("failed to check group existence: %w", err)
	}

	var position int
	err = tx.QueryRowContext(ctx, s.q(
		`SELECT COALESCE(MAX(position), 0) FROM group_members WHERE group_id = ?`), groupID,
	).Scan(&position)
	if err != nil {
		return fmt.Errorf("failed to get member position: %w", err)
	}

	if err := s.insertMember(ctx, tx, groupID, position+1, member); err != nil {
		return err
	}
	if err := s.touchGroup(ctx, tx, groupID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// UpdateGroupMember overwrites a member's name, contact details and admin flag.
func (s *Store) UpdateGroupMember(ctx context.Context, groupID string, member *models.Member) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, s.q(
		`UPDATE group_members SET name = ?, email = ?, phone = ?, is_admin = ?
		 WHERE group_id = ? AND user_id = ?`),
		member.Name, member.Email, member.Phone, boolToInt(member.IsAdmin), groupID, member.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update member: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: member %s in group %s", storage.ErrNotFound, member.UserID, groupID)
	}
	if err := s.touchGroup(ctx, tx, groupID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// RemoveGroupMember removes one member from a group.
func (s *Store) RemoveGroupMember(ctx context.Context, groupID, userID string) error {
	return s.removeMember(ctx, groupID, userID, "")
}

// HandOverAndRemove promotes successorID to admin and removes userID atomically.
func (s *Store) HandOverAndRemove(ctx context.Context, groupID, userID, successorID string) error {
	return s.removeMember(ctx, groupID, userID, successorID)
}

func (s *Store) removeMember(ctx context.Context, groupID, userID, successorID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if successorID != "" {
		res, err := tx.ExecContext(ctx, s.q(
			`UPDATE group_members SET is_admin = 1 WHERE group_id = ? AND user_id = ?`), groupID, successorID)
		if err != nil {
			return fmt.Errorf("failed to promote member: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: member %s in group %s", storage.ErrNotFound, successorID, groupID)
		}
	}

	res, err := tx.ExecContext(ctx, s.q(
		`DELETE FROM group_members WHERE group_id = ? AND user_id = ?`), groupID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: member %s in group %s", storage.ErrNotFound, userID, groupID)
	}
	if err := s.touchGroup(ctx, tx, groupID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) touchGroup(ctx context.Context, tx *sql.Tx, groupID string) error {
	_, err := tx.ExecContext(ctx, s.q(`UPDATE groups SET updated_at = ? WHERE id = ?`), time.Now().Unix(), groupID)
	if err != nil {
		return fmt.Errorf("failed to update group timestamp: %w", err)
	}
	return nil
}

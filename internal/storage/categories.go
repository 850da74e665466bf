package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/digaomatias/mymascada/internal/common"
	"github.com/digaomatias/mymascada/internal/model"
)

// GetCategories returns a user's active category tree.
func (s *SQLiteStorage) GetCategories(ctx context.Context, userID string) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, type, parent_id, is_active, created_at
		FROM categories
		WHERE user_id = ? AND is_active = 1
		ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		var cat model.Category
		var catType string
		var parentID sql.NullInt64
		if err := rows.Scan(&cat.ID, &cat.Name, &catType, &parentID, &cat.IsActive, &cat.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		cat.Type = model.CategoryType(catType)
		if parentID.Valid {
			id := int(parentID.Int64)
			cat.ParentID = &id
		}
		categories = append(categories, cat)
	}

	return categories, rows.Err()
}

// GetCategoryByID returns one category by id.
func (s *SQLiteStorage) GetCategoryByID(ctx context.Context, id int) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var cat model.Category
	var catType string
	var parentID sql.NullInt64

	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, type, parent_id, is_active, created_at
		FROM categories WHERE id = ?`, id).
		Scan(&cat.ID, &cat.Name, &catType, &parentID, &cat.IsActive, &cat.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("category %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	cat.Type = model.CategoryType(catType)
	if parentID.Valid {
		pid := int(parentID.Int64)
		cat.ParentID = &pid
	}
	return &cat, nil
}

// CreateCategory inserts a category and returns it with its assigned id.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, userID, name string, categoryType model.CategoryType) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (user_id, name, type) VALUES (?, ?, ?)`,
		userID, name, string(categoryType))
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return nil, fmt.Errorf("category %s: %w", name, common.ErrDuplicateEntry)
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read category id: %w", err)
	}

	return s.GetCategoryByID(ctx, int(id))
}

// GetCategoryRules returns a user's active category rules ordered by priority.
func (s *SQLiteStorage) GetCategoryRules(ctx context.Context, userID string) ([]model.CategoryRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, pattern, is_regex, category_id, priority, is_active, created_at
		FROM category_rules
		WHERE user_id = ? AND is_active = 1
		ORDER BY priority DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query category rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rules []model.CategoryRule
	for rows.Next() {
		var rule model.CategoryRule
		if err := rows.Scan(&rule.ID, &rule.Pattern, &rule.IsRegex, &rule.CategoryID,
			&rule.Priority, &rule.IsActive, &rule.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category rule: %w", err)
		}
		rules = append(rules, rule)
	}

	return rules, rows.Err()
}

// SaveAccount inserts or replaces an account.
func (s *SQLiteStorage) SaveAccount(ctx context.Context, userID string, account model.Account) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, user_id, name, institution_id, type)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			institution_id = excluded.institution_id,
			type = excluded.type`,
		account.ID, userID, account.Name, account.InstitutionID, account.Type)
	if err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}
	return nil
}

// GetAccounts returns a user's accounts.
func (s *SQLiteStorage) GetAccounts(ctx context.Context, userID string) ([]model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, COALESCE(institution_id, ''), COALESCE(type, ''), created_at
		FROM accounts WHERE user_id = ? ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var accounts []model.Account
	for rows.Next() {
		var acct model.Account
		if err := rows.Scan(&acct.ID, &acct.Name, &acct.InstitutionID, &acct.Type, &acct.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, acct)
	}

	return accounts, rows.Err()
}

// HasAccountAccess reports whether the user owns the account.
func (s *SQLiteStorage) HasAccountAccess(ctx context.Context, userID, accountID string) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}

	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM accounts WHERE id = ? AND user_id = ?)`,
		accountID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check account access: %w", err)
	}
	return exists, nil
}

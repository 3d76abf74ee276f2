package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrTemplateExists   = errors.New("template already exists")
)

type EmbedTemplate struct {
	Name        string
	EmbedData   []byte
	LinkButtons []byte
	Claimed     bool
	ClaimedBy   string
	CreatedBy   string
	CreatedAt   time.Time
}

// CreateTemplate inserts a new named template. Name uniqueness is enforced
// by the primary key, so two concurrent saves of the same new name cannot
// both succeed; the loser gets ErrTemplateExists.
func (s *Store) CreateTemplate(ctx context.Context, tpl EmbedTemplate) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO embed_templates (name, embed_data, link_buttons, claimed, claimed_by, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		tpl.Name,
		string(tpl.EmbedData),
		string(tpl.LinkButtons),
		boolToInt(tpl.Claimed),
		nullableString(tpl.ClaimedBy),
		tpl.CreatedBy,
		tpl.CreatedAt.Unix(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("template %q: %w", tpl.Name, ErrTemplateExists)
		}
		return err
	}
	return nil
}

func (s *Store) GetTemplate(ctx context.Context, name string) (EmbedTemplate, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT name, embed_data, link_buttons, claimed, COALESCE(claimed_by, ''), created_by, created_at
		FROM embed_templates WHERE name = ?
	`, name)

	var tpl EmbedTemplate
	var embedData, linkButtons string
	var claimed int
	var created int64
	err := row.Scan(&tpl.Name, &embedData, &linkButtons, &claimed, &tpl.ClaimedBy, &tpl.CreatedBy, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return EmbedTemplate{}, fmt.Errorf("template %q: %w", name, ErrTemplateNotFound)
		}
		return EmbedTemplate{}, err
	}
	tpl.EmbedData = []byte(embedData)
	tpl.LinkButtons = []byte(linkButtons)
	tpl.Claimed = claimed == 1
	tpl.CreatedAt = time.Unix(created, 0)
	return tpl, nil
}

func (s *Store) ListTemplates(ctx context.Context) ([]EmbedTemplate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, claimed, COALESCE(claimed_by, ''), created_by, created_at
		FROM embed_templates ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []EmbedTemplate
	for rows.Next() {
		var tpl EmbedTemplate
		var claimed int
		var created int64
		if err := rows.Scan(&tpl.Name, &claimed, &tpl.ClaimedBy, &tpl.CreatedBy, &created); err != nil {
			return nil, err
		}
		tpl.Claimed = claimed == 1
		tpl.CreatedAt = time.Unix(created, 0)
		templates = append(templates, tpl)
	}
	return templates, rows.Err()
}

func (s *Store) DeleteTemplate(ctx context.Context, name string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM embed_templates WHERE name = ?`, name)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("template %q: %w", name, ErrTemplateNotFound)
	}
	return nil
}

// ClaimTemplate marks a template as in use by a user. Claiming an already
// claimed template is an upsert of the claimant, matching last-write-wins
// for the claim flag.
func (s *Store) ClaimTemplate(ctx context.Context, name, userID string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE embed_templates SET claimed = 1, claimed_by = ? WHERE name = ?
	`, userID, name)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("template %q: %w", name, ErrTemplateNotFound)
	}
	return nil
}

func (s *Store) ReleaseTemplate(ctx context.Context, name string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE embed_templates SET claimed = 0, claimed_by = NULL WHERE name = ?
	`, name)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("template %q: %w", name, ErrTemplateNotFound)
	}
	return nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	message := err.Error()
	return strings.Contains(message, "UNIQUE constraint failed") || strings.Contains(message, "constraint violation")
}

package mailer

import (
	"database/sql"
	"time"

	"propdesk/internal/platform/models"
)

type TemplateRepository struct {
	db *sql.DB
}

func NewTemplateRepository(db *sql.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

func (r *TemplateRepository) Create(tpl *models.EmailTemplate) error {
	_, err := r.db.Exec(`
		INSERT INTO email_templates (id, template_key, subject, body, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, tpl.ID, tpl.TemplateKey, tpl.Subject, tpl.Body, tpl.IsActive, tpl.CreatedAt, tpl.UpdatedAt)
	return err
}

func (r *TemplateRepository) GetByID(id string) (*models.EmailTemplate, error) {
	return r.scanOne(r.db.QueryRow(`
		SELECT id, template_key, subject, body, is_active, created_at, updated_at
		FROM email_templates WHERE id = ?
	`, id))
}

// GetActiveByKey returns the most recently updated active template for a key,
// or nil when no usable template exists.
func (r *TemplateRepository) GetActiveByKey(key string) (*models.EmailTemplate, error) {
	return r.scanOne(r.db.QueryRow(`
		SELECT id, template_key, subject, body, is_active, created_at, updated_at
		FROM email_templates
		WHERE template_key = ? AND is_active = 1
		ORDER BY updated_at DESC LIMIT 1
	`, key))
}

func (r *TemplateRepository) List() ([]*models.EmailTemplate, error) {
	rows, err := r.db.Query(`
		SELECT id, template_key, subject, body, is_active, created_at, updated_at
		FROM email_templates ORDER BY template_key
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []*models.EmailTemplate
	for rows.Next() {
		tpl := &models.EmailTemplate{}
		if err := rows.Scan(&tpl.ID, &tpl.TemplateKey, &tpl.Subject, &tpl.Body, &tpl.IsActive, &tpl.CreatedAt, &tpl.UpdatedAt); err != nil {
			return nil, err
		}
		templates = append(templates, tpl)
	}
	return templates, rows.Err()
}

func (r *TemplateRepository) Update(tpl *models.EmailTemplate) error {
	tpl.UpdatedAt = time.Now().Unix()
	_, err := r.db.Exec(`
		UPDATE email_templates SET subject = ?, body = ?, is_active = ?, updated_at = ?
		WHERE id = ?
	`, tpl.Subject, tpl.Body, tpl.IsActive, tpl.UpdatedAt, tpl.ID)
	return err
}

func (r *TemplateRepository) SetActive(id string, active bool) error {
	_, err := r.db.Exec(`
		UPDATE email_templates SET is_active = ?, updated_at = ? WHERE id = ?
	`, active, time.Now().Unix(), id)
	return err
}

func (r *TemplateRepository) scanOne(row *sql.Row) (*models.EmailTemplate, error) {
	tpl := &models.EmailTemplate{}
	err := row.Scan(&tpl.ID, &tpl.TemplateKey, &tpl.Subject, &tpl.Body, &tpl.IsActive, &tpl.CreatedAt, &tpl.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return tpl, nil
}

type OutboxRepository struct {
	db *sql.DB
}

func NewOutboxRepository(db *sql.DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

// Append writes one entry per dispatch attempt. The outbox is append-only:
// no update or delete is ever issued against it.
func (r *OutboxRepository) Append(entry *models.OutboxEntry) error {
	var variables interface{}
	if len(entry.Variables) > 0 {
		variables = string(entry.Variables)
	}
	_, err := r.db.Exec(`
		INSERT INTO email_outbox (id, template_id, to_email, subject, body, variables, status, provider, error, sent_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.TemplateID, entry.ToEmail, entry.Subject, entry.Body,
		variables, entry.Status, entry.Provider, entry.Error, entry.SentAt, entry.CreatedAt)
	return err
}

func (r *OutboxRepository) List(limit, offset int) ([]*models.OutboxEntry, error) {
	rows, err := r.db.Query(`
		SELECT id, template_id, to_email, subject, body, variables, status, provider, error, sent_at, created_at
		FROM email_outbox ORDER BY created_at DESC LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.OutboxEntry
	for rows.Next() {
		entry := &models.OutboxEntry{}
		var variables, errText sql.NullString
		if err := rows.Scan(&entry.ID, &entry.TemplateID, &entry.ToEmail, &entry.Subject, &entry.Body,
			&variables, &entry.Status, &entry.Provider, &errText, &entry.SentAt, &entry.CreatedAt); err != nil {
			return nil, err
		}
		if variables.Valid {
			entry.Variables = []byte(variables.String)
		}
		if errText.Valid {
			entry.Error = errText.String
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *OutboxRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM email_outbox`).Scan(&count)
	return count, err
}

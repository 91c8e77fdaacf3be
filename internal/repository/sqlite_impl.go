package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/alexivanou/checkout-address/internal/model"
	"github.com/jmoiron/sqlx"
)

type sqliteDraftRepository struct {
	db *sqlx.DB
}

func (r *sqliteDraftRepository) GetDraft(ctx context.Context, cartID string) (*model.Draft, error) {
	var draft model.Draft
	q := `SELECT cart_id, address_type, provider_id, payload, updated_at FROM checkout_drafts WHERE cart_id = ?`
	if err := r.db.GetContext(ctx, &draft, q, cartID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &draft, nil
}

func (r *sqliteDraftRepository) SaveDraft(ctx context.Context, draft model.Draft) error {
	if draft.UpdatedAt.IsZero() {
		draft.UpdatedAt = time.Now()
	}
	// timestamps are compared as text, so they are always stored in UTC
	draft.UpdatedAt = draft.UpdatedAt.UTC()
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO checkout_drafts (cart_id, address_type, provider_id, payload, updated_at)
		VALUES (:cart_id, :address_type, :provider_id, :payload, :updated_at)
		ON CONFLICT (cart_id) DO UPDATE SET
			address_type = excluded.address_type,
			provider_id = excluded.provider_id,
			payload = excluded.payload,
			updated_at = excluded.updated_at`,
		draft)
	return err
}

func (r *sqliteDraftRepository) DeleteDraft(ctx context.Context, cartID string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM checkout_drafts WHERE cart_id = ?", cartID)
	return err
}

func (r *sqliteDraftRepository) CountDraftsByType(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		AddressType string `db:"address_type"`
		Count       int64  `db:"count"`
	}
	q := "SELECT address_type, COUNT(*) AS count FROM checkout_drafts GROUP BY address_type"
	if err := r.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.AddressType] = row.Count
	}
	return counts, nil
}

func (r *sqliteDraftRepository) PurgeDrafts(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM checkout_drafts WHERE updated_at < ?", before.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

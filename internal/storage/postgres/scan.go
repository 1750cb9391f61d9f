package postgres

import (
	"github.com/polkiloo/adbroker/internal/domain/model"
)

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	userColumns        = `id, login, password_hash, role, wallet_balance, created_at`
	orderColumns       = `id, funding_party_id, fulfiller_id, title, description, kind, priority, amount, status, deadline, delivered_at, created_at, updated_at`
	applicationColumns = `id, order_id, candidate_id, message, status, created_at, updated_at`
	entryColumns       = `id, owner_id, order_id, type, status, amount, note, created_at`
	reviewColumns      = `id, order_id, reviewer_id, reviewee_id, status, rating, comment, created_at, updated_at`
	materialColumns    = `id, order_id, uploader_id, name, url, created_at`
)

func scanUser(row rowScanner) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Login, &u.PasswordHash, &u.Role, &u.WalletBalance, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func scanOrder(row rowScanner) (*model.Order, error) {
	var o model.Order
	err := row.Scan(&o.ID, &o.FundingPartyID, &o.FulfillerID, &o.Title, &o.Description, &o.Kind, &o.Priority,
		&o.Amount, &o.Status, &o.Deadline, &o.DeliveredAt, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func scanApplication(row rowScanner) (*model.Application, error) {
	var a model.Application
	if err := row.Scan(&a.ID, &a.OrderID, &a.CandidateID, &a.Message, &a.Status, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func scanEntry(row rowScanner) (*model.LedgerEntry, error) {
	var e model.LedgerEntry
	if err := row.Scan(&e.ID, &e.OwnerID, &e.OrderID, &e.Type, &e.Status, &e.Amount, &e.Note, &e.CreatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

func scanReview(row rowScanner) (*model.Review, error) {
	var r model.Review
	err := row.Scan(&r.ID, &r.OrderID, &r.ReviewerID, &r.RevieweeID, &r.Status, &r.Rating, &r.Comment, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func scanMaterial(row rowScanner) (*model.Material, error) {
	var m model.Material
	if err := row.Scan(&m.ID, &m.OrderID, &m.UploaderID, &m.Name, &m.URL, &m.CreatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

// collect drains rows with scan, closing them and surfacing iteration errors.
func collect[T any](rows interface {
	rowScanner
	Next() bool
	Err() error
	Close()
}, scan func(rowScanner) (*T, error)) ([]T, error) {
	defer rows.Close()

	var result []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

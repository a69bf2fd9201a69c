package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"eventparticipation/internal/domain"
)

// Postgres error codes the store translates into domain errors.
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqInvalidTextEncoding = "22P02"
)

const participationColumns = `id, user_id, event_id, user_name, phone_number, email_id, event_date,
		tower, flat_no, num_tickets, veg_heads, non_veg_heads,
		total_payable, amount_paid, payment_remaining, additional_contribution, contribution_comments,
		status, transaction_id, version, registered_at, updated_at`

type participationRepository struct {
	DB    *sql.DB
	now   func() time.Time
	newID func() string
}

func NewParticipationRepository(db *sql.DB) domain.ParticipationRepository {
	return &participationRepository{
		DB:    db,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanParticipation(row rowScanner) (*domain.Participation, error) {
	p := &domain.Participation{}
	var eventDate sql.NullTime
	var txnID sql.NullString
	var status string
	err := row.Scan(
		&p.ID, &p.UserID, &p.EventID, &p.UserName, &p.PhoneNumber, &p.EmailID, &eventDate,
		&p.Tower, &p.FlatNo, &p.NumTickets, &p.VegHeads, &p.NonVegHeads,
		&p.TotalPayable, &p.AmountPaid, &p.PaymentRemaining, &p.AdditionalContribution, &p.ContributionComments,
		&status, &txnID, &p.Version, &p.RegisteredAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Status = domain.ParticipationStatus(status)
	if eventDate.Valid {
		p.EventDate = &eventDate.Time
	}
	if txnID.Valid {
		p.TransactionID = &txnID.String
	}
	return p, nil
}

func pqCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

func (r *participationRepository) Create(ctx context.Context, p *domain.Participation) error {
	id := r.newID()
	now := r.now().UTC()
	query := `
		INSERT INTO participations (` + participationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
	`
	_, err := r.DB.ExecContext(ctx, query,
		id, p.UserID, p.EventID, p.UserName, p.PhoneNumber, p.EmailID, p.EventDate,
		p.Tower, p.FlatNo, p.NumTickets, p.VegHeads, p.NonVegHeads,
		p.TotalPayable, p.AmountPaid, p.PaymentRemaining, p.AdditionalContribution, p.ContributionComments,
		string(p.Status), p.TransactionID, int64(1), now, now,
	)
	if err != nil {
		if pqCode(err) == pqUniqueViolation {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert participation: %w", err)
	}
	p.ID = id
	p.Version = 1
	p.RegisteredAt = now
	p.UpdatedAt = now
	return nil
}

func (r *participationRepository) GetByID(ctx context.Context, id string) (*domain.Participation, error) {
	query := `
		SELECT ` + participationColumns + `
		FROM participations
		WHERE id = $1
	`
	p, err := scanParticipation(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || pqCode(err) == pqInvalidTextEncoding {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *participationRepository) GetByUserAndEvent(ctx context.Context, userID, eventID string) (*domain.Participation, error) {
	query := `
		SELECT ` + participationColumns + `
		FROM participations
		WHERE user_id = $1 AND event_id = $2
		ORDER BY registered_at, id
		LIMIT 1
	`
	p, err := scanParticipation(r.DB.QueryRowContext(ctx, query, userID, eventID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *participationRepository) ListByEvent(ctx context.Context, eventID string, page domain.PaginationParams) ([]*domain.Participation, int, error) {
	return r.list(ctx, "WHERE event_id = $1", []any{eventID}, page)
}

func (r *participationRepository) ListByUser(ctx context.Context, userID string, page domain.PaginationParams) ([]*domain.Participation, int, error) {
	return r.list(ctx, "WHERE user_id = $1", []any{userID}, page)
}

func (r *participationRepository) ListAll(ctx context.Context, page domain.PaginationParams) ([]*domain.Participation, int, error) {
	return r.list(ctx, "", nil, page)
}

func (r *participationRepository) list(ctx context.Context, where string, args []any, page domain.PaginationParams) ([]*domain.Participation, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM participations ` + where
	if err := r.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count participations: %w", err)
	}

	query := `
		SELECT ` + participationColumns + `
		FROM participations ` + where + `
		ORDER BY registered_at, id`
	if limit := page.Limit(); limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, limit, page.Offset())
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	participations := make([]*domain.Participation, 0)
	for rows.Next() {
		p, err := scanParticipation(rows)
		if err != nil {
			return nil, 0, err
		}
		participations = append(participations, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return participations, total, nil
}

func (r *participationRepository) Update(ctx context.Context, id string, upd domain.ParticipationUpdate) (*domain.Participation, error) {
	setClauses := []string{}
	args := []any{}
	set := func(column string, value any) {
		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if upd.UserName != nil {
		set("user_name", *upd.UserName)
	}
	if upd.PhoneNumber != nil {
		set("phone_number", *upd.PhoneNumber)
	}
	if upd.EmailID != nil {
		set("email_id", *upd.EmailID)
	}
	if upd.EventDate != nil {
		set("event_date", *upd.EventDate)
	}
	if upd.Tower != nil {
		set("tower", *upd.Tower)
	}
	if upd.FlatNo != nil {
		set("flat_no", *upd.FlatNo)
	}
	if upd.NumTickets != nil {
		set("num_tickets", *upd.NumTickets)
	}
	if upd.VegHeads != nil {
		set("veg_heads", *upd.VegHeads)
	}
	if upd.NonVegHeads != nil {
		set("non_veg_heads", *upd.NonVegHeads)
	}
	if upd.TotalPayable != nil {
		set("total_payable", *upd.TotalPayable)
	}
	if upd.AmountPaid != nil {
		set("amount_paid", *upd.AmountPaid)
	}
	if upd.PaymentRemaining != nil {
		set("payment_remaining", *upd.PaymentRemaining)
	}
	if upd.AdditionalContribution != nil {
		set("additional_contribution", *upd.AdditionalContribution)
	}
	if upd.ContributionComments != nil {
		set("contribution_comments", *upd.ContributionComments)
	}
	if upd.Status != nil {
		set("status", string(*upd.Status))
	}
	if upd.TransactionID != nil {
		set("transaction_id", *upd.TransactionID)
	}
	set("updated_at", r.now().UTC())
	setClauses = append(setClauses, "version = version + 1")

	args = append(args, id)
	where := fmt.Sprintf("id = $%d", len(args))
	if upd.ExpectedVersion > 0 {
		args = append(args, upd.ExpectedVersion)
		where += fmt.Sprintf(" AND version = $%d", len(args))
	}

	query := fmt.Sprintf(`
		UPDATE participations SET %s
		WHERE %s
		RETURNING %s
	`, strings.Join(setClauses, ", "), where, participationColumns)

	if upd.Payment == nil {
		p, err := scanParticipation(r.DB.QueryRowContext(ctx, query, args...))
		if err != nil {
			return nil, r.updateError(ctx, id, upd, err)
		}
		return p, nil
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin payment update: %w", err)
	}
	defer tx.Rollback()

	if err := r.recordPayment(ctx, tx, id, *upd.Payment); err != nil {
		return nil, err
	}
	p, err := scanParticipation(tx.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, r.updateError(ctx, id, upd, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit payment update: %w", err)
	}
	return p, nil
}

func (r *participationRepository) updateError(ctx context.Context, id string, upd domain.ParticipationUpdate, err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if upd.ExpectedVersion > 0 {
			return r.missOrStale(ctx, id)
		}
		return domain.ErrNotFound
	case pqCode(err) == pqUniqueViolation:
		return domain.ErrConflict
	case pqCode(err) == pqInvalidTextEncoding:
		return domain.ErrNotFound
	}
	return fmt.Errorf("update participation: %w", err)
}

// recordPayment adds rec to the payment ledger. A transaction id that already
// succeeded, or was already recorded with the same outcome, inserts nothing.
func (r *participationRepository) recordPayment(ctx context.Context, tx *sql.Tx, participationID string, rec domain.PaymentRecord) error {
	query := `
		INSERT INTO payment_transactions (transaction_id, outcome, participation_id, amount, applied_at)
		SELECT $1::text, $2::text, $3::uuid, $4::numeric, $5::timestamptz
		WHERE NOT EXISTS (
			SELECT 1 FROM payment_transactions
			WHERE transaction_id = $1 AND (outcome = $2 OR outcome = 'success')
		)
		ON CONFLICT DO NOTHING
	`
	var amount any
	if rec.Amount != nil {
		amount = *rec.Amount
	}
	result, err := tx.ExecContext(ctx, query,
		rec.TransactionID, string(rec.Outcome), participationID, amount, r.now().UTC())
	if err != nil {
		switch pqCode(err) {
		case pqInvalidTextEncoding, pqForeignKeyViolation:
			return domain.ErrNotFound
		}
		return fmt.Errorf("record payment: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("record payment: %w", err)
	}
	if rows == 0 {
		return domain.ErrDuplicatePayment
	}
	return nil
}

// missOrStale tells a missing row apart from a version mismatch after a
// conditional update matched nothing.
func (r *participationRepository) missOrStale(ctx context.Context, id string) error {
	var exists bool
	err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM participations WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check participation: %w", err)
	}
	if exists {
		return domain.ErrStaleVersion
	}
	return domain.ErrNotFound
}

func (r *participationRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM participations WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		if pqCode(err) == pqInvalidTextEncoding {
			return domain.ErrNotFound
		}
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete participation: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *participationRepository) Ping(ctx context.Context) error {
	return r.DB.PingContext(ctx)
}

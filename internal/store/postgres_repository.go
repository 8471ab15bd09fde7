/**
 * @description
 * This file provides the PostgreSQL implementation of the `Repository` interface.
 * It contains all the necessary SQL queries to interact with the database tables
 * related to payments, finance records, subscriptions, and gateway orders.
 *
 * Status transitions are enforced at the database level with conditional
 * UPDATE statements so that concurrent admin decisions and resident
 * resubmissions cannot race past each other.
 *
 * @dependencies
 * - context, time, errors: Standard Go libraries.
 * - github.com/jackc/pgx/v5: The PostgreSQL driver for database operations.
 * - internal/domain: Contains the domain models used for data transfer.
 */

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ourrapartment10-dot/payments-service/internal/domain"
)

var (
	ErrUserNotFound             = errors.New("user not found")
	ErrPaymentNotFound          = errors.New("payment not found")
	ErrPaymentNotEditable       = errors.New("payment can no longer be modified")
	ErrPaymentNotActionable     = errors.New("payment is not in an actionable state")
	ErrFinanceRecordNotFound    = errors.New("finance record not found")
	ErrSubscriptionNotFound     = errors.New("subscription not found")
	ErrGatewayOrderNotFound     = errors.New("gateway order not found")
	ErrGatewayOrderNotClaimable = errors.New("gateway order already settled")
)

// PostgresRepository is a concrete implementation of the Repository interface for PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new instance of PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const paymentColumns = `
	id, society_id, user_id, amount, category, COALESCE(description, '') AS description, status,
	due_date, paid_at, razorpay_order_id, razorpay_payment_id, razorpay_signature,
	reference_number, submitted_at, rejection_reason, created_at, updated_at
`

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var p domain.Payment
	err := row.Scan(
		&p.ID, &p.SocietyID, &p.UserID, &p.Amount, &p.Category, &p.Description, &p.Status,
		&p.DueDate, &p.PaidAt, &p.RazorpayOrderID, &p.RazorpayPaymentID, &p.RazorpaySignature,
		&p.ReferenceNumber, &p.SubmittedAt, &p.RejectionReason, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindUserByID retrieves a user from the database by their ID.
func (r *PostgresRepository) FindUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	var user domain.User
	query := `SELECT id, society_id, name, email, role, COALESCE(flat_no, '') AS flat_no, is_active, created_at FROM users WHERE id = $1`
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&user.ID, &user.SocietyID, &user.Name, &user.Email, &user.Role, &user.FlatNo, &user.IsActive, &user.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ListResidentsBySociety returns every active resident of a society.
func (r *PostgresRepository) ListResidentsBySociety(ctx context.Context, societyID uuid.UUID) ([]domain.User, error) {
	query := `
		SELECT id, society_id, name, email, role, COALESCE(flat_no, '') AS flat_no, is_active, created_at
		FROM users
		WHERE society_id = $1 AND role = 'resident' AND is_active = TRUE
		ORDER BY name ASC
	`
	rows, err := r.db.Query(ctx, query, societyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(
			&user.ID, &user.SocietyID, &user.Name, &user.Email, &user.Role, &user.FlatNo, &user.IsActive, &user.CreatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// CountPropertiesBySociety returns the number of registered properties in a society.
func (r *PostgresRepository) CountPropertiesBySociety(ctx context.Context, societyID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM properties WHERE society_id = $1`, societyID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// CreatePayment inserts a new payment record into the database.
func (r *PostgresRepository) CreatePayment(ctx context.Context, p *domain.Payment) error {
	query := `
		INSERT INTO payments (id, society_id, user_id, amount, category, description, status, due_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	return r.db.QueryRow(ctx, query,
		p.ID, p.SocietyID, p.UserID, p.Amount, p.Category, p.Description, p.Status, p.DueDate,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}

// GetPaymentByID retrieves a payment scoped to a society.
func (r *PostgresRepository) GetPaymentByID(ctx context.Context, paymentID uuid.UUID, societyID uuid.UUID) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1 AND society_id = $2`
	p, err := scanPayment(r.db.QueryRow(ctx, query, paymentID, societyID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return p, nil
}

func buildPaymentFilter(societyID uuid.UUID, opts domain.PaymentListOptions) (string, []interface{}) {
	where := ` WHERE society_id = $1`
	args := []interface{}{societyID}
	argPos := 2

	if opts.UserID != nil {
		where += fmt.Sprintf(` AND user_id = $%d`, argPos)
		args = append(args, *opts.UserID)
		argPos++
	}
	if opts.Status != "" {
		where += fmt.Sprintf(` AND status = $%d`, argPos)
		args = append(args, opts.Status)
		argPos++
	}
	if opts.Category != "" {
		where += fmt.Sprintf(` AND category = $%d`, argPos)
		args = append(args, opts.Category)
		argPos++
	}
	if opts.StartDate != nil {
		where += fmt.Sprintf(` AND created_at >= $%d`, argPos)
		args = append(args, *opts.StartDate)
		argPos++
	}
	if opts.EndDate != nil {
		where += fmt.Sprintf(` AND created_at <= $%d`, argPos)
		args = append(args, *opts.EndDate)
		argPos++
	}
	return where, args
}

// ListPayments returns a page of payments matching the filter plus the total
// row count for pagination.
func (r *PostgresRepository) ListPayments(ctx context.Context, societyID uuid.UUID, opts domain.PaymentListOptions) ([]domain.Payment, int64, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	page := opts.Page
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	where, args := buildPaymentFilter(societyID, opts)

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM payments`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM payments%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		paymentColumns, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, 0, err
		}
		payments = append(payments, *p)
	}
	return payments, total, rows.Err()
}

// GetPaymentStatistics aggregates amounts and counts over the same filtered
// set the listing uses, ignoring pagination.
func (r *PostgresRepository) GetPaymentStatistics(ctx context.Context, societyID uuid.UUID, opts domain.PaymentListOptions) (*domain.PaymentStatistics, error) {
	where, args := buildPaymentFilter(societyID, opts)

	query := `
		SELECT
			COALESCE(SUM(amount), 0) AS total_amount,
			COALESCE(SUM(amount) FILTER (WHERE status = 'completed'), 0) AS collected_amount,
			COALESCE(SUM(amount) FILTER (WHERE status IN ('pending', 'pending_verification', 'failed')), 0) AS pending_amount,
			COUNT(*) AS total_count,
			COUNT(*) FILTER (WHERE status = 'completed') AS completed_count,
			COUNT(*) FILTER (WHERE status IN ('pending', 'pending_verification', 'failed')) AS pending_count,
			COUNT(*) FILTER (WHERE status IN ('pending', 'failed') AND due_date IS NOT NULL AND due_date < NOW()) AS overdue_count
		FROM payments` + where

	var stats domain.PaymentStatistics
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&stats.TotalAmount,
		&stats.CollectedAmount,
		&stats.PendingAmount,
		&stats.TotalCount,
		&stats.CompletedCount,
		&stats.PendingCount,
		&stats.OverdueCount,
	)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// UpdatePaymentDetails applies a partial update to a payment. Completed
// payments are immutable; the conditional update refuses them and the
// follow-up lookup distinguishes "not found" from "already completed".
func (r *PostgresRepository) UpdatePaymentDetails(ctx context.Context, paymentID uuid.UUID, societyID uuid.UUID, payload domain.UpdatePaymentPayload) (*domain.Payment, error) {
	query := `
		WITH updated AS (
			UPDATE payments
			SET
				amount = COALESCE($3, amount),
				category = COALESCE($4, category),
				description = COALESCE($5, description),
				due_date = COALESCE($6, due_date),
				updated_at = NOW()
			WHERE id = $1
			  AND society_id = $2
			  AND status <> 'completed'
			RETURNING *
		)
		SELECT ` + paymentColumns + ` FROM updated
	`
	p, err := scanPayment(r.db.QueryRow(ctx, query, paymentID, societyID,
		payload.Amount, payload.Category, payload.Description, payload.DueDate))
	if err != nil {
		if err == pgx.ErrNoRows {
			if _, getErr := r.GetPaymentByID(ctx, paymentID, societyID); getErr != nil {
				return nil, getErr
			}
			return nil, ErrPaymentNotEditable
		}
		return nil, err
	}
	return p, nil
}

// DeletePayment removes a payment unless it has already been completed.
func (r *PostgresRepository) DeletePayment(ctx context.Context, paymentID uuid.UUID, societyID uuid.UUID) error {
	result, err := r.db.Exec(ctx,
		`DELETE FROM payments WHERE id = $1 AND society_id = $2 AND status <> 'completed'`,
		paymentID, societyID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		if _, getErr := r.GetPaymentByID(ctx, paymentID, societyID); getErr != nil {
			return getErr
		}
		return ErrPaymentNotEditable
	}
	return nil
}

// BulkCreatePayments inserts all payment rows in a single transaction. Either
// every row lands or none do.
func (r *PostgresRepository) BulkCreatePayments(ctx context.Context, payments []domain.Payment) error {
	if len(payments) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO payments (id, society_id, user_id, amount, category, description, status, due_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	for _, p := range payments {
		if _, err := tx.Exec(ctx, query,
			p.ID, p.SocietyID, p.UserID, p.Amount, p.Category, p.Description, p.Status, p.DueDate,
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// SubmitPaymentReference records a resident's proof-of-payment reference and
// moves the payment into the verification queue. Re-submission after a
// rejection is allowed; the previous rejection reason is cleared.
func (r *PostgresRepository) SubmitPaymentReference(ctx context.Context, paymentID uuid.UUID, userID uuid.UUID, referenceNumber string) (*domain.Payment, error) {
	query := `
		WITH updated AS (
			UPDATE payments
			SET
				status = 'pending_verification',
				reference_number = $3,
				submitted_at = NOW(),
				rejection_reason = NULL,
				updated_at = NOW()
			WHERE id = $1
			  AND user_id = $2
			  AND status IN ('pending', 'failed')
			RETURNING *
		)
		SELECT ` + paymentColumns + ` FROM updated
	`
	p, err := scanPayment(r.db.QueryRow(ctx, query, paymentID, userID, referenceNumber))
	if err != nil {
		if err == pgx.ErrNoRows {
			var exists bool
			checkErr := r.db.QueryRow(ctx,
				`SELECT EXISTS (SELECT 1 FROM payments WHERE id = $1 AND user_id = $2)`,
				paymentID, userID).Scan(&exists)
			if checkErr != nil {
				return nil, checkErr
			}
			if !exists {
				return nil, ErrPaymentNotFound
			}
			return nil, ErrPaymentNotActionable
		}
		return nil, err
	}
	return p, nil
}

// ListPendingVerifications returns the verification queue for a society,
// oldest submission first. The queue defaults to payments awaiting a decision
// but can be filtered to any status so admins can review past decisions.
func (r *PostgresRepository) ListPendingVerifications(ctx context.Context, societyID uuid.UUID, opts domain.PaymentListOptions) ([]domain.Payment, int64, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	page := opts.Page
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	status := opts.Status
	if status == "" {
		status = domain.PaymentStatusPendingVerification
	}

	var total int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM payments WHERE society_id = $1 AND status = $2 AND submitted_at IS NOT NULL`,
		societyID, status).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE society_id = $1 AND status = $2 AND submitted_at IS NOT NULL
		ORDER BY submitted_at ASC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.Query(ctx, query, societyID, status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, 0, err
		}
		payments = append(payments, *p)
	}
	return payments, total, rows.Err()
}

// ApprovePayment completes a payment sitting in the verification queue. Only
// one of two racing admins can win the conditional update; the loser gets
// ErrPaymentNotActionable.
func (r *PostgresRepository) ApprovePayment(ctx context.Context, paymentID uuid.UUID, societyID uuid.UUID) (*domain.Payment, error) {
	query := `
		WITH updated AS (
			UPDATE payments
			SET
				status = 'completed',
				paid_at = NOW(),
				rejection_reason = NULL,
				updated_at = NOW()
			WHERE id = $1
			  AND society_id = $2
			  AND status = 'pending_verification'
			RETURNING *
		)
		SELECT ` + paymentColumns + ` FROM updated
	`
	p, err := scanPayment(r.db.QueryRow(ctx, query, paymentID, societyID))
	if err != nil {
		if err == pgx.ErrNoRows {
			if _, getErr := r.GetPaymentByID(ctx, paymentID, societyID); getErr != nil {
				return nil, getErr
			}
			return nil, ErrPaymentNotActionable
		}
		return nil, err
	}
	return p, nil
}

// RejectPayment returns a submitted payment to the resident with a reason.
func (r *PostgresRepository) RejectPayment(ctx context.Context, paymentID uuid.UUID, societyID uuid.UUID, reason *string) (*domain.Payment, error) {
	query := `
		WITH updated AS (
			UPDATE payments
			SET
				status = 'failed',
				rejection_reason = $3,
				updated_at = NOW()
			WHERE id = $1
			  AND society_id = $2
			  AND status = 'pending_verification'
			RETURNING *
		)
		SELECT ` + paymentColumns + ` FROM updated
	`
	p, err := scanPayment(r.db.QueryRow(ctx, query, paymentID, societyID, reason))
	if err != nil {
		if err == pgx.ErrNoRows {
			if _, getErr := r.GetPaymentByID(ctx, paymentID, societyID); getErr != nil {
				return nil, getErr
			}
			return nil, ErrPaymentNotActionable
		}
		return nil, err
	}
	return p, nil
}

// CreateFinanceRecord inserts a new ledger entry.
func (r *PostgresRepository) CreateFinanceRecord(ctx context.Context, rec *domain.FinanceRecord) error {
	query := `
		INSERT INTO finance_records (id, society_id, type, category, amount, note, occurred_on)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`
	return r.db.QueryRow(ctx, query,
		rec.ID, rec.SocietyID, rec.Type, rec.Category, rec.Amount, rec.Note, rec.OccurredOn,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)
}

// GetFinanceRecordByID retrieves a ledger entry scoped to a society.
func (r *PostgresRepository) GetFinanceRecordByID(ctx context.Context, recordID uuid.UUID, societyID uuid.UUID) (*domain.FinanceRecord, error) {
	var rec domain.FinanceRecord
	query := `
		SELECT id, society_id, type, category, amount, COALESCE(note, '') AS note, occurred_on, created_at, updated_at
		FROM finance_records
		WHERE id = $1 AND society_id = $2
	`
	err := r.db.QueryRow(ctx, query, recordID, societyID).Scan(
		&rec.ID, &rec.SocietyID, &rec.Type, &rec.Category, &rec.Amount, &rec.Note, &rec.OccurredOn, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrFinanceRecordNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// ListFinanceRecords returns a page of ledger entries plus the total count.
func (r *PostgresRepository) ListFinanceRecords(ctx context.Context, societyID uuid.UUID, opts domain.FinanceListOptions) ([]domain.FinanceRecord, int64, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	page := opts.Page
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	where := ` WHERE society_id = $1`
	args := []interface{}{societyID}
	argPos := 2

	if opts.Type != "" {
		where += fmt.Sprintf(` AND type = $%d`, argPos)
		args = append(args, opts.Type)
		argPos++
	}
	if opts.Category != "" {
		where += fmt.Sprintf(` AND category = $%d`, argPos)
		args = append(args, opts.Category)
		argPos++
	}
	if opts.StartDate != nil {
		where += fmt.Sprintf(` AND occurred_on >= $%d`, argPos)
		args = append(args, *opts.StartDate)
		argPos++
	}
	if opts.EndDate != nil {
		where += fmt.Sprintf(` AND occurred_on <= $%d`, argPos)
		args = append(args, *opts.EndDate)
		argPos++
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM finance_records`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT id, society_id, type, category, amount, COALESCE(note, '') AS note, occurred_on, created_at, updated_at
		FROM finance_records%s
		ORDER BY occurred_on DESC, created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var records []domain.FinanceRecord
	for rows.Next() {
		var rec domain.FinanceRecord
		if err := rows.Scan(
			&rec.ID, &rec.SocietyID, &rec.Type, &rec.Category, &rec.Amount, &rec.Note, &rec.OccurredOn, &rec.CreatedAt, &rec.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		records = append(records, rec)
	}
	return records, total, rows.Err()
}

// UpdateFinanceRecord applies a partial update to a ledger entry.
func (r *PostgresRepository) UpdateFinanceRecord(ctx context.Context, recordID uuid.UUID, societyID uuid.UUID, payload domain.UpdateFinanceRecordPayload) (*domain.FinanceRecord, error) {
	var rec domain.FinanceRecord
	query := `
		UPDATE finance_records
		SET
			type = COALESCE($3, type),
			category = COALESCE($4, category),
			amount = COALESCE($5, amount),
			note = COALESCE($6, note),
			occurred_on = COALESCE($7, occurred_on),
			updated_at = NOW()
		WHERE id = $1 AND society_id = $2
		RETURNING id, society_id, type, category, amount, COALESCE(note, '') AS note, occurred_on, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, recordID, societyID,
		payload.Type, payload.Category, payload.Amount, payload.Note, payload.OccurredOn,
	).Scan(
		&rec.ID, &rec.SocietyID, &rec.Type, &rec.Category, &rec.Amount, &rec.Note, &rec.OccurredOn, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrFinanceRecordNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// DeleteFinanceRecord removes a ledger entry.
func (r *PostgresRepository) DeleteFinanceRecord(ctx context.Context, recordID uuid.UUID, societyID uuid.UUID) error {
	result, err := r.db.Exec(ctx,
		`DELETE FROM finance_records WHERE id = $1 AND society_id = $2`, recordID, societyID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrFinanceRecordNotFound
	}
	return nil
}

// SummarizeFinance aggregates the ledger and completed payments over a window.
// Completed payments count as income alongside explicit income entries.
func (r *PostgresRepository) SummarizeFinance(ctx context.Context, societyID uuid.UUID, start, end time.Time) (*domain.FinanceSummary, error) {
	summary := domain.FinanceSummary{WindowStart: start, WindowEnd: end}

	ledgerQuery := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE type = 'income'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'expense'), 0),
			COUNT(*)
		FROM finance_records
		WHERE society_id = $1 AND occurred_on >= $2 AND occurred_on <= $3
	`
	err := r.db.QueryRow(ctx, ledgerQuery, societyID, start, end).Scan(
		&summary.LedgerIncome, &summary.TotalExpense, &summary.RecordCount,
	)
	if err != nil {
		return nil, err
	}

	paymentsQuery := `
		SELECT COALESCE(SUM(amount), 0), COUNT(*)
		FROM payments
		WHERE society_id = $1 AND status = 'completed' AND paid_at >= $2 AND paid_at <= $3
	`
	err = r.db.QueryRow(ctx, paymentsQuery, societyID, start, end).Scan(
		&summary.PaymentsIncome, &summary.PaymentCount,
	)
	if err != nil {
		return nil, err
	}

	summary.TotalIncome = summary.LedgerIncome + summary.PaymentsIncome
	summary.NetBalance = summary.TotalIncome - summary.TotalExpense
	return &summary, nil
}

// FinanceTimeSeries returns income/expense buckets over the window. Buckets
// with no activity are absent; the caller zero-fills the series.
func (r *PostgresRepository) FinanceTimeSeries(ctx context.Context, societyID uuid.UUID, start, end time.Time, monthly bool) ([]domain.TimeSeriesPoint, error) {
	unit := "day"
	format := "YYYY-MM-DD"
	if monthly {
		unit = "month"
		format = "YYYY-MM"
	}

	query := `
		SELECT to_char(bucket, $4) AS period, SUM(income), SUM(expense)
		FROM (
			SELECT date_trunc($5, occurred_on) AS bucket,
			       CASE WHEN type = 'income' THEN amount ELSE 0 END AS income,
			       CASE WHEN type = 'expense' THEN amount ELSE 0 END AS expense
			FROM finance_records
			WHERE society_id = $1 AND occurred_on >= $2 AND occurred_on <= $3
			UNION ALL
			SELECT date_trunc($5, paid_at) AS bucket, amount AS income, 0 AS expense
			FROM payments
			WHERE society_id = $1 AND status = 'completed' AND paid_at >= $2 AND paid_at <= $3
		) buckets
		GROUP BY bucket
		ORDER BY bucket ASC
	`
	rows, err := r.db.Query(ctx, query, societyID, start, end, format, unit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []domain.TimeSeriesPoint
	for rows.Next() {
		var point domain.TimeSeriesPoint
		if err := rows.Scan(&point.Period, &point.Income, &point.Expense); err != nil {
			return nil, err
		}
		points = append(points, point)
	}
	return points, rows.Err()
}

const subscriptionColumns = `id, society_id, is_lifetime, expires_on, flat_count, trial_used, created_at, updated_at`

func scanSubscription(row pgx.Row) (*domain.Subscription, error) {
	var sub domain.Subscription
	err := row.Scan(
		&sub.ID, &sub.SocietyID, &sub.IsLifetime, &sub.ExpiresOn, &sub.FlatCount, &sub.TrialUsed, &sub.CreatedAt, &sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// GetSubscriptionBySocietyID retrieves a society's subscription row.
func (r *PostgresRepository) GetSubscriptionBySocietyID(ctx context.Context, societyID uuid.UUID) (*domain.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE society_id = $1`
	sub, err := scanSubscription(r.db.QueryRow(ctx, query, societyID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return sub, nil
}

// ExtendSubscription adds days to a society's subscription, creating the row
// if it does not exist yet. Extension stacks on top of remaining time; an
// expired subscription restarts from now.
func (r *PostgresRepository) ExtendSubscription(ctx context.Context, societyID uuid.UUID, days int, flatCount int, markTrialUsed bool) (*domain.Subscription, error) {
	query := `
		INSERT INTO subscriptions (id, society_id, is_lifetime, expires_on, flat_count, trial_used)
		VALUES ($1, $2, FALSE, NOW() + ($3 * INTERVAL '1 day'), $4, $5)
		ON CONFLICT (society_id) DO UPDATE SET
			expires_on = GREATEST(COALESCE(subscriptions.expires_on, NOW()), NOW()) + ($3 * INTERVAL '1 day'),
			flat_count = GREATEST(subscriptions.flat_count, $4),
			trial_used = subscriptions.trial_used OR $5,
			updated_at = NOW()
		RETURNING ` + subscriptionColumns + `
	`
	return scanSubscription(r.db.QueryRow(ctx, query, uuid.New(), societyID, days, flatCount, markTrialUsed))
}

// SetLifetimeSubscription flips the lifetime flag, creating the row if needed.
func (r *PostgresRepository) SetLifetimeSubscription(ctx context.Context, societyID uuid.UUID, enable bool) (*domain.Subscription, error) {
	query := `
		INSERT INTO subscriptions (id, society_id, is_lifetime, flat_count, trial_used)
		VALUES ($1, $2, $3, 0, FALSE)
		ON CONFLICT (society_id) DO UPDATE SET
			is_lifetime = $3,
			updated_at = NOW()
		RETURNING ` + subscriptionColumns + `
	`
	return scanSubscription(r.db.QueryRow(ctx, query, uuid.New(), societyID, enable))
}

// ListExpiredSubscriptions returns non-lifetime subscriptions that expired
// after the given cutoff. The sweep job uses a recent cutoff so that it only
// announces fresh expiries instead of re-announcing old ones forever.
func (r *PostgresRepository) ListExpiredSubscriptions(ctx context.Context, expiredSince time.Time) ([]domain.Subscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE is_lifetime = FALSE
		  AND expires_on IS NOT NULL
		  AND expires_on < NOW()
		  AND expires_on >= $1
		ORDER BY expires_on ASC
	`
	rows, err := r.db.Query(ctx, query, expiredSince)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []domain.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}

// ListOverduePayments returns unsettled payments past their due date, for the
// reminder job.
func (r *PostgresRepository) ListOverduePayments(ctx context.Context, asOf time.Time) ([]domain.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE status IN ('pending', 'failed')
		  AND due_date IS NOT NULL
		  AND due_date < $1
		ORDER BY due_date ASC
	`
	rows, err := r.db.Query(ctx, query, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, *p)
	}
	return payments, rows.Err()
}

const gatewayOrderColumns = `id, society_id, purpose, razorpay_order_id, amount, currency, plan_days, flat_count, payment_id, status, created_at`

func scanGatewayOrder(row pgx.Row) (*domain.GatewayOrder, error) {
	var order domain.GatewayOrder
	err := row.Scan(
		&order.ID, &order.SocietyID, &order.Purpose, &order.RazorpayOrderID, &order.Amount,
		&order.Currency, &order.PlanDays, &order.FlatCount, &order.PaymentID, &order.Status, &order.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// CreateGatewayOrder records the authoritative server-side amount for a
// Razorpay order before the client ever sees it.
func (r *PostgresRepository) CreateGatewayOrder(ctx context.Context, order *domain.GatewayOrder) error {
	query := `
		INSERT INTO gateway_orders (id, society_id, purpose, razorpay_order_id, amount, currency, plan_days, flat_count, payment_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`
	return r.db.QueryRow(ctx, query,
		order.ID, order.SocietyID, order.Purpose, order.RazorpayOrderID, order.Amount,
		order.Currency, order.PlanDays, order.FlatCount, order.PaymentID, order.Status,
	).Scan(&order.CreatedAt)
}

// GetGatewayOrderByRazorpayOrderID retrieves a gateway order by the Razorpay order id.
func (r *PostgresRepository) GetGatewayOrderByRazorpayOrderID(ctx context.Context, razorpayOrderID string) (*domain.GatewayOrder, error) {
	query := `SELECT ` + gatewayOrderColumns + ` FROM gateway_orders WHERE razorpay_order_id = $1`
	order, err := scanGatewayOrder(r.db.QueryRow(ctx, query, razorpayOrderID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrGatewayOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

// SettleGatewayOrder claims an order and delivers what it paid for in one
// transaction: the created→paid claim and the subscription extension (or
// payment completion) commit together, so a failure on either side rolls the
// claim back and leaves the order claimable for a retried callback. A replayed
// callback loses the conditional claim and gets ErrGatewayOrderNotClaimable.
func (r *PostgresRepository) SettleGatewayOrder(ctx context.Context, razorpayOrderID, razorpayPaymentID, razorpaySignature string) (*domain.GatewayOrder, *domain.Subscription, *domain.Payment, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	defer tx.Rollback(ctx)

	claimQuery := `
		WITH updated AS (
			UPDATE gateway_orders
			SET status = 'paid'
			WHERE razorpay_order_id = $1
			  AND status = 'created'
			RETURNING *
		)
		SELECT ` + gatewayOrderColumns + ` FROM updated
	`
	order, err := scanGatewayOrder(tx.QueryRow(ctx, claimQuery, razorpayOrderID))
	if err != nil {
		if err == pgx.ErrNoRows {
			if _, getErr := r.GetGatewayOrderByRazorpayOrderID(ctx, razorpayOrderID); getErr != nil {
				return nil, nil, nil, getErr
			}
			return nil, nil, nil, ErrGatewayOrderNotClaimable
		}
		return nil, nil, nil, err
	}

	var sub *domain.Subscription
	var payment *domain.Payment

	switch order.Purpose {
	case domain.OrderPurposeSubscription:
		extendQuery := `
			INSERT INTO subscriptions (id, society_id, is_lifetime, expires_on, flat_count, trial_used)
			VALUES ($1, $2, FALSE, NOW() + ($3 * INTERVAL '1 day'), $4, FALSE)
			ON CONFLICT (society_id) DO UPDATE SET
				expires_on = GREATEST(COALESCE(subscriptions.expires_on, NOW()), NOW()) + ($3 * INTERVAL '1 day'),
				flat_count = GREATEST(subscriptions.flat_count, $4),
				updated_at = NOW()
			RETURNING ` + subscriptionColumns + `
		`
		sub, err = scanSubscription(tx.QueryRow(ctx, extendQuery, uuid.New(), order.SocietyID, order.PlanDays, order.FlatCount))
		if err != nil {
			return nil, nil, nil, err
		}

	case domain.OrderPurposePayment:
		if order.PaymentID == nil {
			return nil, nil, nil, ErrPaymentNotFound
		}
		completeQuery := `
			WITH updated AS (
				UPDATE payments
				SET
					status = 'completed',
					paid_at = NOW(),
					razorpay_order_id = $2,
					razorpay_payment_id = $3,
					razorpay_signature = $4,
					rejection_reason = NULL,
					updated_at = NOW()
				WHERE id = $1
				  AND status IN ('pending', 'pending_verification', 'failed')
				RETURNING *
			)
			SELECT ` + paymentColumns + ` FROM updated
		`
		payment, err = scanPayment(tx.QueryRow(ctx, completeQuery, *order.PaymentID, razorpayOrderID, razorpayPaymentID, razorpaySignature))
		if err != nil {
			if err == pgx.ErrNoRows {
				var exists bool
				checkErr := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM payments WHERE id = $1)`, *order.PaymentID).Scan(&exists)
				if checkErr != nil {
					return nil, nil, nil, checkErr
				}
				if !exists {
					return nil, nil, nil, ErrPaymentNotFound
				}
				return nil, nil, nil, ErrPaymentNotActionable
			}
			return nil, nil, nil, err
		}

	default:
		return nil, nil, nil, fmt.Errorf("unknown gateway order purpose %q", order.Purpose)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, nil, err
	}
	return order, sub, payment, nil
}

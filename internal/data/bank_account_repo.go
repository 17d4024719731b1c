package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/taxlink/partner-portal/internal/data/pgxutil"
	"github.com/taxlink/partner-portal/internal/domain/model"
	apperrors "github.com/taxlink/partner-portal/internal/errors"
)

// BankAccountRepo provides database operations for payout bank accounts.
// The "exactly one default per non-empty set" invariant is maintained inside
// transactions so concurrent edits from multiple sessions of the same partner
// cannot observe zero or two defaults.
type BankAccountRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewBankAccountRepo creates a new BankAccountRepo with real time provider.
func NewBankAccountRepo(db *sql.DB) *BankAccountRepo {
	return &BankAccountRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewBankAccountRepoWithTimeProvider creates a new BankAccountRepo with a custom time provider.
func NewBankAccountRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *BankAccountRepo {
	return &BankAccountRepo{DB: db, timeProvider: tp}
}

const bankAccountSelectColumns = `
	id, partner_id, company_name, routing_number, account_number, account_type,
	is_default, created_at, updated_at`

const bankAccountListQuery = `
	SELECT` + bankAccountSelectColumns + `
	FROM bank_accounts
	WHERE partner_id = $1
	ORDER BY is_default DESC, created_at DESC`

const bankAccountGetQuery = `
	SELECT` + bankAccountSelectColumns + `
	FROM bank_accounts
	WHERE partner_id = $1 AND id = $2`

// List returns the partner's accounts, default first, then newest first.
func (r *BankAccountRepo) List(ctx context.Context, partnerID string) ([]*model.BankAccount, error) {
	var rowsOut []model.BankAccount
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, qerr := conn.Query(ctx, bankAccountListQuery, partnerID)
		if qerr != nil {
			return qerr
		}
		defer rows.Close()
		rowsOut, qerr = pgx.CollectRows(rows, pgx.RowToStructByName[model.BankAccount])
		return qerr
	}); err != nil {
		return nil, fmt.Errorf("failed to list bank accounts: %w", apperrors.MapDBError(err))
	}

	res := make([]*model.BankAccount, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// Get returns a single account owned by the partner.
func (r *BankAccountRepo) Get(ctx context.Context, partnerID, accountID string) (*model.BankAccount, error) {
	var out model.BankAccount
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, qerr := conn.Query(ctx, bankAccountGetQuery, partnerID, accountID)
		if qerr != nil {
			return qerr
		}
		defer rows.Close()
		out, qerr = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.BankAccount])
		return qerr
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFoundf("bank account %s not found", accountID)
		}
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// Create adds an account. The partner's first account becomes the default.
// The existence check and insert share a transaction so two concurrent first
// adds cannot both claim the default flag.
func (r *BankAccountRepo) Create(
	ctx context.Context,
	partnerID string,
	req *model.CreateBankAccountRequest,
) (*model.BankAccount, error) {
	if req == nil {
		return nil, errors.New("create bank account request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	now := r.timeProvider.Now().UTC()
	var out model.BankAccount
	err := pgxutil.WithPgxTx(ctx, r.DB, func(tx pgx.Tx) error {
		var existing int
		if scanErr := tx.QueryRow(ctx,
			`SELECT count(*) FROM bank_accounts WHERE partner_id = $1`,
			partnerID,
		).Scan(&existing); scanErr != nil {
			return scanErr
		}

		rows, qerr := tx.Query(ctx, `
			INSERT INTO bank_accounts (
				id, partner_id, company_name, routing_number, account_number,
				account_type, is_default, created_at, updated_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $8
			) RETURNING`+bankAccountSelectColumns,
			uuid.NewString(),
			partnerID,
			strings.TrimSpace(req.CompanyName),
			req.RoutingNumber,
			strings.TrimSpace(req.AccountNumber),
			string(req.AccountType),
			existing == 0,
			now,
		)
		if qerr != nil {
			return qerr
		}
		defer rows.Close()
		out, qerr = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.BankAccount])
		return qerr
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// Update applies a partial edit; nil fields are left unchanged. The default
// flag is not editable here; use SetDefault.
func (r *BankAccountRepo) Update(
	ctx context.Context,
	partnerID, accountID string,
	req model.UpdateBankAccountRequest,
) (*model.BankAccount, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	var out model.BankAccount
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		setClause, args := r.buildUpdateClause(req)
		if setClause == "" {
			rows, qerr := conn.Query(ctx, bankAccountGetQuery, partnerID, accountID)
			if qerr != nil {
				return qerr
			}
			defer rows.Close()
			var e error
			out, e = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.BankAccount])
			return e
		}
		args = append(args, partnerID, accountID)
		query := "UPDATE bank_accounts SET " + setClause +
			" WHERE partner_id = $" + strconv.Itoa(len(args)-1) +
			" AND id = $" + strconv.Itoa(len(args)) +
			" RETURNING" + bankAccountSelectColumns
		rows, qerr := conn.Query(ctx, query, args...)
		if qerr != nil {
			return qerr
		}
		defer rows.Close()
		var e error
		out, e = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.BankAccount])
		return e
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFoundf("bank account %s not found", accountID)
		}
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// Delete removes an account. When the deleted account was the default and
// others remain, the newest remaining account becomes the default, inside the
// same transaction.
func (r *BankAccountRepo) Delete(ctx context.Context, partnerID, accountID string) (bool, error) {
	var deleted bool
	err := pgxutil.WithPgxTx(ctx, r.DB, func(tx pgx.Tx) error {
		var wasDefault bool
		scanErr := tx.QueryRow(ctx, `
			DELETE FROM bank_accounts
			WHERE partner_id = $1 AND id = $2
			RETURNING is_default`,
			partnerID, accountID,
		).Scan(&wasDefault)
		if errors.Is(scanErr, pgx.ErrNoRows) {
			return nil
		}
		if scanErr != nil {
			return scanErr
		}
		deleted = true

		if !wasDefault {
			return nil
		}

		// Default ownership transfers to exactly one remaining account.
		_, execErr := tx.Exec(ctx, `
			UPDATE bank_accounts SET is_default = true, updated_at = $2
			WHERE id = (
				SELECT id FROM bank_accounts
				WHERE partner_id = $1
				ORDER BY created_at DESC
				LIMIT 1
			)`,
			partnerID, r.timeProvider.Now().UTC())
		return execErr
	})
	if err != nil {
		return false, apperrors.MapDBError(err)
	}
	return deleted, nil
}

// SetDefault atomically clears the default flag across the partner's accounts
// and sets it on the given one. Calling it twice with the same account is a
// no-op the second time.
func (r *BankAccountRepo) SetDefault(ctx context.Context, partnerID, accountID string) error {
	err := pgxutil.WithPgxTx(ctx, r.DB, func(tx pgx.Tx) error {
		var exists bool
		if scanErr := tx.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM bank_accounts WHERE partner_id = $1 AND id = $2)`,
			partnerID, accountID,
		).Scan(&exists); scanErr != nil {
			return scanErr
		}
		if !exists {
			return apperrors.NotFoundf("bank account %s not found", accountID)
		}

		if _, execErr := tx.Exec(ctx, `
			UPDATE bank_accounts SET is_default = false, updated_at = $2
			WHERE partner_id = $1 AND is_default`,
			partnerID, r.timeProvider.Now().UTC()); execErr != nil {
			return execErr
		}

		_, execErr := tx.Exec(ctx, `
			UPDATE bank_accounts SET is_default = true, updated_at = $3
			WHERE partner_id = $1 AND id = $2`,
			partnerID, accountID, r.timeProvider.Now().UTC())
		return execErr
	})
	if err != nil {
		if apperrors.IsNotFound(err) {
			return err
		}
		return apperrors.MapDBError(err)
	}
	return nil
}

// buildUpdateClause builds the SQL SET clause and args for editing a bank account.
func (r *BankAccountRepo) buildUpdateClause(req model.UpdateBankAccountRequest) (string, []any) {
	setParts := make([]string, 0, 5)
	args := make([]any, 0, 6)
	nextIdx := func() int { return len(args) + 1 }

	if req.CompanyName != nil {
		setParts = append(setParts, fmt.Sprintf("company_name = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*req.CompanyName))
	}
	if req.RoutingNumber != nil {
		setParts = append(setParts, fmt.Sprintf("routing_number = $%d", nextIdx()))
		args = append(args, *req.RoutingNumber)
	}
	if req.AccountNumber != nil {
		setParts = append(setParts, fmt.Sprintf("account_number = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*req.AccountNumber))
	}
	if req.AccountType != nil {
		setParts = append(setParts, fmt.Sprintf("account_type = $%d", nextIdx()))
		args = append(args, string(*req.AccountType))
	}

	if len(setParts) == 0 {
		return "", nil
	}
	setParts = append(setParts, fmt.Sprintf("updated_at = $%d", nextIdx()))
	args = append(args, r.timeProvider.Now().UTC())
	return strings.Join(setParts, ", "), args
}

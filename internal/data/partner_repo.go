package data

// Package data contains pgx-backed repositories for the partner portal.

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/taxlink/partner-portal/internal/data/pgxutil"
	domainauth "github.com/taxlink/partner-portal/internal/domain/auth"
	"github.com/taxlink/partner-portal/internal/domain/model"
	apperrors "github.com/taxlink/partner-portal/internal/errors"
)

// PartnerRepo provides database operations for partner profiles.
type PartnerRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewPartnerRepo creates a new PartnerRepo with real time provider.
func NewPartnerRepo(db *sql.DB) *PartnerRepo {
	return &PartnerRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewPartnerRepoWithTimeProvider creates a new PartnerRepo with a custom time provider (useful for tests).
func NewPartnerRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *PartnerRepo {
	return &PartnerRepo{DB: db, timeProvider: tp}
}

const partnerSelectColumns = `
	id, name, email, phone, role, referral_code,
	total_earnings, wallet_balance, total_referred, total_subscribed,
	created_at, updated_at`

const partnerGetByIDQuery = `
	SELECT` + partnerSelectColumns + `
	FROM partners
	WHERE id = $1`

// GetByID retrieves a partner profile by user id.
// Returns a NotFound AppError when no profile document exists for the id.
func (r *PartnerRepo) GetByID(ctx context.Context, id string) (*model.Partner, error) {
	var out model.Partner
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, qerr := conn.Query(ctx, partnerGetByIDQuery, id)
		if qerr != nil {
			return qerr
		}
		defer rows.Close()
		out, qerr = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Partner])
		return qerr
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFoundf("partner %s not found", id)
		}
		return nil, fmt.Errorf("failed to get partner by ID: %w", apperrors.MapDBError(err))
	}
	out.Role = domainauth.CanonicalRole(string(out.Role))
	return &out, nil
}

// Create provisions a new partner profile. A missing role defaults to cpa;
// legacy alias roles are canonicalized before the write.
func (r *PartnerRepo) Create(ctx context.Context, req *model.CreatePartnerRequest) (*model.Partner, error) {
	if req == nil {
		return nil, errors.New("create partner request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	role := domainauth.CanonicalRole(string(req.Role))
	if role == "" {
		role = domainauth.RoleCPA
	}

	now := r.timeProvider.Now().UTC()
	var out model.Partner
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, qerr := conn.Query(ctx, `
			INSERT INTO partners (
				id, name, email, phone, role, referral_code, created_at, updated_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $7
			) RETURNING`+partnerSelectColumns,
			strings.TrimSpace(req.ID),
			strings.TrimSpace(req.Name),
			strings.TrimSpace(req.Email),
			strings.TrimSpace(req.Phone),
			string(role),
			req.ReferralCode,
			now,
		)
		if qerr != nil {
			return qerr
		}
		defer rows.Close()
		out, qerr = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Partner])
		return qerr
	}); err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// Update applies a partial update to a partner profile. Nil fields are left
// unchanged; an all-nil request returns the current row.
func (r *PartnerRepo) Update(
	ctx context.Context,
	id string,
	req model.UpdatePartnerRequest,
) (*model.Partner, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	var out model.Partner
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		setClause, args := r.buildUpdateClause(req)
		if setClause == "" {
			rows, qerr := conn.Query(ctx, partnerGetByIDQuery, id)
			if qerr != nil {
				return qerr
			}
			defer rows.Close()
			var e error
			out, e = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Partner])
			return e
		}
		args = append(args, id)
		query := "UPDATE partners SET " + setClause +
			" WHERE id = $" + strconv.Itoa(len(args)) +
			" RETURNING" + partnerSelectColumns
		rows, qerr := conn.Query(ctx, query, args...)
		if qerr != nil {
			return qerr
		}
		defer rows.Close()
		var e error
		out, e = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Partner])
		return e
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFoundf("partner %s not found", id)
		}
		return nil, apperrors.MapDBError(err)
	}
	out.Role = domainauth.CanonicalRole(string(out.Role))
	return &out, nil
}

// buildUpdateClause builds the SQL SET clause and args for updating a partner.
func (r *PartnerRepo) buildUpdateClause(req model.UpdatePartnerRequest) (string, []any) {
	setParts := make([]string, 0, 4)
	args := make([]any, 0, 5)
	nextIdx := func() int { return len(args) + 1 }

	if req.Name != nil {
		setParts = append(setParts, fmt.Sprintf("name = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*req.Name))
	}
	if req.Email != nil {
		setParts = append(setParts, fmt.Sprintf("email = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*req.Email))
	}
	if req.Phone != nil {
		setParts = append(setParts, fmt.Sprintf("phone = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*req.Phone))
	}

	if len(setParts) == 0 {
		return "", nil
	}
	setParts = append(setParts, fmt.Sprintf("updated_at = $%d", nextIdx()))
	args = append(args, r.timeProvider.Now().UTC())
	return strings.Join(setParts, ", "), args
}

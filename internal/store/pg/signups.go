package pg

import (
	"context"
	"database/sql"
	"errors"

	"pixelsmith.org/internal/auth"
	"pixelsmith.org/internal/identity"
)

// SignUps implements identity.SignUpStore.
type SignUps struct {
	db *sql.DB
}

var _ identity.SignUpStore = (*SignUps)(nil)

func (s *SignUps) Upsert(ctx context.Context, req *identity.SignUpRequest) error {
	_, err := s.db.ExecContext(ctx, `
		insert into signup_requests (id, name, email, password_hash, otp_hash, expires_at, created_at, updated_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8)
		on conflict (id) do update set
			name          = excluded.name,
			password_hash = excluded.password_hash,
			otp_hash      = excluded.otp_hash,
			expires_at    = excluded.expires_at,
			updated_at    = excluded.updated_at
	`, req.ID, req.Name, req.Email, req.PasswordHash, req.OTPHash, req.ExpiresAt, req.CreatedAt, req.UpdatedAt)
	return err
}

func (s *SignUps) FindByEmail(ctx context.Context, email string) (*identity.SignUpRequest, error) {
	var req identity.SignUpRequest
	err := s.db.QueryRowContext(ctx, `
		select id, name, email, password_hash, otp_hash, expires_at, created_at, updated_at
		from signup_requests where email=$1
	`, email).Scan(&req.ID, &req.Name, &req.Email, &req.PasswordHash, &req.OTPHash,
		&req.ExpiresAt, &req.CreatedAt, &req.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, auth.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *SignUps) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from signup_requests where id=$1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

package pg

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"pixelsmith.org/internal/auth"
)

func TestUsersFindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta(`select id, name, email, password_hash, profile_img_key, phone_number, links, team_id, designation, roles, created_at, updated_at from users where id=$1`)).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "email", "password_hash", "profile_img_key", "phone_number",
			"links", "team_id", "designation", "roles", "created_at", "updated_at",
		}).AddRow("u1", "Dev", "dev@example.com", nil, nil, nil,
			[]byte(`[{"text":"site","url":"https://example.com"}]`), nil, "SENIOR",
			[]byte(`["GUEST","MEMBER"]`), now, now))

	u, err := NewStore(db).Users().FindByID(context.Background(), "u1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if !auth.HasRole(u.Roles, auth.RoleMember) {
		t.Fatalf("roles = %v", u.Roles)
	}
	if u.Designation != auth.DesignationSenior {
		t.Fatalf("designation = %s", u.Designation)
	}
	if len(u.Links) != 1 || u.Links[0].Text != "site" {
		t.Fatalf("links = %v", u.Links)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestUsersFindByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("select .+ from users where id=").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = NewStore(db).Users().FindByID(context.Background(), "missing")
	if !errors.Is(err, auth.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestUsersListPaginates(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`select count(*) from users`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))
	mock.ExpectQuery("select id, name, email, roles, designation, team_id").
		WithArgs(20, 20).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "roles", "designation", "team_id"}).
			AddRow("u1", "Dev", "dev@example.com", []byte(`["GUEST"]`), "NONE", nil))

	users, total, err := NewStore(db).Users().List(context.Background(), 2, 20)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 42 || len(users) != 1 {
		t.Fatalf("total=%d len=%d", total, len(users))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestUsersSetAssignment(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("update users set roles=").
		WithArgs("u1", []byte(`["GUEST","MEMBER"]`), "SENIOR").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = NewStore(db).Users().SetAssignment(context.Background(), "u1",
		[]auth.Role{auth.RoleGuest, auth.RoleMember}, auth.DesignationSenior)
	if err != nil {
		t.Fatalf("set assignment: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestUsersDeleteNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("delete from users where id=").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewStore(db).Users().Delete(context.Background(), "missing")
	if !errors.Is(err, auth.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

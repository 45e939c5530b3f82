package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/fabrichub/fabrichub/internal/model"
	"github.com/fabrichub/fabrichub/internal/token"
	"github.com/fabrichub/fabrichub/internal/utils"
)

func newUserFixture() (*UserHandler, *fakeUserStore, *fakeTokenStore, *token.Service) {
	users := newFakeUserStore()
	tokens := newFakeTokenStore()
	ts := newTestTokens(users, tokens)
	return NewUserHandler(users, tokens, testBcryptCost), users, tokens, ts
}

func idParam(id uint64) map[string]string {
	return map[string]string{"id": strconv.FormatUint(id, 10)}
}

func TestUserGet_SelfAllowed(t *testing.T) {
	h, users, _, ts := newUserFixture()
	u := seedUser(t, users, "self@example.com", "pw", model.RoleCustomer)

	rec := callAuthed(t, ts, h.Get, http.MethodGet, "/api/users/1", "",
		u.ID, u.Email, u.Role, idParam(u.ID))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "self@example.com") {
		t.Errorf("body = %s, want profile", rec.Body.String())
	}
}

func TestUserGet_OtherCustomerDenied(t *testing.T) {
	h, users, _, ts := newUserFixture()
	target := seedUser(t, users, "target@example.com", "pw", model.RoleCustomer)
	caller := seedUser(t, users, "caller@example.com", "pw", model.RoleCustomer)

	rec := callAuthed(t, ts, h.Get, http.MethodGet, "/api/users/1", "",
		caller.ID, caller.Email, caller.Role, idParam(target.ID))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Access denied") {
		t.Errorf("body = %s, want 'Access denied'", rec.Body.String())
	}
}

func TestUserGet_AdminAllowed(t *testing.T) {
	h, users, _, ts := newUserFixture()
	target := seedUser(t, users, "target@example.com", "pw", model.RoleCustomer)
	admin := seedUser(t, users, "admin@example.com", "pw", model.RoleAdmin)

	rec := callAuthed(t, ts, h.Get, http.MethodGet, "/api/users/1", "",
		admin.ID, admin.Email, admin.Role, idParam(target.ID))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}
}

func TestUserUpdate_PartialFields(t *testing.T) {
	h, users, _, ts := newUserFixture()
	u := seedUser(t, users, "p@example.com", "pw", model.RoleCustomer)

	rec := callAuthed(t, ts, h.Update, http.MethodPut, "/api/users/1",
		`{"firstName":"Grace","bio":"weaver"}`,
		u.ID, u.Email, u.Role, idParam(u.ID))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Profile updated successfully") {
		t.Errorf("body = %s, want update message", rec.Body.String())
	}

	got, _ := users.GetByID(context.Background(), u.ID)
	if got.FirstName != "Grace" || got.Bio != "weaver" {
		t.Errorf("profile = %+v, want FirstName=Grace Bio=weaver", got)
	}
	if got.LastName != "User" {
		t.Errorf("LastName = %q, absent fields must stay untouched", got.LastName)
	}
}

func TestUserUpdateRole_Valid(t *testing.T) {
	h, users, _, ts := newUserFixture()
	target := seedUser(t, users, "t@example.com", "pw", model.RoleCustomer)
	admin := seedUser(t, users, "a@example.com", "pw", model.RoleAdmin)

	rec := callAuthed(t, ts, h.UpdateRole, http.MethodPut, "/api/users/1/role",
		`{"role":"seller"}`, admin.ID, admin.Email, admin.Role, idParam(target.ID))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}

	got, _ := users.GetByID(context.Background(), target.ID)
	if got.Role != model.RoleSeller {
		t.Errorf("role = %q, want SELLER (input is case-normalized)", got.Role)
	}
}

func TestUserUpdateRole_Invalid(t *testing.T) {
	h, users, _, ts := newUserFixture()
	target := seedUser(t, users, "t@example.com", "pw", model.RoleCustomer)
	admin := seedUser(t, users, "a@example.com", "pw", model.RoleAdmin)

	rec := callAuthed(t, ts, h.UpdateRole, http.MethodPut, "/api/users/1/role",
		`{"role":"SUPERADMIN"}`, admin.ID, admin.Email, admin.Role, idParam(target.ID))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Invalid role") {
		t.Errorf("body = %s, want 'Invalid role'", rec.Body.String())
	}
	got, _ := users.GetByID(context.Background(), target.ID)
	if got.Role != model.RoleCustomer {
		t.Errorf("role changed to %q on invalid input", got.Role)
	}
}

func TestUserDelete_RevokesAllSessions(t *testing.T) {
	h, users, tokens, ts := newUserFixture()
	target := seedUser(t, users, "t@example.com", "pw", model.RoleCustomer)
	admin := seedUser(t, users, "a@example.com", "pw", model.RoleAdmin)

	// Two live sessions for the target, one for the admin.
	if _, err := ts.IssuePair(context.Background(), target.ID, target.Email, target.Role); err != nil {
		t.Fatalf("IssuePair: %v", err)
	}
	if _, err := ts.IssuePair(context.Background(), target.ID, target.Email, target.Role); err != nil {
		t.Fatalf("IssuePair: %v", err)
	}
	adminPair, err := ts.IssuePair(context.Background(), admin.ID, admin.Email, admin.Role)
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}

	rec := callAuthed(t, ts, h.Delete, http.MethodDelete, "/api/users/1", "",
		admin.ID, admin.Email, admin.Role, idParam(target.ID))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}

	if _, err := users.GetByID(context.Background(), target.ID); err == nil {
		t.Error("user row still present after delete")
	}
	for hash, row := range tokens.rows {
		if row.UserID == target.ID {
			t.Errorf("refresh row %s of deleted user survived", hash)
		}
	}
	if _, ok := tokens.rows[token.HashRefresh(adminPair.RefreshToken)]; !ok {
		t.Error("unrelated user's session was revoked")
	}
}

func TestChangePassword_Success(t *testing.T) {
	h, users, _, ts := newUserFixture()
	u := seedUser(t, users, "c@example.com", "old-password", model.RoleCustomer)

	rec := callAuthed(t, ts, h.ChangePassword, http.MethodPut, "/api/users/1/password",
		`{"currentPassword":"old-password","newPassword":"new-password"}`,
		u.ID, u.Email, u.Role, idParam(u.ID))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}

	got, _ := users.GetByID(context.Background(), u.ID)
	if !utils.VerifyPassword(got.PasswordHash, "new-password") {
		t.Error("new password does not verify after change")
	}
	if utils.VerifyPassword(got.PasswordHash, "old-password") {
		t.Error("old password still verifies after change")
	}
}

func TestChangePassword_WrongCurrent(t *testing.T) {
	h, users, _, ts := newUserFixture()
	u := seedUser(t, users, "c@example.com", "old-password", model.RoleCustomer)
	before, _ := users.GetByID(context.Background(), u.ID)

	rec := callAuthed(t, ts, h.ChangePassword, http.MethodPut, "/api/users/1/password",
		`{"currentPassword":"not-it","newPassword":"new-password"}`,
		u.ID, u.Email, u.Role, idParam(u.ID))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Current password is incorrect") {
		t.Errorf("body = %s, want 'Current password is incorrect'", rec.Body.String())
	}
	after, _ := users.GetByID(context.Background(), u.ID)
	if after.PasswordHash != before.PasswordHash {
		t.Error("hash changed despite failed verification")
	}
}

func TestChangePassword_TooShort(t *testing.T) {
	h, users, _, ts := newUserFixture()
	u := seedUser(t, users, "c@example.com", "old-password", model.RoleCustomer)
	before, _ := users.GetByID(context.Background(), u.ID)

	rec := callAuthed(t, ts, h.ChangePassword, http.MethodPut, "/api/users/1/password",
		`{"currentPassword":"old-password","newPassword":"short"}`,
		u.ID, u.Email, u.Role, idParam(u.ID))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "New password must be at least 6 characters") {
		t.Errorf("body = %s, want length message", rec.Body.String())
	}
	after, _ := users.GetByID(context.Background(), u.ID)
	if after.PasswordHash != before.PasswordHash {
		t.Error("hash changed despite rejected password")
	}
}

func TestChangePassword_AdminCannotChangeOthers(t *testing.T) {
	h, users, _, ts := newUserFixture()
	target := seedUser(t, users, "t@example.com", "pw", model.RoleCustomer)
	admin := seedUser(t, users, "a@example.com", "pw", model.RoleAdmin)

	rec := callAuthed(t, ts, h.ChangePassword, http.MethodPut, "/api/users/1/password",
		`{"currentPassword":"pw","newPassword":"hijacked"}`,
		admin.ID, admin.Email, admin.Role, idParam(target.ID))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403 (strictly self)", rec.Code)
	}
}

func TestUserList_FiltersByRole(t *testing.T) {
	h, users, _, ts := newUserFixture()
	seedUser(t, users, "c1@example.com", "pw", model.RoleCustomer)
	seedUser(t, users, "s1@example.com", "pw", model.RoleSeller)
	admin := seedUser(t, users, "a@example.com", "pw", model.RoleAdmin)

	rec := callAuthed(t, ts, h.List, http.MethodGet, "/api/users?role=SELLER", "",
		admin.ID, admin.Email, admin.Role, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "s1@example.com") {
		t.Error("seller missing from filtered list")
	}
	if strings.Contains(body, "c1@example.com") {
		t.Error("customer leaked into SELLER-filtered list")
	}
	if !strings.Contains(body, `"pagination"`) {
		t.Error("list response missing pagination block")
	}
}

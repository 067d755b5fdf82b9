package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tatame/tatame-backend/api/middleware"
	"github.com/tatame/tatame-backend/internal/users"
	"github.com/tatame/tatame-backend/pkg/db/models"
	"github.com/tatame/tatame-backend/pkg/enums"
	"github.com/tatame/tatame-backend/pkg/logger"
)

type fakeUsersService struct {
	createFn          func(ctx context.Context, identityID string, input users.CreateUserInput) (*models.User, error)
	getByIDFn         func(ctx context.Context, id uint) (*models.User, error)
	getByIdentityFn   func(ctx context.Context, identityID string) (*models.User, error)
	approvalFn        func(ctx context.Context, id uint) (bool, error)
	updateFn          func(ctx context.Context, id uint, input users.UpdateUserInput) (*models.User, error)
	updatePushTokenFn func(ctx context.Context, id uint, token string) error
	deleteFn          func(ctx context.Context, id uint) error
	approveFn         func(ctx context.Context, managerID, userID uint) error
	denyFn            func(ctx context.Context, managerID, userID uint) error
	listStudentsFn    func(ctx context.Context, gymID uint) ([]users.StudentDTO, error)
	listUsersFn       func(ctx context.Context, gymID uint) ([]models.User, error)
}

func (f *fakeUsersService) Create(ctx context.Context, identityID string, input users.CreateUserInput) (*models.User, error) {
	if f.createFn != nil {
		return f.createFn(ctx, identityID, input)
	}
	return &models.User{ID: 1}, nil
}

func (f *fakeUsersService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (f *fakeUsersService) GetByIdentityID(ctx context.Context, identityID string) (*models.User, error) {
	if f.getByIdentityFn != nil {
		return f.getByIdentityFn(ctx, identityID)
	}
	return nil, nil
}

func (f *fakeUsersService) GetApprovalStatus(ctx context.Context, id uint) (bool, error) {
	if f.approvalFn != nil {
		return f.approvalFn(ctx, id)
	}
	return false, nil
}

func (f *fakeUsersService) Update(ctx context.Context, id uint, input users.UpdateUserInput) (*models.User, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, input)
	}
	return &models.User{ID: id}, nil
}

func (f *fakeUsersService) UpdatePushToken(ctx context.Context, id uint, token string) error {
	if f.updatePushTokenFn != nil {
		return f.updatePushTokenFn(ctx, id, token)
	}
	return nil
}

func (f *fakeUsersService) Delete(ctx context.Context, id uint) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func (f *fakeUsersService) Approve(ctx context.Context, managerID, userID uint) error {
	if f.approveFn != nil {
		return f.approveFn(ctx, managerID, userID)
	}
	return nil
}

func (f *fakeUsersService) Deny(ctx context.Context, managerID, userID uint) error {
	if f.denyFn != nil {
		return f.denyFn(ctx, managerID, userID)
	}
	return nil
}

func (f *fakeUsersService) ListStudents(ctx context.Context, gymID uint) ([]users.StudentDTO, error) {
	if f.listStudentsFn != nil {
		return f.listStudentsFn(ctx, gymID)
	}
	return nil, nil
}

func (f *fakeUsersService) ListInstructors(ctx context.Context, gymID uint) ([]models.User, error) {
	return f.listUsers(ctx, gymID)
}

func (f *fakeUsersService) ListPending(ctx context.Context, gymID uint) ([]models.User, error) {
	return f.listUsers(ctx, gymID)
}

func (f *fakeUsersService) ListBirthdays(ctx context.Context, gymID uint) ([]models.User, error) {
	return f.listUsers(ctx, gymID)
}

func (f *fakeUsersService) listUsers(ctx context.Context, gymID uint) ([]models.User, error) {
	if f.listUsersFn != nil {
		return f.listUsersFn(ctx, gymID)
	}
	return nil, nil
}

func TestCreateUserRequiresIdentity(t *testing.T) {
	req := newRequest(http.MethodPost, "/api/v1/users", `{"role":"STUDENT","firstName":"Ana","lastName":"Lima","email":"ana@example.com"}`, nil)
	rec := httptest.NewRecorder()
	CreateUser(&fakeUsersService{}, testLogger())(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestCreateUserMapsBody(t *testing.T) {
	var got users.CreateUserInput
	svc := &fakeUsersService{
		createFn: func(ctx context.Context, identityID string, input users.CreateUserInput) (*models.User, error) {
			if identityID != "user_abc" {
				t.Fatalf("unexpected identity %q", identityID)
			}
			got = input
			return &models.User{ID: 9, Role: input.Role}, nil
		},
	}

	req := newRequest(http.MethodPost, "/api/v1/users", `{"role":"INSTRUCTOR","firstName":" Ana ","lastName":"Lima","email":"ana@example.com","birthDate":"1990-03-14","gymId":3}`, nil)
	req = req.WithContext(middleware.WithIdentityID(req.Context(), "user_abc"))
	rec := httptest.NewRecorder()
	CreateUser(svc, testLogger())(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d (%s)", rec.Code, rec.Body.String())
	}
	if got.Role != enums.RoleInstructor || got.FirstName != "Ana" {
		t.Fatalf("unexpected input %+v", got)
	}
	if got.BirthDate == nil || got.BirthDate.Format("2006-01-02") != "1990-03-14" {
		t.Fatalf("expected birth date parsed, got %v", got.BirthDate)
	}
	if got.GymID == nil || *got.GymID != 3 {
		t.Fatalf("expected gym id 3, got %v", got.GymID)
	}

	var envelope struct {
		Data    models.User `json:"data"`
		Created bool        `json:"created"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !envelope.Created || envelope.Data.ID != 9 {
		t.Fatalf("unexpected envelope %+v", envelope)
	}
}

func TestCreateUserRejectsUnknownRole(t *testing.T) {
	req := newRequest(http.MethodPost, "/api/v1/users", `{"role":"ADMIN","firstName":"Ana","lastName":"Lima","email":"ana@example.com"}`, nil)
	req = req.WithContext(middleware.WithIdentityID(req.Context(), "user_abc"))
	rec := httptest.NewRecorder()
	CreateUser(&fakeUsersService{}, testLogger())(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if body := decodeError(t, rec); body.Code != "VALIDATION_ERROR" {
		t.Fatalf("unexpected code %s", body.Code)
	}
}

func TestGetUserInvalidID(t *testing.T) {
	req := newRequest(http.MethodGet, "/api/v1/users/abc", "", map[string]string{"id": "abc"})
	rec := httptest.NewRecorder()
	GetUser(&fakeUsersService{}, testLogger())(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if body := decodeError(t, rec); body.Error != "Invalid user id" {
		t.Fatalf("unexpected message %q", body.Error)
	}
}

func TestGetUserMissingIsNotFound(t *testing.T) {
	req := newRequest(http.MethodGet, "/api/v1/users/5", "", map[string]string{"id": "5"})
	rec := httptest.NewRecorder()
	GetUser(&fakeUsersService{}, testLogger())(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}

func TestUpdatePushTokenOnlyForSelf(t *testing.T) {
	called := false
	svc := &fakeUsersService{
		updatePushTokenFn: func(ctx context.Context, id uint, token string) error {
			called = true
			return nil
		},
	}

	req := newRequest(http.MethodPut, "/api/v1/users/4/push-token", `{"token":"ExponentPushToken[x]"}`, map[string]string{"id": "4"})
	req = asActor(req, 5, enums.RoleManager, gym(1))
	rec := httptest.NewRecorder()
	UpdatePushToken(svc, testLogger())(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rec.Code)
	}
	if called {
		t.Fatal("service should not be called for another user")
	}
}

func TestUpdateUserAllowsManager(t *testing.T) {
	var gotName *string
	svc := &fakeUsersService{
		getByIDFn: func(ctx context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Role: enums.RoleStudent, GymID: gym(1)}, nil
		},
		updateFn: func(ctx context.Context, id uint, input users.UpdateUserInput) (*models.User, error) {
			gotName = input.FirstName
			return &models.User{ID: id}, nil
		},
	}

	req := newRequest(http.MethodPatch, "/api/v1/users/4", `{"firstName":"Bia"}`, map[string]string{"id": "4"})
	req = asActor(req, 1, enums.RoleManager, gym(1))
	rec := httptest.NewRecorder()
	UpdateUser(svc, testLogger())(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", rec.Code, rec.Body.String())
	}
	if gotName == nil || *gotName != "Bia" {
		t.Fatalf("expected first name forwarded, got %v", gotName)
	}
}

func TestUpdateUserRejectsOtherStudent(t *testing.T) {
	req := newRequest(http.MethodPatch, "/api/v1/users/4", `{"firstName":"Bia"}`, map[string]string{"id": "4"})
	req = asActor(req, 2, enums.RoleStudent, gym(1))
	rec := httptest.NewRecorder()
	UpdateUser(&fakeUsersService{}, testLogger())(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rec.Code)
	}
}

func TestManagerCannotTouchAnotherGym(t *testing.T) {
	touched := false
	svc := &fakeUsersService{
		getByIDFn: func(ctx context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Role: enums.RoleStudent, GymID: gym(2)}, nil
		},
		updateFn: func(ctx context.Context, id uint, input users.UpdateUserInput) (*models.User, error) {
			touched = true
			return &models.User{ID: id}, nil
		},
		deleteFn: func(ctx context.Context, id uint) error {
			touched = true
			return nil
		},
	}

	cases := []struct {
		name    string
		method  string
		body    string
		handler func(users.Service, *logger.Logger) http.HandlerFunc
	}{
		{name: "update", method: http.MethodPatch, body: `{"firstName":"Bia"}`, handler: UpdateUser},
		{name: "delete", method: http.MethodDelete, handler: DeleteUser},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := newRequest(tc.method, "/api/v1/users/99", tc.body, map[string]string{"id": "99"})
			req = asActor(req, 1, enums.RoleManager, gym(1))
			rec := httptest.NewRecorder()
			tc.handler(svc, testLogger())(rec, req)

			if rec.Code != http.StatusForbidden {
				t.Fatalf("expected 403 got %d (%s)", rec.Code, rec.Body.String())
			}
		})
	}
	if touched {
		t.Fatal("service should not be called for a user of another gym")
	}
}

func TestManagerActingOnMissingUserIsNotFound(t *testing.T) {
	req := newRequest(http.MethodDelete, "/api/v1/users/99", "", map[string]string{"id": "99"})
	req = asActor(req, 1, enums.RoleManager, gym(1))
	rec := httptest.NewRecorder()
	DeleteUser(&fakeUsersService{}, testLogger())(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}

func TestUpdateSelfForwardsGymChange(t *testing.T) {
	var got users.UpdateUserInput
	svc := &fakeUsersService{
		getByIDFn: func(ctx context.Context, id uint) (*models.User, error) {
			t.Fatal("self updates need no target lookup")
			return nil, nil
		},
		updateFn: func(ctx context.Context, id uint, input users.UpdateUserInput) (*models.User, error) {
			got = input
			return &models.User{ID: id}, nil
		},
	}

	req := newRequest(http.MethodPatch, "/api/v1/users/4", `{"gymId":2}`, map[string]string{"id": "4"})
	req = asActor(req, 4, enums.RoleStudent, gym(1))
	rec := httptest.NewRecorder()
	UpdateUser(svc, testLogger())(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", rec.Code, rec.Body.String())
	}
	if got.GymID == nil || *got.GymID != 2 {
		t.Fatalf("expected gym change forwarded, got %v", got.GymID)
	}
}

func TestApproveUserPassesManager(t *testing.T) {
	svc := &fakeUsersService{
		approveFn: func(ctx context.Context, managerID, userID uint) error {
			if managerID != 1 || userID != 8 {
				t.Fatalf("unexpected ids manager=%d user=%d", managerID, userID)
			}
			return nil
		},
	}

	req := newRequest(http.MethodPost, "/api/v1/users/8/approve", "", map[string]string{"id": "8"})
	req = asActor(req, 1, enums.RoleManager, gym(1))
	rec := httptest.NewRecorder()
	ApproveUser(svc, testLogger())(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var envelope struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !envelope.Success || envelope.Message != "user approved" {
		t.Fatalf("unexpected envelope %+v", envelope)
	}
}

func TestListGymStudentsEmptyList(t *testing.T) {
	req := newRequest(http.MethodGet, "/api/v1/users/gym/3/students", "", map[string]string{"gymId": "3"})
	rec := httptest.NewRecorder()
	ListGymStudents(&fakeUsersService{}, testLogger())(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var envelope struct {
		Data  []any `json:"data"`
		Count int   `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data == nil || envelope.Count != 0 {
		t.Fatalf("expected empty list, got %+v", envelope)
	}
}

func TestListGymBirthdaysForwardsGym(t *testing.T) {
	svc := &fakeUsersService{
		listUsersFn: func(ctx context.Context, gymID uint) ([]models.User, error) {
			if gymID != 3 {
				t.Fatalf("unexpected gym %d", gymID)
			}
			return []models.User{{ID: 1, FirstName: "Ana"}, {ID: 2, FirstName: "Bia"}}, nil
		},
	}

	req := newRequest(http.MethodGet, "/api/v1/users/gym/3/birthdays", "", map[string]string{"gymId": "3"})
	rec := httptest.NewRecorder()
	ListGymBirthdays(svc, testLogger())(rec, req)

	var envelope struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Count != 2 {
		t.Fatalf("expected 2 users, got %d", envelope.Count)
	}
}

func TestUsersServiceUnavailable(t *testing.T) {
	req := newRequest(http.MethodGet, "/api/v1/users/gym/3/pending", "", map[string]string{"gymId": "3"})
	rec := httptest.NewRecorder()
	ListGymPending(nil, testLogger())(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", rec.Code)
	}
}

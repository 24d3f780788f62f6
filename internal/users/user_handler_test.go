package users

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	custom_error "shelf/pkg/errors"
	"shelf/pkg/models"
	"shelf/pkg/roles"
	"shelf/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) PersistUser(ctx context.Context, organizationID string, req models.CreateUserRequest, hashedPassword []byte) (*models.User, error) {
	args := m.Called(organizationID, req, hashedPassword)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetUser(ctx context.Context, organizationID, userID string) (*models.User, error) {
	args := m.Called(organizationID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetUsers(ctx context.Context, organizationID string) ([]models.User, error) {
	args := m.Called(organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, organizationID, userID string, changes *models.UserChanges) error {
	args := m.Called(organizationID, userID, changes)
	return args.Error(0)
}

func (m *MockUserRepository) PersistTeamMember(ctx context.Context, organizationID string, req models.CreateTeamMemberRequest) (*models.TeamMember, error) {
	args := m.Called(organizationID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TeamMember), args.Error(1)
}

func (m *MockUserRepository) GetTeamMembers(ctx context.Context, organizationID string) ([]models.TeamMember, error) {
	args := m.Called(organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TeamMember), args.Error(1)
}

func setupTestContext(userID string, role roles.Role) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	security.SetIdentity(c, userID, "org1", role)
	return c, w
}

func TestRegisterUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockRepo := new(MockUserRepository)
	handler := NewHandler(mockRepo)

	tests := []struct {
		name           string
		callerRole     roles.Role
		payload        models.CreateUserRequest
		setupMock      func()
		expectedStatus int
	}{
		{
			name:       "successful registration",
			callerRole: roles.Admin,
			payload:    models.CreateUserRequest{Username: "testuser", Password: "password123", Role: roles.Base},
			setupMock: func() {
				mockRepo.On("PersistUser", "org1", mock.Anything, mock.MatchedBy(func(hash []byte) bool {
					return bcrypt.CompareHashAndPassword(hash, []byte("password123")) == nil
				})).Return(&models.User{ID: "u2", Username: "testuser", Role: roles.Base}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:       "duplicate username",
			callerRole: roles.Admin,
			payload:    models.CreateUserRequest{Username: "testuser", Password: "password123", Role: roles.Base},
			setupMock: func() {
				mockRepo.On("PersistUser", "org1", mock.Anything, mock.Anything).
					Return(nil, custom_error.WrapDBError("Username already taken", "23505"))
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "admin cannot create owner",
			callerRole:     roles.Admin,
			payload:        models.CreateUserRequest{Username: "boss", Password: "password123", Role: roles.Owner},
			setupMock:      func() {},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:       "repository error",
			callerRole: roles.Owner,
			payload:    models.CreateUserRequest{Username: "testuser", Password: "password123", Role: roles.Base},
			setupMock: func() {
				mockRepo.On("PersistUser", "org1", mock.Anything, mock.Anything).Return(nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo.ExpectedCalls = nil
			tt.setupMock()
			c, w := setupTestContext("u1", tt.callerRole)

			body, _ := json.Marshal(tt.payload)
			c.Request = httptest.NewRequest(http.MethodPost, "/users", bytes.NewBuffer(body))

			handler.RegisterUser(c)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestUpdateUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockRepo := new(MockUserRepository)
	handler := NewHandler(mockRepo)

	tests := []struct {
		name           string
		callerID       string
		callerRole     roles.Role
		targetID       string
		payload        models.UpdateUserRequest
		setupMock      func()
		expectedStatus int
	}{
		{
			name:       "user changes own password",
			callerID:   "u1",
			callerRole: roles.SelfService,
			targetID:   "u1",
			payload:    models.UpdateUserRequest{Password: stringPtr("newsecret")},
			setupMock: func() {
				mockRepo.On("UpdateUser", "org1", "u1", mock.MatchedBy(func(ch *models.UserChanges) bool {
					return ch.PasswordHash != nil && ch.Role == nil
				})).Return(nil)
				mockRepo.On("GetUser", "org1", "u1").Return(&models.User{ID: "u1"}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "password too short",
			callerID:       "u1",
			callerRole:     roles.SelfService,
			targetID:       "u1",
			payload:        models.UpdateUserRequest{Password: stringPtr("abc")},
			setupMock:      func() {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "user cannot edit someone else",
			callerID:       "u1",
			callerRole:     roles.Base,
			targetID:       "u2",
			payload:        models.UpdateUserRequest{Password: stringPtr("newsecret")},
			setupMock:      func() {},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "user cannot promote themselves",
			callerID:       "u1",
			callerRole:     roles.Base,
			targetID:       "u1",
			payload:        models.UpdateUserRequest{Role: rolesPtr(roles.Admin)},
			setupMock:      func() {},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:       "admin changes role",
			callerID:   "u1",
			callerRole: roles.Admin,
			targetID:   "u2",
			payload:    models.UpdateUserRequest{Role: rolesPtr(roles.Base)},
			setupMock: func() {
				mockRepo.On("UpdateUser", "org1", "u2", mock.Anything).Return(nil)
				mockRepo.On("GetUser", "org1", "u2").Return(&models.User{ID: "u2", Role: roles.Base}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:       "unknown user",
			callerID:   "u1",
			callerRole: roles.Admin,
			targetID:   "u9",
			payload:    models.UpdateUserRequest{Role: rolesPtr(roles.Base)},
			setupMock: func() {
				mockRepo.On("UpdateUser", "org1", "u9", mock.Anything).Return(custom_error.NotFound("user", "u9", "org1"))
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo.ExpectedCalls = nil
			tt.setupMock()
			c, w := setupTestContext(tt.callerID, tt.callerRole)
			c.Params = gin.Params{{Key: "id", Value: tt.targetID}}

			body, _ := json.Marshal(tt.payload)
			c.Request = httptest.NewRequest(http.MethodPatch, "/users/"+tt.targetID, bytes.NewBuffer(body))

			handler.UpdateUser(c)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestGetUserList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockRepo := new(MockUserRepository)
	handler := NewHandler(mockRepo)

	mockRepo.On("GetUsers", "org1").Return([]models.User{{ID: "u1", Username: "alice"}, {ID: "u2", Username: "bob"}}, nil)

	c, w := setupTestContext("u1", roles.Admin)
	c.Request = httptest.NewRequest(http.MethodGet, "/users", nil)

	handler.GetUserList(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var users []models.User
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
	assert.Len(t, users, 2)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestCreateTeamMember(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockRepo := new(MockUserRepository)
	handler := NewHandler(mockRepo)

	req := models.CreateTeamMemberRequest{Name: "Alice"}
	mockRepo.On("PersistTeamMember", "org1", req).Return(&models.TeamMember{ID: "tm1", Name: "Alice"}, nil)

	c, w := setupTestContext("u1", roles.Admin)
	body, _ := json.Marshal(req)
	c.Request = httptest.NewRequest(http.MethodPost, "/team-members", bytes.NewBuffer(body))

	handler.CreateTeamMember(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockRepo.AssertExpectations(t)
}

func stringPtr(s string) *string {
	return &s
}

func rolesPtr(r roles.Role) *roles.Role {
	return &r
}

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Sem-Five-Project/edimy/models"
	"github.com/Sem-Five-Project/edimy/utils"
)

// countingStudentRepo serves one student and counts account-store lookups.
type countingStudentRepo struct {
	student *models.Student
	lookups int
}

func (r *countingStudentRepo) Create(ctx context.Context, s *models.Student) error { return nil }

func (r *countingStudentRepo) GetByID(ctx context.Context, id string) (*models.Student, error) {
	r.lookups++
	if r.student == nil || r.student.ID != id {
		return nil, mongo.ErrNoDocuments
	}
	cp := *r.student
	return &cp, nil
}

func (r *countingStudentRepo) GetByEmail(ctx context.Context, email string) (*models.Student, error) {
	return nil, mongo.ErrNoDocuments
}

func (r *countingStudentRepo) UpdateAuthToken(ctx context.Context, id, hash string) error {
	return nil
}

func (r *countingStudentRepo) Delete(ctx context.Context, id string) error { return nil }

func newAuthTestRouter(t *testing.T, repo *countingStudentRepo) (*gin.Engine, *redis.Client) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	r := gin.New()
	r.GET("/me", StudentAuthMiddleware(repo, cache), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": c.GetString("studentID")})
	})
	return r, cache
}

func doAuthRequest(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestStudentAuthMiddlewareCachesTokenHash(t *testing.T) {
	token, err := utils.GenerateToken("stu-1", "amara@example.com", time.Hour)
	require.NoError(t, err)

	repo := &countingStudentRepo{student: &models.Student{
		ID:        "stu-1",
		AuthToken: utils.HashToken(token),
	}}
	r, _ := newAuthTestRouter(t, repo)

	w := doAuthRequest(r, token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, repo.lookups)

	// The second request is served from the cached hash.
	w = doAuthRequest(r, token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, repo.lookups)
}

func TestStudentAuthMiddlewareRejectsAfterSignOut(t *testing.T) {
	token, err := utils.GenerateToken("stu-1", "amara@example.com", time.Hour)
	require.NoError(t, err)

	repo := &countingStudentRepo{student: &models.Student{
		ID:        "stu-1",
		AuthToken: utils.HashToken(token),
	}}
	r, cache := newAuthTestRouter(t, repo)

	w := doAuthRequest(r, token)
	require.Equal(t, http.StatusOK, w.Code)

	// Sign-out clears the stored hash and drops the cached entry.
	repo.student.AuthToken = ""
	require.NoError(t, utils.InvalidateAuthTokenHash(cache, "stu-1"))

	w = doAuthRequest(r, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 2, repo.lookups, "invalidation must force a fresh lookup")
}

func TestStudentAuthMiddlewareRejectsBadRequests(t *testing.T) {
	repo := &countingStudentRepo{}
	r, _ := newAuthTestRouter(t, repo)

	w := doAuthRequest(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doAuthRequest(r, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 0, repo.lookups)
}

package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"ecoquiz-service/internal/app"
	"ecoquiz-service/internal/auth"
	"ecoquiz-service/internal/domain"
	"ecoquiz-service/internal/infra/memory"
	"ecoquiz-service/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServices() Services {
	log := logger.Nop()
	seq := memory.NewSequences()
	items := memory.NewItemStore()
	metrics := app.NewMetricService(memory.NewMetricStore(), seq, log)
	tokens := auth.NewTokens("test-secret", time.Minute)
	return Services{
		Items:      app.NewItemService(items, seq, log),
		Answers:    app.NewAnswerService(items, seq, metrics, log),
		Metrics:    metrics,
		Auth:       app.NewAuthService(memory.NewUserStore(), tokens, log, app.WithHashCost(bcrypt.MinCost)),
		Challenges: app.NewChallengeService(memory.NewChallengeStore()),
		Sequences:  seq,
	}
}

type apiClient struct {
	t      *testing.T
	router http.Handler
	token  string
}

func newAPIClient(t *testing.T) (*apiClient, Services) {
	t.Helper()
	svc := newTestServices()
	return &apiClient{t: t, router: NewRouter(svc, logger.Nop())}, svc
}

func (c *apiClient) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)
	return rec
}

// login registers an account and keeps its token for later requests.
func (c *apiClient) login(email string) domain.User {
	c.t.Helper()
	rec := c.do(http.MethodPost, "/users/register", map[string]string{"email": email, "password": "s3cret"})
	require.Equal(c.t, http.StatusCreated, rec.Code, rec.Body.String())
	var user domain.User
	require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), &user))

	form := url.Values{"username": {email}, "password": {"s3cret"}}
	req := httptest.NewRequest(http.MethodPost, "/users/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	tokRec := httptest.NewRecorder()
	c.router.ServeHTTP(tokRec, req)
	require.Equal(c.t, http.StatusOK, tokRec.Code, tokRec.Body.String())

	var tok app.Token
	require.NoError(c.t, json.Unmarshal(tokRec.Body.Bytes(), &tok))
	require.Equal(c.t, "bearer", tok.TokenType)
	c.token = tok.AccessToken
	return user
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestProtectedRoutesRequireBearerToken(t *testing.T) {
	c, _ := newAPIClient(t)

	rec := c.do(http.MethodGet, "/items", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
	env := decode[ErrorEnvelope](t, rec)
	require.Equal(t, "unauthorized", env.Error.Code)

	c.token = "not-a-jwt"
	rec = c.do(http.MethodGet, "/items", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	c, _ := newAPIClient(t)
	c.login("ana@example.org")

	rec := c.do(http.MethodPost, "/users/token", map[string]string{"username": "ana@example.org", "password": "wrong"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestItemLifecycle(t *testing.T) {
	c, _ := newAPIClient(t)
	c.login("ana@example.org")

	rec := c.do(http.MethodPost, "/items", domain.ItemInput{ID: 1, QuestionNumber: 2, Description: "mismatch"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid", decode[ErrorEnvelope](t, rec).Error.Code)

	rec = c.do(http.MethodPost, "/items", domain.ItemInput{Description: "Which bin takes glass?"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	item := decode[domain.Item](t, rec)
	require.Equal(t, int64(1), item.ID)
	require.Equal(t, item.ID, item.QuestionNumber)

	desc := "Which bin takes green glass?"
	rec = c.do(http.MethodPut, "/items/1", domain.ItemPatch{Description: &desc})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, desc, decode[domain.Item](t, rec).Description)

	rec = c.do(http.MethodGet, "/items/abc", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.do(http.MethodDelete, "/items/1", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = c.do(http.MethodGet, "/items/1", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "not_found", decode[ErrorEnvelope](t, rec).Error.Code)
}

func TestDeleteAllRewindsItemIDs(t *testing.T) {
	c, _ := newAPIClient(t)
	c.login("ana@example.org")

	for i := 0; i < 3; i++ {
		rec := c.do(http.MethodPost, "/items", domain.ItemInput{Description: "q"})
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	rec := c.do(http.MethodDelete, "/items", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 3, decode[map[string]int64](t, rec)["deleted"])

	rec = c.do(http.MethodPost, "/items", domain.ItemInput{Description: "fresh"})
	require.Equal(t, int64(1), decode[domain.Item](t, rec).ID)
}

func TestAnswersAndMetrics(t *testing.T) {
	c, _ := newAPIClient(t)
	user := c.login("ana@example.org")

	c.do(http.MethodPost, "/items", domain.ItemInput{Description: "Name a renewable energy source"})

	rec := c.do(http.MethodPost, "/items/1/answer", domain.AnswerInput{Answer: "wind"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	answer := decode[domain.Answer](t, rec)
	require.True(t, answer.HasID())
	require.Equal(t, user.ID, answer.UserID)

	rec = c.do(http.MethodPost, "/items/1/answer", domain.AnswerInput{Answer: ""})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.do(http.MethodPut, "/items/1/answer/"+itoa(answer.ID), domain.AnswerInput{Answer: "solar"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, answer.ID, decode[domain.Answer](t, rec).ID)

	rec = c.do(http.MethodPut, "/items/1/answer/999", domain.AnswerInput{Answer: "tidal"})
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, decode[ErrorEnvelope](t, rec).Error.Message, "answer not found")

	rec = c.do(http.MethodGet, "/items/1/answers", nil)
	answers := decode[[]domain.Answer](t, rec)
	require.Len(t, answers, 1)
	require.Equal(t, "solar", answers[0].Answer)

	rec = c.do(http.MethodDelete, "/items/1/answer/"+itoa(answer.ID), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	c.token = ""
	rec = c.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	metrics := decode[[]domain.Metric](t, rec)
	require.Len(t, metrics, 1)
	require.Equal(t, domain.Metric{ID: metrics[0].ID, QuestionID: 1, Responses: 1, ResponsesEdited: 1, ResponsesDeleted: 1}, metrics[0])

	c.login("ben@example.org")
	rec = c.do(http.MethodPost, "/metrics/reset/"+itoa(metrics[0].ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Zero(t, decode[domain.Metric](t, rec).Responses)

	rec = c.do(http.MethodPost, "/metrics/reset/404", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUsersAndConflicts(t *testing.T) {
	c, _ := newAPIClient(t)
	ana := c.login("ana@example.org")

	rec := c.do(http.MethodPost, "/users/register", map[string]string{"email": "ana@example.org", "password": "x"})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = c.do(http.MethodPost, "/users/register", map[string]string{"email": "not-an-email", "password": "x"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.do(http.MethodGet, "/users", nil)
	require.Len(t, decode[[]domain.User](t, rec), 1)
	require.NotContains(t, rec.Body.String(), "password")

	rec = c.do(http.MethodGet, "/users/"+ana.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = c.do(http.MethodDelete, "/users/"+ana.ID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	// The token still verifies but its subject is gone.
	rec = c.do(http.MethodGet, "/users", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestChallengesAndSequences(t *testing.T) {
	c, _ := newAPIClient(t)
	c.login("ana@example.org")

	rec := c.do(http.MethodPost, "/challenges", map[string]string{"description": "no title"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.do(http.MethodPost, "/challenges", map[string]string{"title": "Plastic-free week", "description": "Skip single use plastic"})
	require.Equal(t, http.StatusCreated, rec.Code)
	ch := decode[domain.Challenge](t, rec)

	title := "Plastic-free month"
	rec = c.do(http.MethodPut, "/challenges/"+ch.ID, domain.ChallengePatch{Title: &title})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, title, decode[domain.Challenge](t, rec).Title)

	rec = c.do(http.MethodDelete, "/challenges/"+ch.ID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = c.do(http.MethodGet, "/challenges/"+ch.ID, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	for want := int64(1); want <= 2; want++ {
		rec = c.do(http.MethodPost, "/sequences/tickets/next", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.EqualValues(t, want, decode[map[string]any](t, rec)["value"])
	}
}

func TestHealthz(t *testing.T) {
	c, _ := newAPIClient(t)
	rec := c.do(http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}

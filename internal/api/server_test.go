package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/yizeng/gab/gin/gorm/lotto/internal/api/handler/v1/response"
	"github.com/yizeng/gab/gin/gorm/lotto/internal/config"
	"github.com/yizeng/gab/gin/gorm/lotto/internal/domain"
	"github.com/yizeng/gab/gin/gorm/lotto/internal/pkg/jwthelper"
	"github.com/yizeng/gab/gin/gorm/lotto/internal/replica"
	"github.com/yizeng/gab/gin/gorm/lotto/internal/storage"
	"github.com/yizeng/gab/gin/gorm/lotto/internal/testutil"
)

const (
	testSigningKey = "test-signing-key"
	testUserAgent  = "lotto-api-test"
	pixelPNG       = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="
)

type ServerTestSuite struct {
	suite.Suite

	server     *Server
	mirror     *testutil.RecordingMirror
	adminToken string
}

func TestServerTestSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func (s *ServerTestSuite) SetupTest() {
	gdb := testutil.NewDB(s.T())
	uploadDir := s.T().TempDir()

	images, err := storage.NewLocalStorage(uploadDir, "http://localhost/uploads")
	s.Require().NoError(err)

	s.mirror = &testutil.RecordingMirror{}
	s.server = NewServer(&config.AppConfig{
		API: &config.APIConfig{
			BaseURL:       "localhost",
			JWTSigningKey: testSigningKey,
			UploadDir:     uploadDir,
		},
		Gin: &config.GinConfig{Mode: gin.TestMode},
	}, gdb, s.mirror, images)

	admin := testutil.CreateAdmin(s.T(), gdb, "admin@lotto.io")
	s.adminToken = s.tokenFor(admin.ID)
}

func (s *ServerTestSuite) tokenFor(uid uint) string {
	token, err := jwthelper.GenerateToken([]byte(testSigningKey), uid, testUserAgent)
	s.Require().NoError(err)

	return token
}

func (s *ServerTestSuite) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", testUserAgent)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.server.Router.ServeHTTP(rec, req)

	return rec
}

func (s *ServerTestSuite) decode(rec *httptest.ResponseRecorder, v any) {
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func (s *ServerTestSuite) requireErrKind(rec *httptest.ResponseRecorder, status int, kind string) {
	s.Require().Equal(status, rec.Code, rec.Body.String())

	var body response.Err
	s.decode(rec, &body)
	s.Equal(kind, body.Kind)
	s.NotEmpty(body.Message)
}

func (s *ServerTestSuite) register(email string) (domain.User, string) {
	rec := s.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":     email,
		"password":  "secret123",
		"user_name": "Player " + email,
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var user domain.User
	s.decode(rec, &user)

	rec = s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": "secret123",
	})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var login response.LoginResponse
	s.decode(rec, &login)
	s.Equal(user.ID, login.User.ID)

	return user, login.Token
}

func (s *ServerTestSuite) TestHealthcheck() {
	rec := s.do(http.MethodGet, "/", "", nil)
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"message":"OK"}`, rec.Body.String())
}

func (s *ServerTestSuite) TestScenario() {
	user, token := s.register("a@lotto.io")
	s.Equal(domain.RoleUser, user.Role)
	s.True(user.Wallet.IsZero())

	rec := s.do(http.MethodPost, fmt.Sprintf("/api/v1/admin/users/%d/wallet", user.ID), s.adminToken, map[string]string{"amount": "100"})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, "/api/v1/admin/lottos", s.adminToken, map[string]any{"quantity": 1, "price": "50"})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var tickets []domain.Ticket
	s.decode(rec, &tickets)
	s.Require().Len(tickets, 1)
	lid := tickets[0].ID

	rec = s.do(http.MethodPost, fmt.Sprintf("/api/v1/lottos/%d/purchase", lid), token, map[string]string{"price": "50"})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var update domain.WalletUpdate
	s.decode(rec, &update)
	s.True(decimal.NewFromInt(50).Equal(update.Wallet), update.Wallet.String())

	rec = s.do(http.MethodPost, fmt.Sprintf("/api/v1/lottos/%d/purchase", lid), token, map[string]string{"price": "50"})
	s.requireErrKind(rec, http.StatusConflict, response.KindTicketUnavailable)

	rec = s.do(http.MethodPost, "/api/v1/admin/rewards", s.adminToken, map[string]string{"reward_type": "2nd", "reward_money": "200"})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var reward domain.Reward
	s.decode(rec, &reward)

	rec = s.do(http.MethodPost, fmt.Sprintf("/api/v1/admin/lottos/%d/reward", lid), s.adminToken, map[string]uint{"rid": reward.ID})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, fmt.Sprintf("/api/v1/lottos/%d/claim", lid), token, nil)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var receipt domain.PayoutReceipt
	s.decode(rec, &receipt)
	s.True(decimal.NewFromInt(250).Equal(receipt.Wallet), receipt.Wallet.String())
	s.True(decimal.NewFromInt(200).Equal(receipt.Amount))

	rec = s.do(http.MethodPost, fmt.Sprintf("/api/v1/lottos/%d/claim", lid), token, nil)
	s.requireErrKind(rec, http.StatusConflict, response.KindAlreadyClaimed)

	rec = s.do(http.MethodGet, "/api/v1/users/me", token, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var me domain.User
	s.decode(rec, &me)
	s.True(decimal.NewFromInt(250).Equal(me.Wallet))

	rec = s.do(http.MethodGet, "/api/v1/lottos/mine", token, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var mine []domain.Ticket
	s.decode(rec, &mine)
	s.Require().Len(mine, 1)
	s.Equal(domain.TicketClaimed, mine[0].Status)
	s.Require().NotNil(mine[0].Reward)
	s.Equal("2nd", mine[0].Reward.Type)

	rec = s.do(http.MethodGet, "/api/v1/lottos/results", "", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var results []domain.Ticket
	s.decode(rec, &results)
	s.Len(results, 1)

	rec = s.do(http.MethodGet, "/api/v1/admin/lottos/rewarded", s.adminToken, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var rewarded []domain.RewardedTicket
	s.decode(rec, &rewarded)
	s.Require().Len(rewarded, 1)
	s.Equal("a@lotto.io", rewarded[0].OwnerEmail)

	s.NotEmpty(s.mirror.For(replica.KindTicket, lid))
	s.NotEmpty(s.mirror.For(replica.KindUser, user.ID))
}

func (s *ServerTestSuite) TestPurchase_InsufficientFunds() {
	user, token := s.register("broke@lotto.io")

	rec := s.do(http.MethodPost, "/api/v1/admin/lottos", s.adminToken, map[string]any{"quantity": 1, "price": "80"})
	s.Require().Equal(http.StatusCreated, rec.Code)
	var tickets []domain.Ticket
	s.decode(rec, &tickets)

	rec = s.do(http.MethodPost, fmt.Sprintf("/api/v1/lottos/%d/purchase", tickets[0].ID), token, map[string]string{"price": "80"})
	s.requireErrKind(rec, http.StatusPaymentRequired, response.KindInsufficientFunds)

	rec = s.do(http.MethodPost, fmt.Sprintf("/api/v1/admin/users/%d/wallet", user.ID), s.adminToken, map[string]string{"amount": "100"})
	s.Require().Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodPost, fmt.Sprintf("/api/v1/lottos/%d/purchase", tickets[0].ID), token, map[string]string{"price": "70"})
	s.requireErrKind(rec, http.StatusBadRequest, response.KindValidation)
}

func (s *ServerTestSuite) TestClaim_NotOwner() {
	owner, ownerToken := s.register("owner@lotto.io")
	_, otherToken := s.register("other@lotto.io")

	rec := s.do(http.MethodPost, fmt.Sprintf("/api/v1/admin/users/%d/wallet", owner.ID), s.adminToken, map[string]string{"amount": "10"})
	s.Require().Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodPost, "/api/v1/admin/lottos", s.adminToken, map[string]any{"quantity": 1, "price": "10"})
	s.Require().Equal(http.StatusCreated, rec.Code)
	var tickets []domain.Ticket
	s.decode(rec, &tickets)
	lid := tickets[0].ID

	rec = s.do(http.MethodPost, fmt.Sprintf("/api/v1/lottos/%d/purchase", lid), ownerToken, map[string]string{"price": "10"})
	s.Require().Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodPost, fmt.Sprintf("/api/v1/lottos/%d/claim", lid), otherToken, nil)
	s.requireErrKind(rec, http.StatusForbidden, response.KindPermissionDenied)

	rec = s.do(http.MethodPost, fmt.Sprintf("/api/v1/lottos/%d/claim", lid), ownerToken, nil)
	s.requireErrKind(rec, http.StatusNotFound, response.KindTicketNotFound)

	rec = s.do(http.MethodPost, "/api/v1/lottos/9999/claim", ownerToken, nil)
	s.requireErrKind(rec, http.StatusNotFound, response.KindTicketNotFound)
}

func (s *ServerTestSuite) TestAccessControl() {
	_, token := s.register("plain@lotto.io")

	rec := s.do(http.MethodGet, "/api/v1/lottos", "", nil)
	s.requireErrKind(rec, http.StatusUnauthorized, response.KindUnauthorized)

	rec = s.do(http.MethodGet, "/api/v1/admin/users", token, nil)
	s.requireErrKind(rec, http.StatusForbidden, response.KindPermissionDenied)

	rec = s.do(http.MethodPost, "/api/v1/admin/reset", token, nil)
	s.requireErrKind(rec, http.StatusForbidden, response.KindPermissionDenied)

	rec = s.do(http.MethodGet, "/api/v1/admin/users", s.adminToken, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var users []domain.User
	s.decode(rec, &users)
	s.Len(users, 2)
	s.NotContains(rec.Body.String(), "password")
}

func (s *ServerTestSuite) TestValidationErrors() {
	_, token := s.register("v@lotto.io")

	rec := s.do(http.MethodPost, "/api/v1/admin/lottos", s.adminToken, map[string]any{"quantity": 1001, "price": "10"})
	s.requireErrKind(rec, http.StatusBadRequest, response.KindValidation)

	rec = s.do(http.MethodPost, "/api/v1/admin/lottos", s.adminToken, map[string]any{"quantity": 0, "price": "10"})
	s.requireErrKind(rec, http.StatusBadRequest, response.KindValidation)

	rec = s.do(http.MethodPost, "/api/v1/lottos/search", token, map[string]string{"number": "12' OR 1=1"})
	s.requireErrKind(rec, http.StatusBadRequest, response.KindValidation)

	rec = s.do(http.MethodPost, "/api/v1/lottos/abc/purchase", token, map[string]string{"price": "10"})
	s.requireErrKind(rec, http.StatusBadRequest, response.KindValidation)

	rec = s.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{"email": "v@lotto.io", "password": "secret123", "user_name": "dup"})
	s.requireErrKind(rec, http.StatusConflict, response.KindEmailExists)

	rec = s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "v@lotto.io", "password": "wrong1234"})
	s.requireErrKind(rec, http.StatusUnauthorized, response.KindWrongCredentials)
}

func (s *ServerTestSuite) TestSearchAndReset() {
	rec := s.do(http.MethodPost, "/api/v1/admin/lottos", s.adminToken, map[string]any{"quantity": 3, "price": "10"})
	s.Require().Equal(http.StatusCreated, rec.Code)
	var tickets []domain.Ticket
	s.decode(rec, &tickets)

	_, token := s.register("search@lotto.io")
	rec = s.do(http.MethodPost, "/api/v1/lottos/search", token, map[string]string{"number": tickets[0].Number})
	s.Require().Equal(http.StatusOK, rec.Code)
	var found []domain.Ticket
	s.decode(rec, &found)
	s.Require().NotEmpty(found)
	s.Equal(tickets[0].Number, found[0].Number)

	rec = s.do(http.MethodPost, "/api/v1/admin/reset", s.adminToken, nil)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var summary domain.ResetSummary
	s.decode(rec, &summary)
	s.EqualValues(3, summary.TicketsDeleted)
	s.EqualValues(1, summary.UsersDeleted)

	rec = s.do(http.MethodGet, "/api/v1/users/me", token, nil)
	s.requireErrKind(rec, http.StatusUnauthorized, response.KindUnauthorized)
}

func (s *ServerTestSuite) TestRegister_Multipart() {
	png, err := base64.StdEncoding.DecodeString(pixelPNG)
	s.Require().NoError(err)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	s.Require().NoError(w.WriteField("email", "pic@lotto.io"))
	s.Require().NoError(w.WriteField("password", "secret123"))
	s.Require().NoError(w.WriteField("user_name", "Pic"))
	s.Require().NoError(w.WriteField("wallet", "25.50"))
	s.Require().NoError(w.WriteField("birthday", "2001-09-11"))
	part, err := w.CreateFormFile("image", "me.png")
	s.Require().NoError(err)
	_, err = part.Write(png)
	s.Require().NoError(err)
	s.Require().NoError(w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	s.server.Router.ServeHTTP(rec, req)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var user domain.User
	s.decode(rec, &user)
	s.True(decimal.RequireFromString("25.5").Equal(user.Wallet))
	s.Require().NotNil(user.Birthday)
	s.Equal("2001-09-11", user.Birthday.Format("2006-01-02"))
	s.Require().True(strings.HasPrefix(user.Image, "http://localhost/uploads/"), user.Image)

	rec = httptest.NewRecorder()
	s.server.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, strings.TrimPrefix(user.Image, "http://localhost"), nil))
	s.Equal(http.StatusOK, rec.Code)
	s.Equal(png, rec.Body.Bytes())
}

func (s *ServerTestSuite) TestRegister_RejectsNonImage() {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	s.Require().NoError(w.WriteField("email", "txt@lotto.io"))
	s.Require().NoError(w.WriteField("password", "secret123"))
	s.Require().NoError(w.WriteField("user_name", "Txt"))
	part, err := w.CreateFormFile("image", "notes.png")
	s.Require().NoError(err)
	_, err = part.Write([]byte("just some text"))
	s.Require().NoError(err)
	s.Require().NoError(w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	s.server.Router.ServeHTTP(rec, req)

	s.requireErrKind(rec, http.StatusBadRequest, response.KindValidation)
}

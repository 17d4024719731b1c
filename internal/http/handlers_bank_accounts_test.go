package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/taxlink/partner-portal/internal/domain/model"
	apperrors "github.com/taxlink/partner-portal/internal/errors"
	"github.com/taxlink/partner-portal/internal/mocks"
	"github.com/taxlink/partner-portal/internal/service"
)

func newBankAccountHandlers(t *testing.T) (*BankAccountHandlers, *mocks.MockBankAccountRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockBankAccountRepository(ctrl)
	h := &BankAccountHandlers{
		Accounts: service.NewBankAccountService(service.BankAccountServiceOptions{Accounts: repo}),
	}
	return h, repo
}

// pathReq builds a request and binds {id} the way the mux would.
func pathReq(method, target, id string, body string) *http.Request {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if id != "" {
		req.SetPathValue("id", id)
	}
	return withSession(req, "user-1")
}

func TestBankAccountHandlers_List(t *testing.T) {
	h, repo := newBankAccountHandlers(t)
	repo.EXPECT().List(gomock.Any(), "user-1").Return([]*model.BankAccount{
		{ID: "acct-1", IsDefault: true},
		{ID: "acct-2"},
	}, nil)

	rec := httptest.NewRecorder()
	h.List(rec, pathReq(http.MethodGet, "/api/bank-accounts", "", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		BankAccounts []*model.BankAccount `json:"bank_accounts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.BankAccounts, 2)
	assert.True(t, body.BankAccounts[0].IsDefault)
}

func TestBankAccountHandlers_ListRequiresSession(t *testing.T) {
	h, _ := newBankAccountHandlers(t)

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/bank-accounts", nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBankAccountHandlers_Get(t *testing.T) {
	h, repo := newBankAccountHandlers(t)
	repo.EXPECT().Get(gomock.Any(), "user-1", "acct-1").
		Return(&model.BankAccount{ID: "acct-1", CompanyName: "Acme LLC"}, nil)

	rec := httptest.NewRecorder()
	h.Get(rec, pathReq(http.MethodGet, "/api/bank-accounts/acct-1", "acct-1", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Acme LLC")
}

func TestBankAccountHandlers_GetNotFound(t *testing.T) {
	h, repo := newBankAccountHandlers(t)
	repo.EXPECT().Get(gomock.Any(), "user-1", "acct-9").
		Return(nil, apperrors.NotFoundf("bank account %s not found", "acct-9"))

	rec := httptest.NewRecorder()
	h.Get(rec, pathReq(http.MethodGet, "/api/bank-accounts/acct-9", "acct-9", ""))

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBankAccountHandlers_Create(t *testing.T) {
	h, repo := newBankAccountHandlers(t)
	repo.EXPECT().Create(gomock.Any(), "user-1", gomock.Any()).
		DoAndReturn(func(_ any, partnerID string, req *model.CreateBankAccountRequest) (*model.BankAccount, error) {
			assert.Equal(t, "123456789", req.RoutingNumber)
			return &model.BankAccount{
				ID:            "acct-1",
				PartnerID:     partnerID,
				CompanyName:   req.CompanyName,
				RoutingNumber: req.RoutingNumber,
				AccountNumber: req.AccountNumber,
				AccountType:   req.AccountType,
				IsDefault:     true,
			}, nil
		})

	rec := httptest.NewRecorder()
	body := `{"company_name":"Acme LLC","routing_number":"123456789","account_number":"0001112223","account_type":"checking"}`
	h.Create(rec, pathReq(http.MethodPost, "/api/bank-accounts", "", body))

	require.Equal(t, http.StatusCreated, rec.Code)
	var account model.BankAccount
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &account))
	assert.Equal(t, "acct-1", account.ID)
	assert.True(t, account.IsDefault)
}

func TestBankAccountHandlers_CreateInvalidRouting(t *testing.T) {
	h, repo := newBankAccountHandlers(t)
	repo.EXPECT().Create(gomock.Any(), "user-1", gomock.Any()).
		Return(nil, apperrors.ValidationField("routing_number", "routing number must be exactly 9 digits"))

	rec := httptest.NewRecorder()
	body := `{"company_name":"Acme LLC","routing_number":"12345","account_number":"0001112223","account_type":"checking"}`
	h.Create(rec, pathReq(http.MethodPost, "/api/bank-accounts", "", body))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var respBody map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &respBody))
	assert.Equal(t, "routing_number", respBody["field"])
}

func TestBankAccountHandlers_Update(t *testing.T) {
	h, repo := newBankAccountHandlers(t)
	repo.EXPECT().Update(gomock.Any(), "user-1", "acct-1", gomock.Any()).
		DoAndReturn(func(_ any, _, id string, req model.UpdateBankAccountRequest) (*model.BankAccount, error) {
			require.NotNil(t, req.CompanyName)
			assert.Nil(t, req.RoutingNumber)
			return &model.BankAccount{ID: id, CompanyName: *req.CompanyName}, nil
		})

	rec := httptest.NewRecorder()
	h.Update(rec, pathReq(http.MethodPut, "/api/bank-accounts/acct-1", "acct-1", `{"company_name":"New Name LLC"}`))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "New Name LLC")
}

func TestBankAccountHandlers_Delete(t *testing.T) {
	h, repo := newBankAccountHandlers(t)
	repo.EXPECT().Delete(gomock.Any(), "user-1", "acct-1").Return(true, nil)

	rec := httptest.NewRecorder()
	h.Delete(rec, pathReq(http.MethodDelete, "/api/bank-accounts/acct-1", "acct-1", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "deleted")
}

func TestBankAccountHandlers_DeleteMissing(t *testing.T) {
	h, repo := newBankAccountHandlers(t)
	repo.EXPECT().Delete(gomock.Any(), "user-1", "acct-9").Return(false, nil)

	rec := httptest.NewRecorder()
	h.Delete(rec, pathReq(http.MethodDelete, "/api/bank-accounts/acct-9", "acct-9", ""))

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBankAccountHandlers_SetDefault(t *testing.T) {
	h, repo := newBankAccountHandlers(t)
	repo.EXPECT().SetDefault(gomock.Any(), "user-1", "acct-2").Return(nil)
	repo.EXPECT().Get(gomock.Any(), "user-1", "acct-2").
		Return(&model.BankAccount{ID: "acct-2", IsDefault: true}, nil)

	rec := httptest.NewRecorder()
	h.SetDefault(rec, pathReq(http.MethodPost, "/api/bank-accounts/acct-2/default", "acct-2", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	var account model.BankAccount
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &account))
	assert.True(t, account.IsDefault)
}

func TestBankAccountHandlers_SetDefaultMissing(t *testing.T) {
	h, repo := newBankAccountHandlers(t)
	repo.EXPECT().SetDefault(gomock.Any(), "user-1", "acct-9").
		Return(apperrors.NotFoundf("bank account %s not found", "acct-9"))

	rec := httptest.NewRecorder()
	h.SetDefault(rec, pathReq(http.MethodPost, "/api/bank-accounts/acct-9/default", "acct-9", ""))

	require.Equal(t, http.StatusNotFound, rec.Code)
}

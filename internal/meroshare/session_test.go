package meroshare

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saugatsn/AutoApplyIPO/internal/model"
)

// fakePortal is a minimal portal backend for session tests.
type fakePortal struct {
	mux        *http.ServeMux
	logins     atomic.Int64
	logouts    atomic.Int64
	applyCalls atomic.Int64
	applied    map[int]bool
}

func newFakePortal(t *testing.T) (*fakePortal, *httptest.Server) {
	t.Helper()
	p := &fakePortal{mux: http.NewServeMux(), applied: make(map[int]bool)}

	p.mux.HandleFunc("/api/meroShare/auth/", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body.Password != "goodpass" {
			http.Error(w, `{"message":"Invalid credentials."}`, http.StatusUnauthorized)
			return
		}
		p.logins.Add(1)
		w.Header().Set("Authorization", "token-"+body.Username)
	})
	p.mux.HandleFunc("/api/meroShare/auth/logout/", func(w http.ResponseWriter, r *http.Request) {
		p.logouts.Add(1)
	})
	p.mux.HandleFunc("/api/meroShare/ownDetail/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"name": "Alice Shrestha", "boid": "1301040000001111", "demat": "1301040000001111",
		})
	})
	p.mux.HandleFunc("/api/meroShare/bank/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]int{{"id": 44}})
	})
	p.mux.HandleFunc("/api/meroShare/bank/44", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"accountNumber": "0070010001", "accountBranchId": 7, "id": 9001, "bankId": 44,
		})
	})
	p.mux.HandleFunc("/api/meroShare/companyShare/applicableIssue/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"object": []model.Issue{
			{CompanyShareID: 501, CompanyName: "Himal Hydro", Scrip: "HIMAL", ShareGroupName: "Ordinary Shares", CloseDate: "2026-09-05"},
			{CompanyShareID: 502, CompanyName: "Debenture Co", Scrip: "DEBCO", ShareGroupName: "Debenture", CloseDate: "2026-09-07"},
		}})
	})
	p.mux.HandleFunc("/api/meroShare/applicantForm/share/apply/", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			CompanyShareID int    `json:"companyShareId"`
			AppliedKitta   string `json:"appliedKitta"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		p.applyCalls.Add(1)
		if p.applied[body.CompanyShareID] {
			http.Error(w, `{"message":"Already applied for this issue."}`, http.StatusConflict)
			return
		}
		p.applied[body.CompanyShareID] = true
		json.NewEncoder(w).Encode(ApplyResult{Status: "CREATED", Message: "Share applied successfully."})
	})
	p.mux.HandleFunc("/api/meroShare/applicantForm/active/search/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"object": []map[string]any{
			{"companyShareId": 501, "companyName": "Himal Hydro", "scrip": "HIMAL", "applicantFormId": 88001},
		}})
	})
	p.mux.HandleFunc("/api/meroShare/applicantForm/report/detail/88001", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(FormStatus{
			StatusName: "ALLOTED", AppliedKitta: 10, AppliedAmount: 1000, ReceivedKitta: 10,
		})
	})
	p.mux.HandleFunc("/api/meroShare/myPortfolio/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"meroShareMyPortfolio": []model.PortfolioEntry{
			{Scrip: "HIMAL", CurrentBalance: 10, LastTransactionPrice: 310, PreviousClosingPrice: 300,
				ValueAsOfLastTransactionPrice: 3100, ValueAsOfPreviousClosingPrice: 3000},
		}})
	})

	srv := httptest.NewServer(p.mux)
	t.Cleanup(srv.Close)
	return p, srv
}

func testSession(t *testing.T, srv *httptest.Server) *Session {
	t.Helper()
	account := &model.Account{
		Dmat: "1301040000001111", Password: "goodpass", PIN: 1234,
		CapitalID: 130, CRN: "CRN-1",
	}
	return NewSession(NewClient(srv.URL, ""), account)
}

func TestSessionAutoLoginOnFirstUse(t *testing.T) {
	portal, srv := newFakePortal(t)
	s := testSession(t, srv)

	assert.Equal(t, LoggedOut, s.State())
	issues, err := s.FetchApplicableIssues()
	require.NoError(t, err)
	assert.Equal(t, LoggedIn, s.State())
	assert.EqualValues(t, 1, portal.logins.Load())
	require.Len(t, issues, 2)
	assert.True(t, issues[0].IsOrdinary())
	assert.False(t, issues[1].IsOrdinary())

	// Second call reuses the session token.
	_, err = s.FetchApplicableIssues()
	require.NoError(t, err)
	assert.EqualValues(t, 1, portal.logins.Load())
}

func TestSessionLoginFailure(t *testing.T) {
	_, srv := newFakePortal(t)
	account := &model.Account{Dmat: "1301040000001111", Password: "badpass", CapitalID: 130}
	s := NewSession(NewClient(srv.URL, ""), account)

	err := s.Login()
	require.Error(t, err)
	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, http.StatusUnauthorized, remote.StatusCode)
	assert.Equal(t, LoggedOut, s.State())
}

func TestSessionFetchDetails(t *testing.T) {
	_, srv := newFakePortal(t)
	s := testSession(t, srv)

	require.NoError(t, s.FetchDetails())
	a := s.Account()
	assert.Equal(t, "Alice Shrestha", a.Name)
	assert.Equal(t, "1301040000001111", a.BOID)
	assert.Equal(t, "0070010001", a.AccountNumber)
	assert.Equal(t, 44, a.BankID)
	assert.Equal(t, 7, a.BranchID)
	assert.Equal(t, 9001, a.CustomerID)
}

func TestSessionApplyThenDuplicate(t *testing.T) {
	_, srv := newFakePortal(t)
	s := testSession(t, srv)

	result, err := s.Apply(501, 10)
	require.NoError(t, err)
	assert.True(t, result.Applied())

	// Identical second call: deterministic rejection, not an error.
	result, err = s.Apply(501, 10)
	require.NoError(t, err)
	assert.False(t, result.Applied())
	assert.Contains(t, result.Message, "Already applied")
}

func TestSessionApplyTransportError(t *testing.T) {
	_, srv := newFakePortal(t)
	s := testSession(t, srv)
	require.NoError(t, s.Login())
	srv.Close()

	result, err := s.Apply(501, 10)
	require.Error(t, err)
	assert.Nil(t, result)
	var remote *RemoteError
	assert.ErrorAs(t, err, &remote)
}

func TestSessionLogout(t *testing.T) {
	portal, srv := newFakePortal(t)
	s := testSession(t, srv)

	// Logout when never logged in is a no-op.
	require.NoError(t, s.Logout())
	assert.EqualValues(t, 0, portal.logouts.Load())

	require.NoError(t, s.Login())
	require.NoError(t, s.Logout())
	assert.Equal(t, LoggedOut, s.State())
	assert.EqualValues(t, 1, portal.logouts.Load())
}

func TestSessionAppliedIssuesStatus(t *testing.T) {
	_, srv := newFakePortal(t)
	s := testSession(t, srv)

	require.NoError(t, s.FetchAppliedIssues())
	require.Len(t, s.Account().Issues, 1)
	assert.Nil(t, s.Account().Issues[0].Alloted)

	require.NoError(t, s.FetchAppliedIssuesStatus())
	issue := s.Account().Issues[0]
	require.NotNil(t, issue.Alloted)
	assert.True(t, *issue.Alloted)
	assert.Equal(t, 10.0, issue.AllotedQuantity)
	assert.Equal(t, 1000.0, issue.AppliedAmount)

	// Refresh keeps the resolved allotment state.
	require.NoError(t, s.FetchAppliedIssues())
	require.NotNil(t, s.Account().Issues[0].Alloted)
}

func TestSessionFetchPortfolio(t *testing.T) {
	_, srv := newFakePortal(t)
	s := testSession(t, srv)

	require.NoError(t, s.FetchPortfolio())
	require.Len(t, s.Account().Portfolio, 1)
	assert.Equal(t, "HIMAL", s.Account().Portfolio[0].Scrip)

	// Second fetch overwrites the cache rather than appending.
	require.NoError(t, s.FetchPortfolio())
	assert.Len(t, s.Account().Portfolio, 1)
}

func TestFormStatusAlloted(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{"ALLOTED", true},
		{"Alloted", true},
		{"NOT_ALLOTED", false},
		{"BLOCK_FAILED", false},
		{"IN_PROCESS", false},
	}
	for _, tt := range tests {
		f := &FormStatus{StatusName: tt.status}
		assert.Equal(t, tt.want, f.Alloted(), "status %q", tt.status)
	}
}

func TestFetchApplicationStatusMissingForm(t *testing.T) {
	_, srv := newFakePortal(t)
	s := testSession(t, srv)

	_, err := s.FetchApplicationStatus(0)
	assert.ErrorIs(t, err, ErrFormNotFound)
}

func TestFetchCapitals(t *testing.T) {
	portal, srv := newFakePortal(t)
	portal.mux.HandleFunc("/api/meroShare/capital/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]any{
			{"code": "10400", "id": 139, "name": "Some Capital Ltd."},
			{"code": "13200", "id": 128, "name": "Other Capital Ltd."},
		})
	})

	capitals, err := NewClient(srv.URL, "").FetchCapitals()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"10400": 139, "13200": 128}, capitals)
}

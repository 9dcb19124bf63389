package meroshare

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/saugatsn/AutoApplyIPO/internal/model"
)

// State is the session lifecycle state.
type State int

const (
	LoggedOut State = iota
	LoggingIn
	LoggedIn
)

// Session owns one account's authenticated relationship with the portal.
// Operations auto-authenticate on first use; Logout is terminal until the
// next operation logs back in.
type Session struct {
	client  *Client
	account *model.Account
	state   State
	token   string
}

// NewSession creates a logged-out session for the account.
func NewSession(c *Client, a *model.Account) *Session {
	return &Session{client: c, account: a}
}

// Account returns the session's account.
func (s *Session) Account() *model.Account { return s.account }

// AccountName returns the account display name, falling back to the DMAT.
func (s *Session) AccountName() string {
	if s.account.Name != "" {
		return s.account.Name
	}
	return s.account.Dmat
}

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Login authenticates against the portal and stores the session token.
// A non-2xx response is fatal to the session: state returns to LoggedOut.
func (s *Session) Login() error {
	s.state = LoggingIn
	payload := map[string]any{
		"clientId": s.account.CapitalID,
		"username": s.account.Dmat,
		"password": s.account.Password,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		s.state = LoggedOut
		return fmt.Errorf("login: marshal request: %w", err)
	}
	req, err := http.NewRequest(http.MethodPost, s.client.BaseURL+"/api/meroShare/auth/", bytes.NewReader(data))
	if err != nil {
		s.state = LoggedOut
		return fmt.Errorf("login: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.HTTP.Do(req)
	if err != nil {
		s.state = LoggedOut
		return &RemoteError{Op: "login", Body: err.Error()}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		s.state = LoggedOut
		return &RemoteError{Op: "login", StatusCode: resp.StatusCode, Body: string(body)}
	}
	token := resp.Header.Get("Authorization")
	if token == "" {
		s.state = LoggedOut
		return &ParseError{Op: "login", Err: errors.New("missing Authorization header")}
	}
	s.token = token
	s.state = LoggedIn
	return nil
}

func (s *Session) ensureLoggedIn() error {
	if s.state == LoggedIn {
		return nil
	}
	return s.Login()
}

// Logout ends the remote session. It is always attempted after an apply
// batch; the local state transitions to LoggedOut regardless of the remote
// outcome.
func (s *Session) Logout() error {
	if s.state != LoggedIn {
		return nil
	}
	err := s.client.do("logout", http.MethodGet, "/api/meroShare/auth/logout/", s.token, nil, nil)
	s.token = ""
	s.state = LoggedOut
	return err
}

type ownDetail struct {
	Name  string `json:"name"`
	BOID  string `json:"boid"`
	Demat string `json:"demat"`
}

type bankBrief struct {
	ID int `json:"id"`
}

type bankDetail struct {
	AccountNumber   string `json:"accountNumber"`
	AccountBranchID int    `json:"accountBranchId"`
	CustomerID      int    `json:"id"`
	BankID          int    `json:"bankId"`
}

// FetchDetails populates the account's display name, BOID, and bank identity
// fields from the portal.
func (s *Session) FetchDetails() error {
	if err := s.ensureLoggedIn(); err != nil {
		return err
	}
	var detail ownDetail
	if err := s.client.do("fetch details", http.MethodGet, "/api/meroShare/ownDetail/", s.token, nil, &detail); err != nil {
		return err
	}
	s.account.Name = detail.Name
	s.account.BOID = detail.BOID

	var banks []bankBrief
	if err := s.client.do("fetch banks", http.MethodGet, "/api/meroShare/bank/", s.token, nil, &banks); err != nil {
		return err
	}
	if len(banks) == 0 {
		return &ParseError{Op: "fetch banks", Err: errors.New("no bank registered for account")}
	}
	var bank bankDetail
	path := "/api/meroShare/bank/" + itoa(banks[0].ID)
	if err := s.client.do("fetch bank detail", http.MethodGet, path, s.token, nil, &bank); err != nil {
		return err
	}
	s.account.BankID = banks[0].ID
	s.account.AccountNumber = bank.AccountNumber
	s.account.BranchID = bank.AccountBranchID
	s.account.CustomerID = bank.CustomerID
	return nil
}

type issueList struct {
	Object []model.Issue `json:"object"`
}

// FetchApplicableIssues returns the currently open issues across all share
// groups, in whatever order the portal reports them.
func (s *Session) FetchApplicableIssues() ([]model.Issue, error) {
	if err := s.ensureLoggedIn(); err != nil {
		return nil, err
	}
	payload := map[string]any{
		"filterFieldParams": []map[string]string{
			{"key": "companyIssue.companyISIN.script"},
			{"key": "companyIssue.companyISIN.company.name"},
		},
		"page": 1, "size": 200,
	}
	var list issueList
	if err := s.client.do("fetch applicable issues", http.MethodPost,
		"/api/meroShare/companyShare/applicableIssue/", s.token, payload, &list); err != nil {
		return nil, err
	}
	return list.Object, nil
}

// ApplyResult is the portal's response to an application submission.
type ApplyResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// StatusCreated is the portal status for a successfully created application.
const StatusCreated = "CREATED"

// Applied reports whether the submission was accepted.
func (r *ApplyResult) Applied() bool { return r.Status == StatusCreated }

// Apply submits one application for the issue. A duplicate submission is
// reported by the portal as a rejection; it comes back as a non-applied
// result, not an error, so re-running a batch is safe. Transport and parse
// failures are returned as errors for the caller to convert into a failed
// per-account result.
func (s *Session) Apply(shareID, quantity int) (*ApplyResult, error) {
	if err := s.ensureLoggedIn(); err != nil {
		return nil, err
	}
	payload := map[string]any{
		"companyShareId":  shareID,
		"appliedKitta":    itoa(quantity),
		"crnNumber":       s.account.CRN,
		"transactionPIN":  s.account.PIN,
		"demat":           s.account.Dmat,
		"boid":            s.account.BOID,
		"accountNumber":   s.account.AccountNumber,
		"customerId":      s.account.CustomerID,
		"accountBranchId": s.account.BranchID,
		"bankId":          s.account.BankID,
	}
	var result ApplyResult
	err := s.client.do("apply", http.MethodPost, "/api/meroShare/applicantForm/share/apply/", s.token, payload, &result)
	if err != nil {
		// The portal rejects duplicates and validation failures with a
		// non-2xx status and a JSON message. Surface those as a
		// deterministic rejection rather than an error.
		var remote *RemoteError
		if errors.As(err, &remote) && remote.StatusCode != 0 {
			if msg := rejectionMessage(remote.Body); msg != "" {
				return &ApplyResult{Status: "REJECTED", Message: msg}, nil
			}
		}
		return nil, err
	}
	return &result, nil
}

func rejectionMessage(body string) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return ""
	}
	return payload.Message
}

type reportEntry struct {
	CompanyShareID  int    `json:"companyShareId"`
	CompanyName     string `json:"companyName"`
	Scrip           string `json:"scrip"`
	ApplicantFormID int64  `json:"applicantFormId"`
}

type reportList struct {
	Object []reportEntry `json:"object"`
}

// FetchApplicationReports returns the account's submitted application forms,
// newest first as reported by the portal.
func (s *Session) FetchApplicationReports() ([]model.IssueStatus, error) {
	if err := s.ensureLoggedIn(); err != nil {
		return nil, err
	}
	payload := map[string]any{
		"filterFieldParams": []map[string]string{
			{"key": "companyShare.companyIssue.companyISIN.script"},
			{"key": "companyShare.companyIssue.companyISIN.company.name"},
		},
		"page": 1, "size": 200,
	}
	var list reportList
	if err := s.client.do("fetch application reports", http.MethodPost,
		"/api/meroShare/applicantForm/active/search/", s.token, payload, &list); err != nil {
		return nil, err
	}
	statuses := make([]model.IssueStatus, 0, len(list.Object))
	for _, e := range list.Object {
		statuses = append(statuses, model.IssueStatus{
			CompanyShareID: e.CompanyShareID,
			CompanyName:    e.CompanyName,
			Scrip:          e.Scrip,
			FormID:         e.ApplicantFormID,
		})
	}
	return statuses, nil
}

// FormStatus is the detailed state of one application form.
type FormStatus struct {
	StatusName      string  `json:"statusName"`
	ReasonOrRemark  string  `json:"reasonOrRemark"`
	AppliedKitta    float64 `json:"appliedKitta"`
	AppliedAmount   float64 `json:"appliedAmount"`
	ReceivedKitta   float64 `json:"receivedKitta"`
}

// Alloted reports whether the form was alloted shares.
func (f *FormStatus) Alloted() bool {
	status := strings.ToUpper(f.StatusName)
	return strings.Contains(status, "ALLOT") && !strings.Contains(status, "NOT")
}

// FetchApplicationStatus fetches the detailed status of one form.
// A zero form id returns ErrFormNotFound; callers treat it as unknown status.
func (s *Session) FetchApplicationStatus(formID int64) (*FormStatus, error) {
	if formID == 0 {
		return nil, ErrFormNotFound
	}
	if err := s.ensureLoggedIn(); err != nil {
		return nil, err
	}
	var status FormStatus
	path := fmt.Sprintf("/api/meroShare/applicantForm/report/detail/%d", formID)
	if err := s.client.do("fetch application status", http.MethodGet, path, s.token, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// FetchAppliedIssues refreshes the account's cached list of applied issues
// from the application reports. Allotment outcome stays unknown until
// FetchAppliedIssuesStatus resolves it.
func (s *Session) FetchAppliedIssues() error {
	statuses, err := s.FetchApplicationReports()
	if err != nil {
		return err
	}
	// Carry over already-resolved allotment state for forms still listed.
	known := make(map[int]model.IssueStatus, len(s.account.Issues))
	for _, issue := range s.account.Issues {
		known[issue.CompanyShareID] = issue
	}
	for i, issue := range statuses {
		if prior, ok := known[issue.CompanyShareID]; ok && prior.Alloted != nil {
			statuses[i].Status = prior.Status
			statuses[i].Alloted = prior.Alloted
			statuses[i].AllotedQuantity = prior.AllotedQuantity
			statuses[i].AppliedQuantity = prior.AppliedQuantity
			statuses[i].AppliedAmount = prior.AppliedAmount
		}
	}
	s.account.Issues = statuses
	return nil
}

// FetchAppliedIssuesStatus resolves the allotment outcome of every cached
// applied issue that is still unknown. Per-issue failures are logged and
// skipped so one stale form never blocks the rest.
func (s *Session) FetchAppliedIssuesStatus() error {
	if err := s.ensureLoggedIn(); err != nil {
		return err
	}
	for i := range s.account.Issues {
		issue := &s.account.Issues[i]
		if issue.Alloted != nil {
			continue
		}
		status, err := s.FetchApplicationStatus(issue.FormID)
		if err != nil {
			log.Printf("[WARN] status for %s form %d: %v", issue.Scrip, issue.FormID, err)
			continue
		}
		alloted := status.Alloted()
		issue.Status = status.StatusName
		issue.Alloted = &alloted
		issue.AllotedQuantity = status.ReceivedKitta
		issue.AppliedQuantity = status.AppliedKitta
		issue.AppliedAmount = status.AppliedAmount
	}
	return nil
}

type portfolioList struct {
	MeroShareMyPortfolio []model.PortfolioEntry `json:"meroShareMyPortfolio"`
}

// FetchPortfolio refreshes the account's cached portfolio entries. Safe to
// call repeatedly; the cache is overwritten each time.
func (s *Session) FetchPortfolio() error {
	if err := s.ensureLoggedIn(); err != nil {
		return err
	}
	payload := map[string]any{
		"demat":      []string{s.account.Dmat},
		"clientCode": itoa(s.account.CapitalID),
		"page":       1,
		"size":       200,
	}
	var list portfolioList
	if err := s.client.do("fetch portfolio", http.MethodPost, "/api/meroShare/myPortfolio/", s.token, payload, &list); err != nil {
		return err
	}
	s.account.Portfolio = list.MeroShareMyPortfolio
	return nil
}

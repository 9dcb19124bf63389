package model

// Account is one brokerage identity registered with the depository portal.
// Password and PIN are stored only inside the encrypted vault and must never
// be logged or displayed without explicit confirmation.
type Account struct {
	Dmat      string `json:"dmat"`
	Password  string `json:"password"`
	PIN       int    `json:"pin"`
	CapitalID int    `json:"capital_id"`
	CRN       string `json:"crn"`

	// Identity fields populated by a remote detail fetch.
	Name          string `json:"name,omitempty"`
	BOID          string `json:"boid,omitempty"`
	AccountNumber string `json:"account,omitempty"`
	CustomerID    int    `json:"customer_id,omitempty"`
	BranchID      int    `json:"branch_id,omitempty"`
	BankID        int    `json:"bank_id,omitempty"`

	Tag string `json:"tag,omitempty"`

	// Cached remote state, refreshed by sync.
	Portfolio []PortfolioEntry `json:"portfolio,omitempty"`
	Issues    []IssueStatus    `json:"issues,omitempty"`
}

// DepositoryCode returns the 5-character depository-participant code embedded
// in the DMAT number, used to resolve the capital id.
func (a *Account) DepositoryCode() string {
	if len(a.Dmat) < 8 {
		return ""
	}
	return a.Dmat[3:8]
}

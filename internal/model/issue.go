package model

// OrdinaryShares is the share group auto-selected for application.
const OrdinaryShares = "Ordinary Shares"

// Issue is one open primary offering as reported by the portal.
// Snapshots are immutable per fetch and never persisted beyond the ledger summary.
type Issue struct {
	CompanyShareID int    `json:"companyShareId"`
	CompanyName    string `json:"companyName"`
	Scrip          string `json:"scrip"`
	ShareTypeName  string `json:"shareTypeName"`
	ShareGroupName string `json:"shareGroupName"`
	CloseDate      string `json:"issueCloseDate"`
}

// IsOrdinary reports whether the issue belongs to the ordinary-shares group.
func (i Issue) IsOrdinary() bool {
	return i.ShareGroupName == OrdinaryShares
}

// IssueStatus is the cached per-account state of an issue the account has
// applied for, including allotment outcome once known. Alloted is nil until
// the allotment status has been fetched.
type IssueStatus struct {
	CompanyShareID  int     `json:"company_share_id"`
	Scrip           string  `json:"scrip,omitempty"`
	CompanyName     string  `json:"company_name,omitempty"`
	FormID          int64   `json:"form_id,omitempty"`
	Status          string  `json:"status,omitempty"`
	Alloted         *bool   `json:"alloted,omitempty"`
	AllotedQuantity float64 `json:"alloted_quantity,omitempty"`
	AppliedQuantity float64 `json:"applied_quantity,omitempty"`
	AppliedAmount   float64 `json:"applied_amount,omitempty"`
}

// StatusBlockFailed is the portal status for a rejected application.
const StatusBlockFailed = "BLOCK_FAILED"

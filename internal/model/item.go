package model

// Item is a reported object. DateReported is a calendar date (YYYY-MM-DD).
type Item struct {
	ID           int64  `json:"ItemID"`
	Description  string `json:"Description"`
	DateReported string `json:"DateReported"`
	CategoryID   int64  `json:"CategoryID"`
	StatusID     int64  `json:"StatusID"`
	LocationID   int64  `json:"LocationID"`
}

// ItemReport is the input of a lost or found report: the item and the user
// reporting it. An empty Date means today.
type ItemReport struct {
	Description string `json:"description"`
	CategoryID  int64  `json:"categoryId"`
	LocationID  int64  `json:"locationId"`
	UserID      int64  `json:"userId"`
	Date        string `json:"date,omitempty"`
}

// Report links a user to an item they reported lost or found.
type Report struct {
	ID         int64  `json:"ReportID"`
	ReportType string `json:"ReportType"`
	ReportDate string `json:"ReportDate"`
	UserID     int64  `json:"UserID"`
	ItemID     int64  `json:"ItemID"`
}

// ReportResult identifies the rows created by a lost or found report.
type ReportResult struct {
	ItemID   int64 `json:"itemId"`
	ReportID int64 `json:"reportId"`
}

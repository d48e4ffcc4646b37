package model

// Claim records a user claiming an item.
type Claim struct {
	ID        int64  `json:"ClaimID"`
	UserID    int64  `json:"UserID"`
	ItemID    int64  `json:"ItemID"`
	ClaimDate string `json:"ClaimDate"`
}

// Notification tells a user that an item they reported has been claimed.
type Notification struct {
	ID               int64  `json:"NotificationID"`
	UserID           int64  `json:"UserID"`
	ItemID           int64  `json:"ItemID"`
	NotificationDate string `json:"NotificationDate"`

	// Joined fields.
	ItemDescription string `json:"ItemDescription,omitempty"`
}

package model

// User is a person who reports or claims items.
type User struct {
	ID    int64  `json:"UserID"`
	Name  string `json:"Name"`
	Email string `json:"Email"`
	Phone string `json:"Phone,omitempty"`
	Role  string `json:"Role"`
}

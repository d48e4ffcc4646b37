package model

// Category groups items.
type Category struct {
	ID   int64  `json:"CategoryID"`
	Name string `json:"CategoryName"`
}

// Status is an item status (Lost, Found, Claimed, Unclaimed).
type Status struct {
	ID          int64  `json:"StatusID"`
	Description string `json:"StatusDescription"`
}

// Location is a room in a campus building.
type Location struct {
	ID              int64  `json:"LocationID"`
	BuildingCode    string `json:"BuildingCode"`
	RoomNumber      int64  `json:"RoomNumber"`
	BuildingName    string `json:"BuildingName"`
	BuildingAddress string `json:"BuildingAddress"`
}

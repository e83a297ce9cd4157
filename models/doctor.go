package models

type Doctor struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Password     string  `json:"password,omitempty"`
	Speciality   string  `json:"speciality"`
	Degree       string  `json:"degree"`
	Experience   string  `json:"experience"`
	About        string  `json:"about"`
	Fees         float64 `json:"fees"`
	AdrLine1     string  `json:"adrLine1"`
	AdrLine2     string  `json:"adrLine2"`
	ImageURL     string  `json:"imageUrl"`
	Availability bool    `json:"availability"`
	Earnings     float64 `json:"earnings"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

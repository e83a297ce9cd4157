package models

type Patient struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password,omitempty"`
	DateOfBirth string `json:"dateOfBirth"`
	Age         *int   `json:"age"`
	PhoneNumber string `json:"phone"`
	Address     string `json:"address"`
	Gender      string `json:"gender"`
	ImageURL    string `json:"imageUrl"`
}

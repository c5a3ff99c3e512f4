package dto

type RegisterRequest struct {
	FirstName   string `json:"firstName" binding:"required,max=50"`
	LastName    string `json:"lastName" binding:"max=50"`
	Email       string `json:"emailId" binding:"required,email"`
	PhoneNumber string `json:"phoneNumber" binding:"required,min=5,max=20"`
	Password    string `json:"password" binding:"required,min=8,max=64"`
}

type LoginRequest struct {
	Email    string `json:"emailId" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

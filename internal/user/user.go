package user

import "time"

// User maps to the `users` table. The password hash never leaves the server.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Name      string    `json:"name"`
	College   string    `json:"college"`
	Phone     *string   `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
}

// RegisterInput is the registration payload after JSON decoding.
type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	College  string `json:"college"`
	Phone    string `json:"phone"`
}

package model

import "time"

type Role string

const (
	RoleProgrammer Role = "PROGRAMMER"
	RoleUser       Role = "USER"
	RoleAdmin      Role = "ADMIN"
)

// User запись каталога пользователей (только чтение для ядра бронирования)
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsProgrammer проверяет, может ли пользователь публиковать слоты
func (u *User) IsProgrammer() bool {
	return u.Role == RoleProgrammer
}

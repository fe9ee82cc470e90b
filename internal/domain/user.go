package domain

type AccountType string

const (
	AccountAdmin AccountType = "ADMIN"
	AccountUser  AccountType = "USER"
)

type User struct {
	Username     string      `json:"username"`
	PasswordHash string      `json:"-"`
	AccountType  AccountType `json:"account_type"`
	Email        string      `json:"email"`
}

func (u User) IsAdmin() bool {
	return u.AccountType == AccountAdmin
}

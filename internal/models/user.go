package models

// User представляет пользователя внешнего identity-провайдера.
// Пароль хранится только на стороне провайдера и в приложении не появляется.
type User struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	EmailConfirmed bool   `json:"email_confirmed"`
}

package identityprovider

import "time"

// User запись пользователя у identity-провайдера.
type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	EmailConfirmed bool      `json:"email_confirmed"`
	CreatedAt      time.Time `json:"created_at"`
}

// Session пара токенов, выданная провайдером после обмена кода или refresh-токена.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	User         User   `json:"user"`
}

// Запрос на административное создание пользователя.
type createUserRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	EmailConfirm bool   `json:"email_confirm"`
}

// Запрос на отправку magic-link письма.
type magicLinkRequest struct {
	Email      string `json:"email"`
	RedirectTo string `json:"redirect_to,omitempty"`
}

// Тело обмена одноразового кода на сессию.
type exchangeCodeRequest struct {
	AuthCode string `json:"auth_code"`
}

type refreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type listUsersResponse struct {
	Users []User `json:"users"`
}

// Ответ провайдера с ошибкой: код машинный, сообщение человекочитаемое.
type apiError struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"msg"`
}

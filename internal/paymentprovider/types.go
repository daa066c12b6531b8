package paymentprovider

import "encoding/json"

// Event подписанное событие вебхука платёжного провайдера.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// Типы событий, которые интерпретирует реконсилятор. Остальные
// подтверждаются как no-op.
const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventSubscriptionCreated = "customer.subscription.created"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
)

// CheckoutSession объект события checkout.session.completed.
type CheckoutSession struct {
	ID              string `json:"id"`
	Customer        string `json:"customer"`
	Subscription    string `json:"subscription"`
	CustomerEmail   string `json:"customer_email"`
	CustomerDetails *struct {
		Email string `json:"email"`
	} `json:"customer_details"`
}

// Email возвращает email покупателя из полей события, если он там есть.
func (s *CheckoutSession) Email() string {
	if s.CustomerDetails != nil && s.CustomerDetails.Email != "" {
		return s.CustomerDetails.Email
	}
	return s.CustomerEmail
}

// SubscriptionObject объект событий customer.subscription.*.
// Поле customer может быть строкой либо развёрнутым объектом,
// поэтому разбирается отдельно через CustomerID.
type SubscriptionObject struct {
	ID                 string          `json:"id"`
	Customer           json.RawMessage `json:"customer"`
	Status             string          `json:"status"`
	CurrentPeriodStart int64           `json:"current_period_start"`
	CurrentPeriodEnd   int64           `json:"current_period_end"`
	CancelAtPeriodEnd  bool            `json:"cancel_at_period_end"`
}

// CustomerID возвращает строковый идентификатор покупателя. Второй результат
// false означает, что ссылка не строковая (развёрнутый объект) и событие
// следует пропустить.
func (s *SubscriptionObject) CustomerID() (string, bool) {
	var id string
	if err := json.Unmarshal(s.Customer, &id); err != nil {
		return "", false
	}
	return id, id != ""
}

// Customer запись покупателя у провайдера.
type Customer struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Deleted bool   `json:"deleted"`
}

// Subscription детальная запись подписки у провайдера.
type Subscription struct {
	ID                 string `json:"id"`
	Customer           string `json:"customer"`
	Status             string `json:"status"`
	CurrentPeriodStart int64  `json:"current_period_start"`
	CurrentPeriodEnd   int64  `json:"current_period_end"`
	CancelAtPeriodEnd  bool   `json:"cancel_at_period_end"`
}

// CheckoutSessionParams параметры создания checkout-сессии в режиме подписки.
type CheckoutSessionParams struct {
	PriceID             string
	SuccessURL          string
	CancelURL           string
	AllowPromotionCodes bool
}

// CheckoutSessionResponse ответ провайдера с URL оплаты.
type CheckoutSessionResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

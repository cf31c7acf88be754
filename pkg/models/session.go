package models

import "time"

// Session is the partner credential bound to one Telegram user between
// sign-in and sign-out.
type Session struct {
	TelegramID  int64     `json:"telegram_id"`
	PartnerID   int64     `json:"partner_id"`
	PhoneNumber string    `json:"phone_number"`
	AccessToken string    `json:"access_token"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (s *Session) Authorized() bool {
	return s != nil && s.AccessToken != ""
}

type Credentials struct {
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
	Role        string `json:"role"`
}

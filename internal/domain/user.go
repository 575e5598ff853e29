package domain

import (
	"time"
)

type User struct {
	UserID       string    `dynamodbav:"user_id"  json:"_id"`
	FullName     string    `dynamodbav:"full_name" json:"fullName"`
	Email        string    `dynamodbav:"email"    json:"email"`
	Mobile       string    `dynamodbav:"mobile"   json:"mobile,omitempty"`
	Role         string    `dynamodbav:"role"     json:"role"`
	PasswordHash string    `dynamodbav:"password_hash" json:"-"`
	Banned       bool      `dynamodbav:"banned"    json:"banned"`
	BanReason    string    `dynamodbav:"ban_reason" json:"banReason,omitempty"`
	CreatedAt    time.Time `dynamodbav:"created_at" json:"createdAt"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
	Admin *User  `json:"admin"`
}

type BanRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type BroadcastRequest struct {
	Subject string `json:"subject" binding:"required"`
	Content string `json:"content" binding:"required"`
}

type BroadcastResponse struct {
	Recipients int `json:"recipients"`
	Failed     int `json:"failed"`
}

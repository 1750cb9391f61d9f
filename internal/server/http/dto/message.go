package dto

import (
	"time"

	"github.com/google/uuid"
)

type SendMessageRequest struct {
	ReceiverID uuid.UUID `json:"receiverId"`
	Kind       string    `json:"kind"`
	Content    string    `json:"content"`
}

type MessageResponse struct {
	ID         uuid.UUID `json:"id"`
	SenderID   uuid.UUID `json:"senderId"`
	ReceiverID uuid.UUID `json:"receiverId"`
	Kind       string    `json:"kind"`
	Content    string    `json:"content"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
}

// MessagePageResponse is one page of a message search.
type MessagePageResponse struct {
	Items    []MessageResponse `json:"items"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
}

type ConversationResponse struct {
	ContactID   uuid.UUID       `json:"contactId"`
	LastMessage MessageResponse `json:"lastMessage"`
	UnreadCount int             `json:"unreadCount"`
}

type UnreadCountResponse struct {
	Count int `json:"count"`
}

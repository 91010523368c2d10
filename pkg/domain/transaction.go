package domain

import (
	"encoding/json"
)

// Transaction types understood by the server.
const (
	Income  = "Income"
	Expense = "Expense"
)

type Transaction struct {
	ID ID `json:"id"`

	Type     string  `json:"type"`
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
	Date     string  `json:"date"` // ISO date, eg. 2024-03-02
	UserID   int64   `json:"user_id"`
}

func (t *Transaction) JSON() ([]byte, error) {
	return json.Marshal(t)
}

// Draft is a transaction the server has not assigned an id to yet.
type Draft struct {
	Type     string  `json:"type"`
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
	Date     string  `json:"date"`
	UserID   int64   `json:"user_id"`
}

// Confirmed builds the transaction a draft becomes once the server replies
// with an id.
func (d Draft) Confirmed(id ID) *Transaction {
	return &Transaction{
		ID:       id,
		Type:     d.Type,
		Amount:   d.Amount,
		Category: d.Category,
		Date:     d.Date,
		UserID:   d.UserID,
	}
}

type User struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Stats is the server-computed summary used to highlight rows. Every field
// may be absent when the server has no transactions to pick from.
type Stats struct {
	Highest          *Transaction `json:"highest"`
	Lowest           *Transaction `json:"lowest"`
	Average          *Transaction `json:"average"`
	ClosestToAverage *Transaction `json:"closestToAverage"`
}

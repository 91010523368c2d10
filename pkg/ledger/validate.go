package ledger

import (
	"strconv"
	"time"

	"github.com/sablewing/pocketbook/pkg/domain"
)

// Input is raw form input, everything still a string. Validation happens
// here, before anything touches the network or the queue.
type Input struct {
	Type     string
	Amount   string
	Category string
	Date     string
	User     string
}

// FieldErrors maps field name to what is wrong with it.
type FieldErrors map[string]string

// Validate checks every required field and returns either a clean draft or
// the per-field errors to surface inline.
func (in Input) Validate() (domain.Draft, FieldErrors) {
	errs := FieldErrors{}

	if in.Type == "" {
		errs["type"] = "Type is required"
	} else if in.Type != domain.Income && in.Type != domain.Expense {
		errs["type"] = "Type must be Income or Expense"
	}

	var amount float64
	if in.Amount == "" {
		errs["amount"] = "Amount is required"
	} else {
		var err error
		amount, err = strconv.ParseFloat(in.Amount, 64)
		if err != nil {
			errs["amount"] = "Amount must be a number"
		} else if amount <= 0 {
			errs["amount"] = "Amount must be greater than zero"
		}
	}

	if in.Category == "" {
		errs["category"] = "Category is required"
	}

	if in.Date == "" {
		errs["date"] = "Date is required"
	} else if _, err := time.Parse("2006-01-02", in.Date); err != nil {
		errs["date"] = "Date must look like 2006-01-02"
	}

	var userID int64
	if in.User == "" {
		errs["user_id"] = "User is required"
	} else {
		var err error
		userID, err = strconv.ParseInt(in.User, 10, 64)
		if err != nil || userID < 1 {
			errs["user_id"] = "User must be a valid id"
		}
	}

	if len(errs) > 0 {
		return domain.Draft{}, errs
	}

	return domain.Draft{
		Type:     in.Type,
		Amount:   amount,
		Category: in.Category,
		Date:     in.Date,
		UserID:   userID,
	}, nil
}

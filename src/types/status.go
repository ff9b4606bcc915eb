package types

import "errors"

type TransactionStatus string

const (
	TRANSACTION_PENDING_REGISTRATION TransactionStatus = "pending_registration"
	TRANSACTION_PENDING_PAYMENT      TransactionStatus = "pending_payment"
	TRANSACTION_PAID                 TransactionStatus = "paid"
	TRANSACTION_PENDING              TransactionStatus = "pending"
	TRANSACTION_FAILED               TransactionStatus = "failed"
)

var ErrIllegalTransition = errors.New("illegal transaction status transition")

// Every edge a team's transaction status may take. Anything missing is rejected.
var transactionTransitions = map[TransactionStatus][]TransactionStatus{
	TRANSACTION_PENDING_REGISTRATION: {TRANSACTION_PENDING_PAYMENT},
	TRANSACTION_PENDING_PAYMENT:      {TRANSACTION_PENDING_PAYMENT, TRANSACTION_PAID, TRANSACTION_PENDING, TRANSACTION_FAILED},
	TRANSACTION_PENDING:              {TRANSACTION_PENDING_PAYMENT, TRANSACTION_PAID, TRANSACTION_PENDING, TRANSACTION_FAILED},
	TRANSACTION_FAILED:               {TRANSACTION_PENDING_PAYMENT, TRANSACTION_PAID, TRANSACTION_PENDING, TRANSACTION_FAILED},
	TRANSACTION_PAID:                 {},
}

func CanTransition(from, to TransactionStatus) bool {
	for _, s := range transactionTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func (s TransactionStatus) IsTerminal() bool {
	return s == TRANSACTION_PAID
}

func (s TransactionStatus) Valid() bool {
	_, ok := transactionTransitions[s]
	return ok
}

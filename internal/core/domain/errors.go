package domain

import "errors"

var (
	// ErrPortNotFound ...
	ErrPortNotFound = errors.New("port not found")
	// ErrPortInvalidType is thrown when creating a port with an unknown type
	ErrPortInvalidType = errors.New("port type must be one of permanent, recurring, one-time, burner")
	// ErrPortNullName ...
	ErrPortNullName = errors.New("port name must not be null")
	// ErrPortStealthKeysAlreadySet is thrown when attaching stealth keys to a port that has them
	ErrPortStealthKeysAlreadySet = errors.New("port stealth keys are already set")
	// ErrPortArchived is thrown when mutating an archived port
	ErrPortArchived = errors.New("port is archived")
	// ErrPaymentNotFound ...
	ErrPaymentNotFound = errors.New("payment not found")
	// ErrPaymentAlreadyExists is thrown when inserting a payment for an already tracked (txHash, chainId)
	ErrPaymentAlreadyExists = errors.New("a payment with the same tx hash and chain id already exists")
	// ErrPaymentInvalidSource ...
	ErrPaymentInvalidSource = errors.New("payment source must be one of wallet, port, pool")
	// ErrPaymentInvalidType ...
	ErrPaymentInvalidType = errors.New("payment type must be one of regular, stealth_pay, private_send")
	// ErrPaymentNullTxHash ...
	ErrPaymentNullTxHash = errors.New("payment tx hash must not be null")
	// ErrPaymentInvalidAmount ...
	ErrPaymentInvalidAmount = errors.New("payment amount must be a positive decimal string")
)

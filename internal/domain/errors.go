package domain

import "errors"

var (
	ErrRecordNotFound       = errors.New("record not found")
	ErrEditConflict         = errors.New("edit conflict")
	ErrPaymentAlreadyExists = errors.New("a payment already exists with this payment id")
	ErrPaymentStateConflict = errors.New("payment is not in a state that allows this transition")
	ErrNoSlotsAvailable     = errors.New("no promotion slots available for this plan")
	ErrPriceUnavailable     = errors.New("current PI-USD price cannot be fetched")
	ErrArticleStateConflict = errors.New("article is not in a state that allows this transition")
	ErrInvalidAccessToken   = errors.New("access token was rejected by the Pi platform")
)

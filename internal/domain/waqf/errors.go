package waqf

import "errors"

var (
	ErrNotFound          = errors.New("waqf not found")
	ErrNotRevolving      = errors.New("waqf is not a revolving waqf")
	ErrTrancheNotFound   = errors.New("tranche not found")
	ErrAlreadyReturned   = errors.New("tranche has already been returned")
	ErrAlreadyRolledOver = errors.New("tranche has already been rolled over")
	ErrAlreadyConverted  = errors.New("tranche has already been converted")
	ErrNotMatured        = errors.New("tranche has not matured yet")
	ErrInsufficientFunds = errors.New("insufficient waqf balance")
	ErrEarlyWithdrawal   = errors.New("early withdrawals are not allowed for this waqf")
	ErrImmutableField    = errors.New("immutable field cannot be changed")
	ErrRestrictedField   = errors.New("field cannot be changed by the waqf creator")
	ErrArchivedWaqf      = errors.New("cannot modify archived waqf")
	ErrCompletedWaqf     = errors.New("cannot modify completed waqf")
)

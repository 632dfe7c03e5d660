package subscription

import "errors"

var (
	ErrPackageNotFound      = errors.New("premium package not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrAlreadySubscribed    = errors.New("an active subscription already exists")
	ErrWrongOwnerType       = errors.New("package is not available for this account type")
	ErrNotOwner             = errors.New("subscription belongs to another user")
	ErrNotCancellable       = errors.New("subscription status does not allow cancellation")
)

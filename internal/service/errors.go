package service

import "errors"

// Common service errors
var (
	// ErrPermissionDenied is returned when a user doesn't have permission for an action
	ErrPermissionDenied = errors.New("permission denied")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidCredentials is returned when login fails
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrUserInactive is returned when a deactivated user tries to log in
	ErrUserInactive = errors.New("user account is inactive")

	// ErrUserNotFound is returned when a user is not found
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateEmail is returned when a user email already exists
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrBootstrapUserProtected is returned when deleting the bootstrap director account
	ErrBootstrapUserProtected = errors.New("the bootstrap account cannot be deleted")

	// ErrProviderNotFound is returned when a provider is not found
	ErrProviderNotFound = errors.New("provider not found")

	// ErrClientNotFound is returned when a client is not found
	ErrClientNotFound = errors.New("client not found")

	// ErrTaxRateNotFound is returned when a tax rate is not found
	ErrTaxRateNotFound = errors.New("tax rate not found")

	// ErrMaterialNotFound is returned when a material is not found
	ErrMaterialNotFound = errors.New("material not found")

	// ErrMasterNotFound is returned when a product master is not found
	ErrMasterNotFound = errors.New("product master not found")

	// ErrVersionNotFound is returned when a product version is not found
	ErrVersionNotFound = errors.New("product version not found")

	// ErrOrderNotFound is returned when a sales order is not found
	ErrOrderNotFound = errors.New("sales order not found")

	// ErrOrderNotEditable is returned when editing an order in a non-editable status
	ErrOrderNotEditable = errors.New("order status does not allow edits")

	// ErrOrderNotDeletable is returned when deleting an active or closed order
	ErrOrderNotDeletable = errors.New("order status does not allow deletion")

	// ErrInvalidTransition is returned on a disallowed order status transition
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrReceptionNotFound is returned when a reception is not found
	ErrReceptionNotFound = errors.New("reception not found")

	// ErrReceptionCancelled is returned when mutating a cancelled reception
	ErrReceptionCancelled = errors.New("reception is cancelled")

	// ErrDuplicateFolio is returned when a reception folio is already in use
	ErrDuplicateFolio = errors.New("folio already registered")

	// ErrInvoiceNotFound is returned when a purchase invoice is not found
	ErrInvoiceNotFound = errors.New("purchase invoice not found")

	// ErrInvoicePaid is returned when cancelling a reception whose invoice is paid
	ErrInvoicePaid = errors.New("invoice is already paid")

	// ErrPaymentNotFound is returned when a supplier payment is not found
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrPaymentNotPending is returned when mutating a payment past the PENDING state
	ErrPaymentNotPending = errors.New("payment is no longer pending")

	// ErrPaymentNotApproved is returned when executing or revoking a non-approved payment
	ErrPaymentNotApproved = errors.New("payment is not approved")

	// ErrOverCommitted is returned when a payment request exceeds the invoice's remaining debt
	ErrOverCommitted = errors.New("requested amount exceeds remaining invoice debt")

	// ErrAccountNotFound is returned when a bank account is not found
	ErrAccountNotFound = errors.New("bank account not found")

	// ErrInsufficientFunds is returned when an account balance cannot cover a debit
	ErrInsufficientFunds = errors.New("insufficient account balance")

	// ErrSameAccountTransfer is returned when transferring an account to itself
	ErrSameAccountTransfer = errors.New("source and destination accounts must differ")
)

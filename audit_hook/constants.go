package audithook

// Action constants for audit events.
const (
	// Customer actions
	ActionCustomerCreated = "customer.created"
	ActionCustomerUpdated = "customer.updated"
	ActionCustomerDeleted = "customer.deleted"

	// Product actions
	ActionProductCreated = "product.created"
	ActionProductUpdated = "product.updated"
	ActionProductDeleted = "product.deleted"

	// Invoice actions
	ActionInvoiceOpened           = "invoice.opened"
	ActionInvoiceCustomerAssigned = "invoice.customer_assigned"
	ActionInvoiceLineAdded        = "invoice.line_added"
	ActionInvoiceCommitted        = "invoice.committed"
	ActionInvoiceCommitFailed     = "invoice.commit_failed"
)

// Resource constants for audit events.
const (
	ResourceCustomer  = "customer"
	ResourceProduct   = "product"
	ResourceInvoice   = "invoice"
	ResourceParameter = "parameter"
)

// Category constants for audit events.
const (
	CategoryReference = "reference"
	CategoryBilling   = "billing"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomePartial = "partial"
)

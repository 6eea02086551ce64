// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Authentication
	KeyAuthRequired     = "auth.required"
	KeyAuthInvalidToken = "auth.invalid_token"
	KeyAuthTokenExpired = "auth.token_expired"

	// Products
	KeyProductCreated      = "product.created"
	KeyProductUpdated      = "product.updated"
	KeyProductNotFound     = "product.not_found"
	KeyProductInvalidPrice = "product.invalid_price"

	// Cart
	KeyCartLineNotFound   = "cart.not_found"
	KeyCartInvalidQty     = "cart.invalid_quantity"
	KeyCartItemAdded      = "cart.item_added"
	KeyCartItemRemoved    = "cart.item_removed"
	KeyCartStockWarning   = "cart.stock_warning"
	KeyCartEmpty          = "cart.empty"
	KeyCheckoutOutOfStock = "checkout.insufficient_stock"

	// Checkout
	KeyCheckoutAddressRequired = "checkout.address_required"
	KeyCheckoutInvalidShipping = "checkout.invalid_shipping_option"
	KeyCheckoutInvalidPayment  = "checkout.invalid_payment_method"
	KeyCheckoutInvalidState    = "checkout.invalid_state"
	KeyCheckoutOrderPlaced     = "checkout.order_placed"
	KeyCheckoutFailed          = "checkout.failed"

	// Orders
	KeyOrderNotFound          = "order.not_found"
	KeyOrderInvalidTransition = "order.invalid_transition"

	// Addresses
	KeyAddressNotFound = "address.not_found"

	// Dealers
	KeyDealerNotFound    = "dealer.not_found"
	KeyDealerInvalidTier = "dealer.invalid_tier"

	// Payments
	KeyPaymentFailed        = "payment.failed"
	KeyPaymentNotApplicable = "payment.not_applicable"

	// Profiles
	KeyProfileNotFound    = "profile.not_found"
	KeyProfileUpdated     = "profile.updated"
	KeyProfileInvalidRole = "profile.invalid_role"

	// Emails
	KeyEmailOrderPlacedSubject = "email.order_placed_subject"
	KeyEmailOrderStatusSubject = "email.order_status_subject"

	// Admin
	KeyAdminAccessDenied = "admin.access_denied"

	// Validation
	KeyValidationInvalid = "validation.invalid"

	// File Upload
	KeyFileUploadFailed = "file.upload_failed"
	KeyFileInvalidType  = "file.invalid_type"

	// Generic
	KeyRateLimited   = "error.rate_limited"
	KeyInternalError = "error.internal"
)

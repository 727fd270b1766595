package adyen

import (
	"fmt"
	"strings"
)

// Surface identifies which Adyen API family a route belongs to. Checkout and
// the legacy PAL recurring-management API live on different hosts.
type Surface string

const (
	SurfaceCheckout  Surface = "checkout"
	SurfaceRecurring Surface = "recurring"
)

// Logical operation names. The set is closed and known at build time; asking
// for anything else is a programming error, not a runtime business error.
const (
	OpCapturePayment       = "capture_payment"
	OpRefundPayment        = "refund_payment"
	OpChargeOnetime        = "charge_onetime"
	OpChargeRecurring      = "charge_recurring"
	OpSubmitPaymentDetails = "submit_payment_details"
	OpCancelSubscription   = "cancel_recurring_subscription"
	OpValidateCredentials  = "validate_credentials"
)

type routeDescriptor struct {
	name    string
	path    string
	surface Surface
}

// routes is the static route table. Paths may contain a ":payment_id"
// placeholder which is substituted by literal replacement.
var routes = []routeDescriptor{
	{name: OpCapturePayment, path: "/v67/payments/:payment_id/captures", surface: SurfaceCheckout},
	{name: OpRefundPayment, path: "/v67/payments/:payment_id/refunds", surface: SurfaceCheckout},
	{name: OpChargeOnetime, path: "/v67/payments", surface: SurfaceCheckout},
	{name: OpChargeRecurring, path: "/v67/payments", surface: SurfaceCheckout},
	{name: OpSubmitPaymentDetails, path: "/v67/payments/details", surface: SurfaceCheckout},
	{name: OpCancelSubscription, path: "/Recurring/v49/disable", surface: SurfaceRecurring},
	{name: OpValidateCredentials, path: "/v67/paymentMethods", surface: SurfaceCheckout},
}

// baseURLs maps environment and surface to the gateway host. Static,
// shipped with the adapter, read-only for the process lifetime.
var baseURLs = map[Environment]map[Surface]string{
	EnvSandbox: {
		SurfaceCheckout:  "https://checkout-test.adyen.com",
		SurfaceRecurring: "https://pal-test.adyen.com/pal/servlet",
	},
	EnvLive: {
		SurfaceCheckout:  "https://checkout-live.adyen.com",
		SurfaceRecurring: "https://pal-live.adyen.com/pal/servlet",
	},
}

// ConfigError marks a configuration or programming defect: an unknown
// operation name or a path placeholder left unresolved. It should fail fast
// and loudly, never be swallowed as a business outcome.
type ConfigError struct {
	Op     string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("adyen: %s: %s", e.Op, e.Reason)
}

func findRoute(name string) (routeDescriptor, error) {
	for _, r := range routes {
		if r.name == name {
			return r, nil
		}
	}
	return routeDescriptor{}, &ConfigError{Op: name, Reason: "unknown operation"}
}

// resolvePath substitutes named placeholders and refuses to return a path
// that still contains one.
func resolvePath(route routeDescriptor, params map[string]string) (string, error) {
	path := route.path
	for key, value := range params {
		path = strings.ReplaceAll(path, ":"+key, value)
	}
	if strings.Contains(path, "/:") {
		return "", &ConfigError{Op: route.name, Reason: "unresolved path parameter in " + path}
	}
	return path, nil
}

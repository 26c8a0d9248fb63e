package cart

const (
	PromptClear    = "¿Vaciar carrito?"
	PromptCheckout = "Checkout simulado: ¿confirmas la compra?"
)

// Confirm asks the user to approve a destructive action. Returning false
// aborts the action with no state change.
type Confirm func(prompt string) bool

// Yes approves every prompt. Used by non-interactive callers that already
// collected consent, such as a form field or a --yes flag.
func Yes(string) bool { return true }

// No declines every prompt.
func No(string) bool { return false }

// ConfirmIf turns a collected answer into a Confirm.
func ConfirmIf(ok bool) Confirm {
	if ok {
		return Yes
	}
	return No
}

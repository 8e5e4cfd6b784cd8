package ledger

import "coursedesk/internal/domain"

// decide applies the reconciliation table to an already rounded open balance.
// A fully paid booking is always completed, even when it was cancelled or in
// dunning. A partial payment only moves bookings that are not in dunning or a
// terminal state.
func decide(amount, open float64, current domain.BookingStatus) domain.BookingStatus {
	if open <= 0 {
		return domain.BookingCompleted
	}
	if open < amount && !current.HoldsOnPartialPayment() {
		return domain.BookingDepositReceived
	}
	return current
}

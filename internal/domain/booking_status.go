package domain

import "errors"

type BookingStatus string

const (
	BookingOpen            BookingStatus = "offen"
	BookingDepositReceived BookingStatus = "Anzahlung erhalten"
	BookingCompleted       BookingStatus = "abgeschlossen"
	BookingPaymentReminder BookingStatus = "Zahlungserinnerung"
	BookingFirstDunning    BookingStatus = "1. Mahnung"
	BookingSecondDunning   BookingStatus = "2. Mahnung"
	BookingCollection      BookingStatus = "Inkasso"
	BookingCancelled       BookingStatus = "Storno"
	BookingArchived        BookingStatus = "Archiv"
)

var ErrUnknownBookingStatus = errors.New("unknown booking status")

// bookingStatuses keeps the order the admin filters show.
var bookingStatuses = []BookingStatus{
	BookingOpen,
	BookingDepositReceived,
	BookingCompleted,
	BookingPaymentReminder,
	BookingFirstDunning,
	BookingSecondDunning,
	BookingCollection,
	BookingCancelled,
	BookingArchived,
}

func BookingStatuses() []BookingStatus {
	out := make([]BookingStatus, len(bookingStatuses))
	copy(out, bookingStatuses)
	return out
}

func ParseBookingStatus(s string) (BookingStatus, error) {
	for _, st := range bookingStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", ErrUnknownBookingStatus
}

func (s BookingStatus) Valid() bool {
	_, err := ParseBookingStatus(string(s))
	return err == nil
}

// HoldsOnPartialPayment reports whether a partial payment leaves the status
// alone: the dunning track and the cancel/archive states.
func (s BookingStatus) HoldsOnPartialPayment() bool {
	switch s {
	case BookingPaymentReminder, BookingFirstDunning, BookingSecondDunning,
		BookingCollection, BookingCancelled, BookingArchived:
		return true
	}
	return false
}

var manualTransitions = map[BookingStatus][]BookingStatus{
	BookingOpen:            {BookingDepositReceived, BookingCompleted, BookingPaymentReminder, BookingCancelled, BookingArchived},
	BookingDepositReceived: {BookingOpen, BookingCompleted, BookingPaymentReminder, BookingCancelled, BookingArchived},
	BookingCompleted:       {BookingArchived, BookingCancelled},
	BookingPaymentReminder: {BookingFirstDunning, BookingDepositReceived, BookingCompleted, BookingCancelled, BookingArchived},
	BookingFirstDunning:    {BookingSecondDunning, BookingCompleted, BookingCancelled, BookingArchived},
	BookingSecondDunning:   {BookingCollection, BookingCompleted, BookingCancelled, BookingArchived},
	BookingCollection:      {BookingCompleted, BookingCancelled, BookingArchived},
	BookingCancelled:       {BookingOpen, BookingArchived},
	BookingArchived:        {BookingOpen},
}

// CanTransition checks a manual (admin) status change. Ledger-driven changes
// do not go through this table.
func CanTransition(from, to BookingStatus) bool {
	if !to.Valid() {
		return false
	}
	if from == to {
		return true
	}
	for _, next := range manualTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

package domain

// BookingPredicate decides whether a booking belongs in a list view
type BookingPredicate func(b *Booking) bool

// Apply returns the bookings matching p, preserving order
func Apply(bookings []*Booking, p BookingPredicate) []*Booking {
	result := make([]*Booking, 0, len(bookings))
	for _, b := range bookings {
		if p == nil || p(b) {
			result = append(result, b)
		}
	}
	return result
}

func And(preds ...BookingPredicate) BookingPredicate {
	return func(b *Booking) bool {
		for _, p := range preds {
			if p != nil && !p(b) {
				return false
			}
		}
		return true
	}
}

func Not(p BookingPredicate) BookingPredicate {
	return func(b *Booking) bool {
		return !p(b)
	}
}

// ByStatus matches any of the given statuses
func ByStatus(statuses ...BookingStatus) BookingPredicate {
	return func(b *Booking) bool {
		for _, s := range statuses {
			if b.Status == s {
				return true
			}
		}
		return false
	}
}

// ByID matches the given bookings
func ByID(ids ...int64) BookingPredicate {
	return func(b *Booking) bool {
		for _, id := range ids {
			if b.ID == id {
				return true
			}
		}
		return false
	}
}

// ByRole matches bookings where userID plays the given role
func ByRole(userID int64, role Role) BookingPredicate {
	return func(b *Booking) bool {
		switch role {
		case RoleRequester:
			return b.RequesterID == userID
		case RoleProvider:
			return b.ProviderID == userID
		}
		return false
	}
}

// NeedsPaymentOnly matches bookings awaiting the requester's payment
func NeedsPaymentOnly() BookingPredicate {
	return func(b *Booking) bool {
		return b.NeedsPayment()
	}
}

package domain

// ItemType distinguishes lost-item postings from found-item postings.
type ItemType string

const (
	ItemTypeLost  ItemType = "LOST"
	ItemTypeFound ItemType = "FOUND"
)

func (t ItemType) String() string { return string(t) }

func (t ItemType) IsValid() bool {
	switch t {
	case ItemTypeLost, ItemTypeFound:
		return true
	}
	return false
}

// Opposite returns the counterpart posting type: lost items are matched
// against found postings and vice versa.
func (t ItemType) Opposite() ItemType {
	if t == ItemTypeLost {
		return ItemTypeFound
	}
	return ItemTypeLost
}

// ItemStatus is the lifecycle state of a posting.
type ItemStatus string

const (
	ItemStatusPending   ItemStatus = "PENDING"
	ItemStatusRecovered ItemStatus = "RECOVERED"
	ItemStatusClosed    ItemStatus = "CLOSED"
)

func (s ItemStatus) String() string { return string(s) }

func (s ItemStatus) IsValid() bool {
	switch s {
	case ItemStatusPending, ItemStatusRecovered, ItemStatusClosed:
		return true
	}
	return false
}

// MatchStatus is the state of a match record.
type MatchStatus string

const (
	MatchStatusPendingConfirmation MatchStatus = "PENDING_CONFIRMATION"
	MatchStatusConfirmed           MatchStatus = "CONFIRMED"
	MatchStatusRejected            MatchStatus = "REJECTED"
)

func (s MatchStatus) String() string { return string(s) }

func (s MatchStatus) IsValid() bool {
	switch s {
	case MatchStatusPendingConfirmation, MatchStatusConfirmed, MatchStatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether the record can no longer change state.
func (s MatchStatus) IsTerminal() bool {
	return s == MatchStatusConfirmed || s == MatchStatusRejected
}

package booking

// Transition returns the status b moves to when actorID decides on it.
// Only the item owner may decide, and an approved booking is final.
// A rejected booking can be decided again.
func Transition(b *Booking, actorID, ownerID string, approved bool) (Status, error) {
	if actorID != ownerID {
		return "", ErrNotItemOwner
	}
	if b.Status == StatusApproved {
		return "", ErrAlreadyApproved
	}
	if approved {
		return StatusApproved, nil
	}
	return StatusRejected, nil
}

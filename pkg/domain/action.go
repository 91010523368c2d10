package domain

// Kinds of queued action.
const (
	ActionAdd    = "ADD"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
)

// QueuedAction is one pending mutation recorded while the backend was
// unreachable. Exactly one payload field is set, matching Kind.
type QueuedAction struct {
	Kind string `json:"type"`

	Add    *Draft       `json:"add,omitempty"`
	Update *Transaction `json:"update,omitempty"`
	Delete *ID          `json:"delete,omitempty"`
}

func AddAction(d Draft) QueuedAction {
	return QueuedAction{Kind: ActionAdd, Add: &d}
}

func UpdateAction(t Transaction) QueuedAction {
	return QueuedAction{Kind: ActionUpdate, Update: &t}
}

func DeleteAction(id ID) QueuedAction {
	return QueuedAction{Kind: ActionDelete, Delete: &id}
}

// WellFormed reports whether the action carries the payload its kind
// requires. It says nothing about id locality, see TargetsServer.
func (a QueuedAction) WellFormed() bool {
	switch a.Kind {
	case ActionAdd:
		return a.Add != nil
	case ActionUpdate:
		return a.Update != nil
	case ActionDelete:
		return a.Delete != nil
	}
	return false
}

// TargetsServer reports whether the action is safe to replay against the
// server: updates and deletes must reference a server-confirmed id, never a
// client-local placeholder.
func (a QueuedAction) TargetsServer() bool {
	if !a.WellFormed() {
		return false
	}
	switch a.Kind {
	case ActionUpdate:
		return a.Update.ID.IsRemote()
	case ActionDelete:
		return a.Delete.IsRemote()
	}
	return true
}

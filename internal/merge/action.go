package merge

// ActionKind discriminates the built-in merge actions.
type ActionKind string

const (
	// ActionReplace unconditionally overwrites and records a
	// "replaced" audit edge pointing at the discarded value.
	ActionReplace ActionKind = "replace"

	// ActionReject keeps the existing value when the new one differs,
	// records a "rejected" audit edge, and reports a conflict.
	ActionReject ActionKind = "reject"

	// ActionConcat flattens the new value onto the end of the
	// existing array, listifying a bare scalar first.
	ActionConcat ActionKind = "concat"

	// ActionCollect appends each new item only when no existing item
	// matches it.
	ActionCollect ActionKind = "collect"

	// ActionMergeSet is Collect, except a matched existing item is
	// recursively merged with the new item field by field.
	ActionMergeSet ActionKind = "merge-set"
)

// Action is a tagged merge behavior. Collect and MergeSet carry the
// match function that decides item identity.
type Action struct {
	Kind  ActionKind
	Match MatchFunc
}

// Replace builds the overwrite action.
func Replace() Action { return Action{Kind: ActionReplace} }

// Reject builds the keep-existing action.
func Reject() Action { return Action{Kind: ActionReject} }

// Concat builds the array-flattening action.
func Concat() Action { return Action{Kind: ActionConcat} }

// Collect builds the append-if-unmatched action.
func Collect(match MatchFunc) Action { return Action{Kind: ActionCollect, Match: match} }

// MergeSet builds the append-or-merge action.
func MergeSet(match MatchFunc) Action { return Action{Kind: ActionMergeSet, Match: match} }

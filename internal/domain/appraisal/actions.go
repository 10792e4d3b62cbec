package appraisal

import "strings"

// actionWildcard matches any sub-state under a known status.
const actionWildcard = "*"

// previewOnly is the safe minimum for anything the table does not know.
// An unrecognized state must never expose a destructive or irreversible
// action.
var previewOnly = []ActionKey{KeyPreview}

var actionTable = map[string]map[string][]ActionKey{
	StatusDraft: {
		ActionPending:    {KeyEdit, KeySelfRating, KeyDelete},
		ActionInProgress: {KeyEdit, KeySelfRating},
		"in_progress":    {KeyEdit, KeySelfRating},
		ActionCompleted:  {KeyEdit, KeySelfRating, KeySubmit},
		actionWildcard:   {KeyEdit, KeySelfRating, KeyDelete},
	},
	StatusEmployeeReview: {
		ActionPending:   {KeyOverallAssessment, KeyPreview, KeyApprove},
		ActionDisagree:  {KeyOverallAssessment, KeyPreview},
		ActionCompleted: {KeyOverallAssessment, KeyPreview, KeyApprove},
		actionWildcard:  {KeyOverallAssessment, KeyPreview, KeyApprove},
	},
	StatusSupervisor: {
		actionWildcard: {KeyEdit, KeyPreview, KeyOverallAssessment},
	},
	StatusHOD: {
		actionWildcard: {KeyEdit, KeyPreview, KeyOverallAssessment},
	},
	StatusBranchSupervisor: {
		actionWildcard: {KeyEdit, KeyPreview, KeyOverallAssessment},
	},
	StatusPeerApproval: {
		actionWildcard: {KeyEdit, KeyPreview, KeyOverallAssessment},
	},
	StatusBranchFinalAssessment: {
		actionWildcard: {KeyEdit, KeyPreview, KeyOverallAssessment},
	},
}

// statusAliases folds the pending/reviewing spellings the workflow produces
// into their canonical table rows.
var statusAliases = map[string]string{
	StatusPendingSupervisor:  StatusSupervisor,
	StatusSupervisorReviewed: StatusSupervisorCompleted,
	StatusEmployeeReviewing:  StatusEmployeeReview,
	StatusPendingHOD:         StatusHOD,
	StatusPendingFinal:       StatusBranchFinalAssessment,
}

// CanonicalStatus lower-cases, trims and resolves alias spellings of a
// status value.
func CanonicalStatus(status string) string {
	normalized := strings.ToLower(strings.TrimSpace(status))
	if canonical, ok := statusAliases[normalized]; ok {
		return canonical
	}
	return normalized
}

func normalizeAction(action string) string {
	normalized := strings.ToLower(strings.TrimSpace(action))
	if normalized == "" {
		return ActionPending
	}
	return normalized
}

// AllowedActions returns the ordered action keys enabled for an appraisal
// in the given status and sub-state, as seen by the given actor role. The
// lookup is keyed by status first, then action; unmapped actions under a
// known status use that status's wildcard row, and unknown statuses get
// preview only. Actors who do not own the current stage are limited to
// preview as well, except HR and system administrators who keep the full
// stage set.
func AllowedActions(status, action, role string) []ActionKey {
	canonical := CanonicalStatus(status)

	rows, ok := actionTable[canonical]
	if !ok {
		return clone(previewOnly)
	}

	if !roleMayAct(canonical, role) {
		return clone(previewOnly)
	}

	keys, ok := rows[normalizeAction(action)]
	if !ok {
		keys = rows[actionWildcard]
	}
	if len(keys) == 0 {
		return clone(previewOnly)
	}
	return clone(keys)
}

func roleMayAct(canonicalStatus, role string) bool {
	normalized := strings.ToLower(strings.TrimSpace(role))
	switch normalized {
	case "hr", "system_admin":
		return true
	}
	owner := StageOwner(canonicalStatus)
	if owner == "" {
		return false
	}
	return normalized == owner
}

func clone(keys []ActionKey) []ActionKey {
	out := make([]ActionKey, len(keys))
	copy(out, keys)
	return out
}

// Contains reports whether key is in the allowed set.
func Contains(keys []ActionKey, key ActionKey) bool {
	for _, candidate := range keys {
		if candidate == key {
			return true
		}
	}
	return false
}

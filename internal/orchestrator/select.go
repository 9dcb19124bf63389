package orchestrator

import "github.com/saugatsn/AutoApplyIPO/internal/model"

// SelectAccounts applies the transient tag filter: accounts whose tag matches
// one of the active tags participate; an empty filter or the tag "all"
// selects every account. The filter is never persisted.
func SelectAccounts(accounts []model.Account, tags []string) []*model.Account {
	all := len(tags) == 0
	for _, t := range tags {
		if t == "all" {
			all = true
		}
	}

	selected := make([]*model.Account, 0, len(accounts))
	for i := range accounts {
		if all || matchesTag(accounts[i].Tag, tags) {
			selected = append(selected, &accounts[i])
		}
	}
	return selected
}

func matchesTag(tag string, tags []string) bool {
	for _, t := range tags {
		if tag == t {
			return true
		}
	}
	return false
}

package slug

import "strings"

// reserved holds identifiers that collide with top-level routes or brand
// names and can never be claimed by a collective.
var reserved = map[string]struct{}{
	"about": {}, "account": {}, "accounts": {}, "admin": {}, "api": {}, "app": {},
	"applications": {}, "apply": {}, "become-a-sponsor": {}, "blog": {},
	"collective": {}, "collectives": {}, "confirm": {}, "contact": {}, "create": {},
	"create-account": {}, "dashboard": {}, "discover": {}, "donate": {}, "edit": {},
	"embed": {}, "events": {}, "expenses": {}, "faq": {}, "fund": {}, "gift-card": {},
	"gift-cards": {}, "help": {}, "hiring": {}, "home": {}, "host": {}, "hosts": {},
	"how-it-works": {}, "join": {}, "learn-more": {}, "login": {}, "logout": {},
	"member": {}, "members": {}, "metrics": {}, "health": {}, "onboarding": {},
	"opencollective": {}, "order": {}, "orders": {}, "organizations": {},
	"pledges": {}, "pricing": {}, "privacypolicy": {}, "redeem": {}, "redeemed": {},
	"register": {}, "search": {}, "settings": {}, "signin": {}, "signup": {},
	"static": {}, "subscriptions": {}, "support": {}, "tos": {}, "transactions": {},
	"updates": {}, "widgets": {},
}

// IsReserved reports whether candidate is in the reserved set, ignoring case.
func IsReserved(candidate string) bool {
	_, ok := reserved[strings.ToLower(strings.TrimSpace(candidate))]
	return ok
}

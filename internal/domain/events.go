package domain

// EventKind is the message type tag used on the wire ("msgtype")
type EventKind string

const (
	EventUsername  EventKind = "username"
	EventPassword  EventKind = "password"
	EventDomString EventKind = "domstring"
)

// Event is a credential or page event reported by a content script.
// The set of implementations is closed: UsernameEvent, PasswordEvent and DomStringEvent.
type Event interface {
	Kind() EventKind
	isEvent()
}

// UsernameEvent is emitted when a username is typed into a page
type UsernameEvent struct {
	URL      string
	Username string
	DOM      string
}

// PasswordEvent is emitted when a password is submitted.
// Save carries the user's consent to record the password on an enterprise page.
type PasswordEvent struct {
	URL      string
	Username string
	Password string
	Save     bool
}

// DomStringEvent carries the structural DOM summary of a visited page
type DomStringEvent struct {
	URL string
	DOM string
}

func (UsernameEvent) Kind() EventKind  { return EventUsername }
func (PasswordEvent) Kind() EventKind  { return EventPassword }
func (DomStringEvent) Kind() EventKind { return EventDomString }

func (UsernameEvent) isEvent()  {}
func (PasswordEvent) isEvent()  {}
func (DomStringEvent) isEvent() {}

// PasswordOutcome is the closed set of decisions for a password event
type PasswordOutcome string

const (
	OutcomeEnterpriseSave   PasswordOutcome = "enterprise_save"
	OutcomeEnterpriseNoSave PasswordOutcome = "enterprise_no_save"
	OutcomeReuseAlert       PasswordOutcome = "reuse_alert"
	OutcomeNoReuse          PasswordOutcome = "no_reuse"
	OutcomeIgnoredDomain    PasswordOutcome = "ignored_domain"
)

// RouteResult reports what the router decided for one event.
// Outcome is set for password events, DomMatch for domstring events.
type RouteResult struct {
	Kind       EventKind
	DomainType DomainType
	Outcome    PasswordOutcome
	DomMatch   *DomMatch
}

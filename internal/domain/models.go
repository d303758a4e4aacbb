package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by lookups that address a record which does not exist
var ErrNotFound = errors.New("not found")

// DomainType is the classification of a hostname at a point in time
type DomainType string

const (
	DomainEnterprise DomainType = "enterprise"
	DomainDangerous  DomainType = "dangerous"
	DomainIgnored    DomainType = "ignored"
)

// ParseDomainType maps a wire value to a DomainType. Unknown values are Ignored.
func ParseDomainType(s string) DomainType {
	switch DomainType(s) {
	case DomainEnterprise:
		return DomainEnterprise
	case DomainDangerous:
		return DomainDangerous
	default:
		return DomainIgnored
	}
}

// ContentHash is a lowercase hex digest used as a content-addressed key
type ContentHash string

// PasswordHashRecord links a password digest to the enterprise account it was entered for.
// The plaintext password is never part of this record.
type PasswordHashRecord struct {
	Hash      ContentHash `json:"hash"`
	Hostname  string      `json:"hostname"`
	Username  string      `json:"username"`
	CreatedAt time.Time   `json:"created_at"`
}

// DomHashRecord is the structural fingerprint of an enterprise login page
type DomHashRecord struct {
	Hash      ContentHash `json:"hash"`
	Domain    string      `json:"domain"` // registrable domain of the page
	CreatedAt time.Time   `json:"created_at"`
}

// UsernameRecord is a username typed on an enterprise page
type UsernameRecord struct {
	Username  string    `json:"username"`
	Hostname  string    `json:"hostname"`
	CreatedAt time.Time `json:"created_at"`
}

// NotificationRecord associates a displayed notification with the reuse event that produced it.
// The notification surface only reports its opaque id on button click, so this is the only way back.
type NotificationRecord struct {
	ID        string      `json:"id"`
	Hash      ContentHash `json:"hash"`
	URL       string      `json:"url"`
	CreatedAt time.Time   `json:"created_at"`
}

// AlertType identifies what a server alert reports
type AlertType string

const (
	AlertTypeReuse   AlertType = "reuse"
	AlertTypeDomHash AlertType = "domhash"
)

// AlertContent is the outbound record sent to the remote alerting endpoint.
// It carries the credential event fields except the password.
type AlertContent struct {
	ID                 uuid.UUID `json:"id"`
	AlertType          AlertType `json:"alertType"`
	URL                string    `json:"url"`
	Username           string    `json:"username,omitempty"`
	Save               bool      `json:"save,omitempty"`
	AssociatedHostname string    `json:"associatedHostname,omitempty"`
	AssociatedUsername string    `json:"associatedUsername,omitempty"`
	MatchedDomain      string    `json:"matchedDomain,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
}

// NewReuseAlert builds the alert for a password entered on a dangerous host
func NewReuseAlert(event PasswordEvent, record PasswordHashRecord) AlertContent {
	return AlertContent{
		ID:                 uuid.New(),
		AlertType:          AlertTypeReuse,
		URL:                event.URL,
		Username:           event.Username,
		Save:               event.Save,
		AssociatedHostname: record.Hostname,
		AssociatedUsername: record.Username,
		CreatedAt:          time.Now().UTC(),
	}
}

// NewDomHashAlert builds the alert for a page whose structure clones another domain's login page
func NewDomHashAlert(url string, match DomMatch) AlertContent {
	alert := AlertContent{
		ID:        uuid.New(),
		AlertType: AlertTypeDomHash,
		URL:       url,
		CreatedAt: time.Now().UTC(),
	}
	if len(match.MatchedDomains) > 0 {
		alert.MatchedDomain = match.MatchedDomains[0]
	}
	return alert
}

// DomMatch is the result of comparing a page fingerprint against stored enterprise fingerprints
type DomMatch struct {
	Matched        bool        `json:"matched"`
	Hash           ContentHash `json:"hash,omitempty"`
	Domain         string      `json:"domain"`
	MatchedDomains []string    `json:"matchedDomains,omitempty"`
}

// Notification is a local, interactive notice shown to the user about a detection.
// ID is assigned by the surface when the notification is created.
type Notification struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	Message            string    `json:"message"`
	Buttons            []string  `json:"buttons"`
	RequireInteraction bool      `json:"requireInteraction"`
	Priority           int       `json:"priority"`
	CreatedAt          time.Time `json:"createdAt"`
}

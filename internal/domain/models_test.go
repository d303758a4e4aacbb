package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDomainType(t *testing.T) {
	tests := []struct {
		in       string
		expected DomainType
	}{
		{"enterprise", DomainEnterprise},
		{"dangerous", DomainDangerous},
		{"ignored", DomainIgnored},
		{"", DomainIgnored},
		{"ENTERPRISE", DomainIgnored},
		{"unknown", DomainIgnored},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseDomainType(tt.in))
		})
	}
}

func TestNewReuseAlert(t *testing.T) {
	event := PasswordEvent{
		URL:      "https://login-portal-enterprise.phish.example/login",
		Username: "alice",
		Password: "Secr3t!",
	}
	record := PasswordHashRecord{
		Hash:     "abc",
		Hostname: "portal.enterprise.example",
		Username: "alice@enterprise.example",
	}

	alert := NewReuseAlert(event, record)

	assert.Equal(t, AlertTypeReuse, alert.AlertType)
	assert.Equal(t, event.URL, alert.URL)
	assert.Equal(t, "alice", alert.Username)
	assert.Equal(t, "portal.enterprise.example", alert.AssociatedHostname)
	assert.Equal(t, "alice@enterprise.example", alert.AssociatedUsername)
	assert.NotEmpty(t, alert.ID.String())
	assert.False(t, alert.CreatedAt.IsZero())
}

func TestNewDomHashAlert(t *testing.T) {
	alert := NewDomHashAlert("https://clone.example/", DomMatch{
		Matched:        true,
		Domain:         "clone.example",
		MatchedDomains: []string{"enterprise.example"},
	})

	assert.Equal(t, AlertTypeDomHash, alert.AlertType)
	assert.Equal(t, "enterprise.example", alert.MatchedDomain)
	assert.Empty(t, alert.AssociatedHostname)
}

func TestEvent_Kind(t *testing.T) {
	events := map[EventKind]Event{
		EventUsername:  UsernameEvent{},
		EventPassword:  PasswordEvent{},
		EventDomString: DomStringEvent{},
	}
	for kind, ev := range events {
		assert.Equal(t, kind, ev.Kind())
	}
}

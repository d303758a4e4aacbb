package httpadapter

import "github.com/stoik/phishcatch/internal/domain"

type eventContent struct {
	URL      string `json:"url" minLength:"1" doc:"URL of the page the event was captured on"`
	Username string `json:"username,omitempty" doc:"Username typed into the page"`
	Password string `json:"password,omitempty" doc:"Submitted password, never stored or forwarded in clear"`
	Save     bool   `json:"save,omitempty" doc:"User consent to record the password on an enterprise page"`
	DOM      string `json:"dom,omitempty" doc:"Structural DOM summary of the page"`
}

type eventRequest struct {
	MsgType string       `json:"msgtype" enum:"username,password,domstring" doc:"Event type"`
	Content eventContent `json:"content"`
}

type eventInput struct {
	Body eventRequest
}

type eventResponse struct {
	MsgType    domain.EventKind       `json:"msgtype"`
	DomainType domain.DomainType      `json:"domainType,omitempty" doc:"Classification of the page host"`
	Outcome    domain.PasswordOutcome `json:"outcome,omitempty" doc:"Decision for a password event"`
	DomMatch   *domain.DomMatch       `json:"domMatch,omitempty" doc:"Result of a structure comparison"`
}

type eventOutput struct {
	Body eventResponse
}

type domainInput struct {
	Host string `path:"host" doc:"Hostname or URL to classify"`
}

type domainResponse struct {
	Host string            `json:"host"`
	Type domain.DomainType `json:"type" enum:"enterprise,dangerous,ignored"`
}

type domainOutput struct {
	Body domainResponse
}

type notificationsOutput struct {
	Body []domain.Notification
}

type buttonInput struct {
	ID    string `path:"id" doc:"Notification id"`
	Index int    `path:"index" doc:"Index of the clicked button"`
}

type conversationInput struct {
	RawBody []byte
}

type conversationResponse struct {
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
}

type conversationOutput struct {
	Body conversationResponse
}

type healthResponse struct {
	Status string `json:"status" example:"OK" doc:"Health status of the service"`
}

type healthOutput struct {
	Body healthResponse
}

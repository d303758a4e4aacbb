package storage

import (
	"strings"
	"time"

	"github.com/stoik/phishcatch/internal/domain"
)

// Single-table key layout:
//
//	password hash   PK=PWHASH#<hash>       SK=PWHASH
//	dom hash        PK=DOMHASH#<hash>      SK=DOMAIN#<domain>
//	username        PK=USERNAME#<hostname> SK=USER#<username>
//	notification    PK=NOTIF#<id>          SK=NOTIF
const (
	pwHashPrefix   = "PWHASH#"
	pwHashSortKey  = "PWHASH"
	domHashPrefix  = "DOMHASH#"
	domainPrefix   = "DOMAIN#"
	usernamePrefix = "USERNAME#"
	userPrefix     = "USER#"
	notifPrefix    = "NOTIF#"
	notifSortKey   = "NOTIF"
)

// passwordHashDTO is the DynamoDB item for a PasswordHashRecord
type passwordHashDTO struct {
	PK        string    `dynamodbav:"PK"`
	SK        string    `dynamodbav:"SK"`
	Hostname  string    `dynamodbav:"hostname"`
	Username  string    `dynamodbav:"username"`
	CreatedAt time.Time `dynamodbav:"created_at"`
}

func passwordHashFromDomain(record *domain.PasswordHashRecord) *passwordHashDTO {
	return &passwordHashDTO{
		PK:        pwHashPrefix + string(record.Hash),
		SK:        pwHashSortKey,
		Hostname:  record.Hostname,
		Username:  record.Username,
		CreatedAt: record.CreatedAt.UTC(),
	}
}

func (dto *passwordHashDTO) toDomain() *domain.PasswordHashRecord {
	return &domain.PasswordHashRecord{
		Hash:      domain.ContentHash(strings.TrimPrefix(dto.PK, pwHashPrefix)),
		Hostname:  dto.Hostname,
		Username:  dto.Username,
		CreatedAt: dto.CreatedAt,
	}
}

// domHashDTO is the DynamoDB item for a DomHashRecord
type domHashDTO struct {
	PK        string    `dynamodbav:"PK"`
	SK        string    `dynamodbav:"SK"`
	CreatedAt time.Time `dynamodbav:"created_at"`
}

func domHashFromDomain(record *domain.DomHashRecord) *domHashDTO {
	return &domHashDTO{
		PK:        domHashPrefix + string(record.Hash),
		SK:        domainPrefix + record.Domain,
		CreatedAt: record.CreatedAt.UTC(),
	}
}

func (dto *domHashDTO) toDomain() domain.DomHashRecord {
	return domain.DomHashRecord{
		Hash:      domain.ContentHash(strings.TrimPrefix(dto.PK, domHashPrefix)),
		Domain:    strings.TrimPrefix(dto.SK, domainPrefix),
		CreatedAt: dto.CreatedAt,
	}
}

// usernameDTO is the DynamoDB item for a UsernameRecord
type usernameDTO struct {
	PK        string    `dynamodbav:"PK"`
	SK        string    `dynamodbav:"SK"`
	CreatedAt time.Time `dynamodbav:"created_at"`
}

func usernameFromDomain(record *domain.UsernameRecord) *usernameDTO {
	return &usernameDTO{
		PK:        usernamePrefix + record.Hostname,
		SK:        userPrefix + record.Username,
		CreatedAt: record.CreatedAt.UTC(),
	}
}

// notificationDTO is the DynamoDB item for a NotificationRecord.
// CreatedAtUnix backs the sweep filter; RFC 3339 strings do not compare in time order.
type notificationDTO struct {
	PK            string    `dynamodbav:"PK"`
	SK            string    `dynamodbav:"SK"`
	Hash          string    `dynamodbav:"hash"`
	URL           string    `dynamodbav:"url"`
	CreatedAt     time.Time `dynamodbav:"created_at"`
	CreatedAtUnix int64     `dynamodbav:"created_at_unix"`
}

func notificationFromDomain(record *domain.NotificationRecord) *notificationDTO {
	return &notificationDTO{
		PK:            notifPrefix + record.ID,
		SK:            notifSortKey,
		Hash:          string(record.Hash),
		URL:           record.URL,
		CreatedAt:     record.CreatedAt.UTC(),
		CreatedAtUnix: record.CreatedAt.UnixNano(),
	}
}

func (dto *notificationDTO) toDomain() domain.NotificationRecord {
	return domain.NotificationRecord{
		ID:        strings.TrimPrefix(dto.PK, notifPrefix),
		Hash:      domain.ContentHash(dto.Hash),
		URL:       dto.URL,
		CreatedAt: dto.CreatedAt,
	}
}

package ids

import (
	"github.com/google/uuid"
	"github.com/segmentio/ksuid"
)

// GenerateClientOrderId produces a sortable, collision-resistant client
// order id: prefix + a ksuid (time-ordered, 27 chars). Matches the
// teacher's use of ksuid for externally visible correlation-friendly IDs.
func GenerateClientOrderId(prefix string) ClientOrderId {
	return NewClientOrderId(prefix + ksuid.New().String())
}

// GenerateAccountId produces a venue-scoped account id backed by a uuid4.
func GenerateAccountId(venue string) AccountId {
	return NewAccountId(venue + "-" + uuid.NewString())
}

// GenerateComponentId produces a process-unique component id.
func GenerateComponentId(kind string) ComponentId {
	return NewComponentId(kind + "-" + uuid.NewString())
}

// GenerateCorrelationId produces a bus request/response correlation token.
func GenerateCorrelationId() string {
	return ksuid.New().String()
}

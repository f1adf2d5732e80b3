package event

type EventType string

const (
	LinkRequestCreated  EventType = "link_request.created"
	LinkRequestAccepted EventType = "link_request.accepted"
	LinkRequestRejected EventType = "link_request.rejected"
	SecretaryLinked     EventType = "secretary.linked"
	SecretaryUnlinked   EventType = "secretary.unlinked"
)

// Change is one field whose value differs between two snapshots.
// Nil means the field was empty on that side.
type Change struct {
	Field string
	Old   *string
	New   *string
}

type FieldExtractor interface {
	ExtractFields(obj interface{}, fields []string) map[string]interface{}
	ExtractChanges(old, new interface{}, fields []string) []Change
}

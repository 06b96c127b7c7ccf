package core

const anonPrefix = "anon-"

// Client is one live connection as seen by the core layer.
type Client struct {
	ID   string
	Name string
}

// NewClient builds a session for the transport-assigned id. The chat handle
// is derived from the id, so it is stable for the connection's lifetime and
// distinct across connections.
func NewClient(id string) *Client {
	return &Client{
		ID:   id,
		Name: AnonName(id),
	}
}

// AnonName returns the pseudonymous label used as the author of messages
// sent by the connection with the given id.
func AnonName(id string) string {
	return anonPrefix + id
}

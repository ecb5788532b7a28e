package session

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"idkit/internal/crypto"
	"idkit/internal/domain"
)

// ConnectorBase is the universal link the wallet handles.
const ConnectorBase = "https://worldcoin.org/verify"

// ErrInvalidConnectorURL is returned by ParseConnectorURL.
var ErrInvalidConnectorURL = errors.New("invalid connector URL")

// queryEscaper escapes what a query value cannot carry raw. Base64 '/' and
// '=' stay as they are; '+' would otherwise decode as a space.
var queryEscaper = strings.NewReplacer(
	"%", "%25",
	"+", "%2B",
	"&", "%26",
	"#", "%23",
	" ", "%20",
)

// Connector is the information a wallet needs to answer a request.
type Connector struct {
	LinkType  string
	RequestID domain.RequestID
	Key       crypto.Key
	BridgeURL domain.BridgeURL
}

// String renders the connector URL. Parameters are always written in the
// order t, i, k, b. The key is escaped only where base64 would otherwise
// change the query's meaning; b is fully URL-encoded and omitted for the
// default relay.
func (c Connector) String() string {
	var b strings.Builder
	b.WriteString(ConnectorBase)
	b.WriteString("?t=")
	b.WriteString(queryEscaper.Replace(c.LinkType))
	b.WriteString("&i=")
	b.WriteString(c.RequestID.String())
	b.WriteString("&k=")
	b.WriteString(queryEscaper.Replace(c.Key.String()))
	if !c.BridgeURL.IsZero() && !c.BridgeURL.IsDefault() {
		b.WriteString("&b=")
		b.WriteString(url.QueryEscape(c.BridgeURL.String()))
	}
	return b.String()
}

// ParseConnectorURL recovers a Connector from its URL form. A missing b
// parameter means the default relay.
func ParseConnectorURL(raw string) (Connector, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Connector{}, fmt.Errorf("%w: %v", ErrInvalidConnectorURL, err)
	}
	q := u.Query()

	c := Connector{LinkType: q.Get("t"), BridgeURL: domain.DefaultBridgeURL}
	if c.LinkType == "" {
		return Connector{}, fmt.Errorf("%w: missing link type", ErrInvalidConnectorURL)
	}
	if c.RequestID, err = uuid.Parse(q.Get("i")); err != nil {
		return Connector{}, fmt.Errorf("%w: request id: %v", ErrInvalidConnectorURL, err)
	}
	if c.Key, err = crypto.KeyFromB64(q.Get("k")); err != nil {
		return Connector{}, fmt.Errorf("%w: key: %v", ErrInvalidConnectorURL, err)
	}
	if b := q.Get("b"); b != "" {
		if c.BridgeURL, err = domain.ParseBridgeURL(b); err != nil {
			return Connector{}, fmt.Errorf("%w: bridge: %w", ErrInvalidConnectorURL, err)
		}
	}
	return c, nil
}

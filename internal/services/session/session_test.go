package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"idkit/internal/crypto"
	"idkit/internal/domain"
)

var testRequestID = uuid.MustParse("11111111-1111-1111-1111-111111111111")

// fakeRelay replays a scripted list of relay statuses. Once the script is
// exhausted the last entry repeats.
type fakeRelay struct {
	mu        sync.Mutex
	script    []domain.RelayStatus
	errs      map[int]error
	calls     int
	polled    chan int
	created   []domain.Envelope
	createErr error
}

func newFakeRelay(script ...domain.RelayStatus) *fakeRelay {
	return &fakeRelay{script: script, errs: map[int]error{}, polled: make(chan int, 64)}
}

func (f *fakeRelay) CreateRequest(_ context.Context, _ domain.BridgeURL, env domain.Envelope) (domain.RequestID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return uuid.Nil, f.createErr
	}
	f.created = append(f.created, env)
	return testRequestID, nil
}

func (f *fakeRelay) FetchStatus(_ context.Context, _ domain.BridgeURL, _ domain.RequestID) (domain.RelayStatus, error) {
	f.mu.Lock()
	i := f.calls
	f.calls++
	f.mu.Unlock()
	select {
	case f.polled <- i + 1:
	default:
	}

	if err, ok := f.errs[i]; ok {
		return domain.RelayStatus{}, err
	}
	if i >= len(f.script) {
		i = len(f.script) - 1
	}
	return f.script[i], nil
}

func (f *fakeRelay) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func raw(status string) domain.RelayStatus { return domain.RelayStatus{Status: status} }

func newTestSession(t *testing.T, relay domain.RelayClient, interval time.Duration) *Session[domain.Proof] {
	t.Helper()
	keys, err := crypto.NewKeyMaterial()
	require.NoError(t, err)
	return &Session[domain.Proof]{
		relay:     relay,
		bridge:    domain.DefaultBridgeURL,
		linkType:  domain.LinkTypeUniqueness,
		keys:      keys,
		requestID: testRequestID,
		interval:  interval,
	}
}

// completed seals v the way a wallet would answer: same key, fresh nonce.
func completed(t *testing.T, key crypto.Key, v any) domain.RelayStatus {
	t.Helper()
	nonce, err := crypto.NewNonce()
	require.NoError(t, err)
	env, err := crypto.SealJSON(v, key, nonce)
	require.NoError(t, err)
	return domain.RelayStatus{Status: domain.RelayStatusCompleted, Response: &env}
}

var sampleProof = domain.Proof{
	Proof:             "0xproof",
	MerkleRoot:        "0xroot",
	NullifierHash:     "0xnullifier",
	VerificationLevel: domain.CredentialOrb,
}

func collect[R any](t *testing.T, st *Stream[R]) []domain.Status[R] {
	t.Helper()
	var out []domain.Status[R]
	for s := range st.Updates() {
		out = append(out, s)
	}
	return out
}

func kinds[R any](statuses []domain.Status[R]) []domain.StatusKind {
	out := make([]domain.StatusKind, len(statuses))
	for i, s := range statuses {
		out[i] = s.Kind
	}
	return out
}

func TestOpen_SealsPayloadAndStoresRequestID(t *testing.T) {
	relay := newFakeRelay()
	payload := map[string]string{"app_id": "app_test", "action": "vote"}

	s, err := Open[domain.Proof](context.Background(), relay, payload, Options{})
	require.NoError(t, err)
	require.Equal(t, testRequestID, s.RequestID())
	require.True(t, s.BridgeURL().IsDefault())
	require.Equal(t, DefaultPollInterval, s.interval)
	require.Len(t, relay.created, 1)

	var got map[string]string
	require.NoError(t, crypto.OpenJSON(relay.created[0], s.keys.Key, &got))
	require.Equal(t, payload, got)
	require.Equal(t, crypto.B64(s.keys.Nonce[:]), relay.created[0].IV)
}

func TestOpen_FreshKeysPerSession(t *testing.T) {
	relay := newFakeRelay()
	a, err := Open[domain.Proof](context.Background(), relay, struct{}{}, Options{})
	require.NoError(t, err)
	b, err := Open[domain.Proof](context.Background(), relay, struct{}{}, Options{})
	require.NoError(t, err)
	require.NotEqual(t, a.keys, b.keys)
}

func TestOpen_RelayErrorPropagates(t *testing.T) {
	relay := newFakeRelay()
	relay.createErr = domain.ErrorBridgeRequestFailed
	_, err := Open[domain.Proof](context.Background(), relay, struct{}{}, Options{})
	require.ErrorIs(t, err, domain.ErrorBridgeRequestFailed)
}

func TestConnectorURL_DefaultRelay(t *testing.T) {
	c := Connector{LinkType: "wld", RequestID: testRequestID, BridgeURL: domain.DefaultBridgeURL}
	want := "https://worldcoin.org/verify?t=wld&i=11111111-1111-1111-1111-111111111111&k=" +
		strings.Repeat("A", 43) + "="
	require.Equal(t, want, c.String())
	require.NotContains(t, c.String(), "&b=")
}

func TestConnectorURL_CustomRelay(t *testing.T) {
	c := Connector{
		LinkType:  "cred",
		RequestID: testRequestID,
		BridgeURL: domain.MustParseBridgeURL("https://bridge.example.com"),
	}
	require.True(t, strings.HasSuffix(c.String(), "&b=https%3A%2F%2Fbridge.example.com"))
	require.True(t, strings.HasPrefix(c.String(), ConnectorBase+"?t=cred&i="))
}

func TestConnectorURL_KeyWithPlusRoundTrips(t *testing.T) {
	var key crypto.Key
	for i := range key {
		key[i] = 0xfb
	}
	require.Contains(t, key.String(), "+")
	require.Contains(t, key.String(), "/")

	c := Connector{LinkType: "wld", RequestID: testRequestID, Key: key}
	u := c.String()
	require.NotContains(t, u, "+")
	require.Contains(t, u, "%2B")
	require.Contains(t, u, "/")

	got, err := ParseConnectorURL(u)
	require.NoError(t, err)
	require.Equal(t, key, got.Key)
}

func TestConnectorURL_StableAndParsable(t *testing.T) {
	s := newTestSession(t, newFakeRelay(), time.Millisecond)
	s.bridge = domain.MustParseBridgeURL("http://localhost:8080")

	u := s.ConnectorURL()
	require.Equal(t, u, s.ConnectorURL())

	c, err := ParseConnectorURL(u)
	require.NoError(t, err)
	require.Equal(t, domain.LinkTypeUniqueness, c.LinkType)
	require.Equal(t, testRequestID, c.RequestID)
	require.Equal(t, s.keys.Key, c.Key)
	require.Equal(t, "http://localhost:8080", c.BridgeURL.String())
}

func TestParseConnectorURL_Errors(t *testing.T) {
	good := Connector{LinkType: "wld", RequestID: testRequestID}.String()
	c, err := ParseConnectorURL(good)
	require.NoError(t, err)
	require.True(t, c.BridgeURL.IsDefault())

	for _, bad := range []string{
		"https://worldcoin.org/verify?i=" + testRequestID.String(),
		"https://worldcoin.org/verify?t=wld&i=nope&k=AAAA",
		"https://worldcoin.org/verify?t=wld&i=" + testRequestID.String() + "&k=AAAA",
		good + "&b=http://bridge.example.com",
	} {
		_, err := ParseConnectorURL(bad)
		require.ErrorIs(t, err, ErrInvalidConnectorURL, bad)
	}
}

func TestPollOnce_MapsRelayStatuses(t *testing.T) {
	ctx := context.Background()
	relay := newFakeRelay()
	s := newTestSession(t, relay, time.Millisecond)

	relay.script = []domain.RelayStatus{
		raw(domain.RelayStatusInitialized),
		raw(domain.RelayStatusRetrieved),
		completed(t, s.keys.Key, sampleProof),
		completed(t, s.keys.Key, map[string]string{"error_code": "verification_rejected"}),
	}

	st, err := s.PollOnce(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.StatusWaiting[domain.Proof](), st)

	st, err = s.PollOnce(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.StatusAwaiting[domain.Proof](), st)

	st, err = s.PollOnce(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.StatusConfirmed(sampleProof), st)

	st, err = s.PollOnce(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.StatusFailed[domain.Proof](domain.ErrorVerificationRejected), st)
}

func TestPollOnce_Failures(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, nil, time.Millisecond)
	other, err := crypto.NewKeyMaterial()
	require.NoError(t, err)

	cases := map[string]struct {
		status domain.RelayStatus
		want   error
	}{
		"completed without response": {raw(domain.RelayStatusCompleted), domain.ErrorUnexpectedResponse},
		"unknown status":             {raw("expired"), domain.ErrorUnexpectedResponse},
		"wrong key":                  {completed(t, other.Key, sampleProof), crypto.ErrAuthenticationFailed},
		"result shape mismatch":      {completed(t, s.keys.Key, map[string]string{"proof": "only"}), domain.ErrorUnexpectedResponse},
	}
	for name, tc := range cases {
		s.relay = newFakeRelay(tc.status)
		_, err := s.PollOnce(ctx)
		require.ErrorIs(t, err, tc.want, name)
	}
}

func TestDecodeResponse_UnknownErrorCodeIsFailure(t *testing.T) {
	st, err := decodeResponse[map[string]any]([]byte(`{"error_code":"brand_new_code"}`))
	require.NoError(t, err)
	require.Equal(t, domain.Failed, st.Kind)
	require.Equal(t, domain.ErrorCode("brand_new_code"), st.Code)

	st, err = decodeResponse[map[string]any]([]byte(`{"error_code":null,"x":1}`))
	require.NoError(t, err)
	require.Equal(t, domain.Confirmed, st.Kind)

	st2, err := decodeResponse[string]([]byte(`"opaque"`))
	require.NoError(t, err)
	require.Equal(t, domain.StatusConfirmed("opaque"), st2)
}

func TestStatus_DeduplicatesConsecutiveKinds(t *testing.T) {
	relay := newFakeRelay()
	s := newTestSession(t, relay, time.Millisecond)
	relay.script = []domain.RelayStatus{
		raw(domain.RelayStatusInitialized),
		raw(domain.RelayStatusInitialized),
		raw(domain.RelayStatusRetrieved),
		raw(domain.RelayStatusRetrieved),
		completed(t, s.keys.Key, sampleProof),
	}

	st := s.Status(context.Background())
	got := collect(t, st)
	require.NoError(t, st.Err())
	require.Equal(t, []domain.StatusKind{domain.WaitingForConnection, domain.AwaitingConfirmation, domain.Confirmed}, kinds(got))
	require.Equal(t, sampleProof, got[2].Result)

	// Terminal: the poller has exited, no further polls.
	require.Equal(t, 5, relay.Calls())
	time.Sleep(10 * time.Millisecond)
	require.Equal(t, 5, relay.Calls())
}

func TestStatus_DirectJumpToCompleted(t *testing.T) {
	relay := newFakeRelay()
	s := newTestSession(t, relay, time.Millisecond)
	relay.script = []domain.RelayStatus{
		raw(domain.RelayStatusInitialized),
		completed(t, s.keys.Key, map[string]string{"error_code": "credential_unavailable"}),
	}

	st := s.Status(context.Background())
	got := collect(t, st)
	require.NoError(t, st.Err())
	require.Equal(t, []domain.StatusKind{domain.WaitingForConnection, domain.Failed}, kinds(got))
	require.Equal(t, domain.ErrorCredentialUnavailable, got[1].Code)
}

func TestStatus_ErrorEndsStreamWithoutEmission(t *testing.T) {
	relay := newFakeRelay(raw(domain.RelayStatusInitialized), raw(domain.RelayStatusRetrieved))
	relay.errs[1] = domain.ErrorConnectionFailed
	s := newTestSession(t, relay, time.Millisecond)

	st := s.Status(context.Background())
	got := collect(t, st)
	require.Equal(t, []domain.StatusKind{domain.WaitingForConnection}, kinds(got))
	require.ErrorIs(t, st.Err(), domain.ErrorConnectionFailed)
	require.Equal(t, 2, relay.Calls())
}

func TestStatus_CompletedWithoutResponseFailsStream(t *testing.T) {
	relay := newFakeRelay(raw(domain.RelayStatusRetrieved), raw(domain.RelayStatusCompleted))
	s := newTestSession(t, relay, time.Millisecond)

	st := s.Status(context.Background())
	got := collect(t, st)
	require.Equal(t, []domain.StatusKind{domain.WaitingForConnection, domain.AwaitingConfirmation}, kinds(got))
	require.ErrorIs(t, st.Err(), domain.ErrorUnexpectedResponse)
}

func TestStatus_CancelMidSleepStopsPolling(t *testing.T) {
	relay := newFakeRelay(raw(domain.RelayStatusInitialized))
	s := newTestSession(t, relay, time.Hour)

	st := s.Status(context.Background())
	first := <-st.Updates()
	require.Equal(t, domain.WaitingForConnection, first.Kind)
	require.Equal(t, 1, <-relay.polled)

	st.Close()
	_, open := <-st.Updates()
	require.False(t, open)
	require.ErrorIs(t, st.Err(), context.Canceled)
	require.Equal(t, 1, relay.Calls())
}

func TestStatus_CancelBeforeConsumingIssuesNoPoll(t *testing.T) {
	relay := newFakeRelay(raw(domain.RelayStatusInitialized))
	s := newTestSession(t, relay, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	st := s.Status(ctx)
	cancel()
	st.Close()
	st.Close()
	require.Equal(t, 0, relay.Calls())
}

func TestWait_ReturnsTerminalStatus(t *testing.T) {
	relay := newFakeRelay()
	s := newTestSession(t, relay, time.Millisecond)
	relay.script = []domain.RelayStatus{raw(domain.RelayStatusRetrieved), completed(t, s.keys.Key, sampleProof)}

	got, err := s.Wait(context.Background(), time.Minute)
	require.NoError(t, err)
	require.Equal(t, domain.StatusConfirmed(sampleProof), got)
}

func TestWait_Timeout(t *testing.T) {
	relay := newFakeRelay(raw(domain.RelayStatusInitialized))
	s := newTestSession(t, relay, 5*time.Millisecond)

	got, err := s.Wait(context.Background(), 30*time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, domain.StatusFailed[domain.Proof](domain.ErrorTimeout), got)
}

func TestWait_Cancelled(t *testing.T) {
	relay := newFakeRelay(raw(domain.RelayStatusInitialized))
	s := newTestSession(t, relay, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-relay.polled
		cancel()
	}()
	got, err := s.Wait(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, domain.StatusFailed[domain.Proof](domain.ErrorCancelled), got)
}

func TestWait_TransportErrorIsReturned(t *testing.T) {
	relay := newFakeRelay(raw(domain.RelayStatusInitialized))
	relay.errs[0] = errors.New("boom")
	s := newTestSession(t, relay, time.Millisecond)

	_, err := s.Wait(context.Background(), time.Minute)
	require.EqualError(t, err, "boom")
}

func TestWatch_ReportsEveryTransition(t *testing.T) {
	relay := newFakeRelay()
	s := newTestSession(t, relay, time.Millisecond)
	relay.script = []domain.RelayStatus{
		raw(domain.RelayStatusInitialized),
		raw(domain.RelayStatusRetrieved),
		completed(t, s.keys.Key, sampleProof),
	}

	var seen []domain.Status[domain.Proof]
	got, err := s.Watch(context.Background(), time.Minute, func(st domain.Status[domain.Proof]) {
		seen = append(seen, st)
	})
	require.NoError(t, err)
	require.Equal(t, domain.StatusConfirmed(sampleProof), got)
	require.Equal(t, []domain.StatusKind{domain.WaitingForConnection, domain.AwaitingConfirmation, domain.Confirmed}, kinds(seen))
}

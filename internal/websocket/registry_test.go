package websocket

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"medlit-rag-be/internal/pkg/logger"
)

type fakeTransport struct {
	sent    [][]byte
	sendErr error
	closed  bool
}

func (f *fakeTransport) Send(data []byte) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, data)
	return nil
}

func (f *fakeTransport) Close() error {
	f.closed = true
	return nil
}

func newTestRegistry() *Registry {
	return NewRegistry(nil, logger.NewIsolatedLogger("/tmp/registry_test.log"))
}

func TestRegisterAndSend(t *testing.T) {
	r := newTestRegistry()
	ft := &fakeTransport{}

	r.Register("abc", ft)
	r.Send("abc", []byte(`{"type":"token"}`))

	assert.Equal(t, 1, r.Count())
	assert.Len(t, ft.sent, 1)
}

func TestRegisterOverwriteClosesOld(t *testing.T) {
	r := newTestRegistry()
	old := &fakeTransport{}
	fresh := &fakeTransport{}

	r.Register("abc", old)
	r.Register("abc", fresh)

	assert.True(t, old.closed)
	assert.Equal(t, 1, r.Count())

	r.Send("abc", []byte("x"))
	assert.Empty(t, old.sent)
	assert.Len(t, fresh.sent, 1)
}

func TestRekeyMovesSession(t *testing.T) {
	r := newTestRegistry()
	ft := &fakeTransport{}

	r.Register("provisional-uuid", ft)
	err := r.Rekey("provisional-uuid", "client-42")

	assert.NoError(t, err)
	assert.Equal(t, 1, r.Count())

	r.Send("client-42", []byte("x"))
	assert.Len(t, ft.sent, 1)

	// Old key no longer routes
	r.Send("provisional-uuid", []byte("y"))
	assert.Len(t, ft.sent, 1)
}

func TestRekeyUnknownKeyFails(t *testing.T) {
	r := newTestRegistry()
	assert.Error(t, r.Rekey("ghost", "client-1"))
}

func TestRekeySameKeyIsNoop(t *testing.T) {
	r := newTestRegistry()
	ft := &fakeTransport{}
	r.Register("client-1", ft)

	assert.NoError(t, r.Rekey("client-1", "client-1"))
	assert.Equal(t, 1, r.Count())
}

func TestRekeyOntoExistingKeyReplaces(t *testing.T) {
	r := newTestRegistry()
	stale := &fakeTransport{}
	fresh := &fakeTransport{}

	r.Register("client-1", stale)
	r.Register("tmp", fresh)

	assert.NoError(t, r.Rekey("tmp", "client-1"))
	assert.True(t, stale.closed)
	assert.Equal(t, 1, r.Count())

	r.Send("client-1", []byte("x"))
	assert.Len(t, fresh.sent, 1)
}

func TestUnregisterIsIdempotent(t *testing.T) {
	r := newTestRegistry()
	r.Register("abc", &fakeTransport{})

	r.Unregister("abc")
	r.Unregister("abc")

	assert.Equal(t, 0, r.Count())
}

func TestSendFailureDropsSession(t *testing.T) {
	r := newTestRegistry()
	ft := &fakeTransport{sendErr: errors.New("broken pipe")}

	r.Register("abc", ft)
	r.Send("abc", []byte("x"))

	assert.Equal(t, 0, r.Count())
	assert.True(t, ft.closed)
}

func TestSendToUnknownKeyIsBestEffort(t *testing.T) {
	r := newTestRegistry()
	// No panic, no error surfaced
	r.Send("nobody", []byte("x"))
	assert.Equal(t, 0, r.Count())
}

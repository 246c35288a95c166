package order

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-mandi/internal/db"
	"github.com/noah-isme/backend-mandi/internal/events"
)

type failingEventStore struct{}

func (failingEventStore) InsertDomainEvent(context.Context, string, uuid.UUID, []byte) error {
	return errors.New("event store down")
}

func TestEmitTransitionLogsFailure(t *testing.T) {
	var buf bytes.Buffer
	h := &AdminHandler{
		Events: &events.Bus{Store: failingEventStore{}},
		Logger: zerolog.New(&buf),
	}

	req := httptest.NewRequest(http.MethodPatch, "/admin/orders/x/status", nil)
	h.emitTransition(req, uuid.New(), db.OrderStatusShipped)

	require.Contains(t, buf.String(), "emit status transition")
	require.Contains(t, buf.String(), events.TopicOrderShipped)
}

func TestEmitTransitionSkipsUnknownStatus(t *testing.T) {
	var buf bytes.Buffer
	h := &AdminHandler{
		Events: &events.Bus{Store: failingEventStore{}},
		Logger: zerolog.New(&buf),
	}

	req := httptest.NewRequest(http.MethodPatch, "/admin/orders/x/status", nil)
	h.emitTransition(req, uuid.New(), "PACKED")

	require.Empty(t, buf.String())
}

package delivery

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/merchlab/ordersync/internal/clock"
	"github.com/merchlab/ordersync/internal/config"
	"github.com/merchlab/ordersync/internal/erp/client"
	erpdomain "github.com/merchlab/ordersync/internal/erp/domain"
	"github.com/merchlab/ordersync/internal/erp/token"
	"github.com/merchlab/ordersync/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestResolver serves canned tracking JSON per order id and wires a full
// client in front of the resolver.
func newTestResolver(t *testing.T, tracking map[string]string) *Resolver {
	t.Helper()

	dbConn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, dbConn.AutoMigrate(&token.RefreshToken{}))

	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"test-token","refresh_token":"rt","expires_in":3600}`)
	})
	mux.HandleFunc("GET /delivery-statuses/", func(w http.ResponseWriter, r *http.Request) {
		body, ok := tracking[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	cfg := config.Config{
		Upstream: config.UpstreamConfig{
			BaseURL:      srv.URL,
			TokenURL:     srv.URL + "/token",
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			RefreshToken: "bootstrap-refresh",
		},
	}
	fc := clock.NewFakeClock(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	tokens := token.NewManager(dbConn, zap.NewNop(), cfg, token.NewStore(), fc, nil)
	return NewResolver(client.New(cfg, tokens, zap.NewNop()), zap.NewNop())
}

func TestResolveDeliveredByEventText(t *testing.T) {
	r := newTestResolver(t, map[string]string{
		"/delivery-statuses/BAR-SO1": `{"waybill_no":"WB1","events":[
			{"description":"Delivered to reception","datetime":"05/03/2026 14:00:00"},
			{"description":"Out on delivery","datetime":"05/03/2026 08:00:00"}
		]}`,
	})

	res := r.Resolve(context.Background(), erpdomain.Order{ID: "SO1"})
	assert.True(t, res.IsDelivered)
	require.NotNil(t, res.Stage)
	assert.Equal(t, erpdomain.StageDelivered, *res.Stage)
	assert.Equal(t, "05/03/2026 14:00:00", res.StatusDate)
}

func TestResolveDeliveredByPODOnly(t *testing.T) {
	// No "delivered" event text, but a POD attachment exists.
	r := newTestResolver(t, map[string]string{
		"/delivery-statuses/BAR-SO2": `{"waybill_no":"WB2",
			"events":[{"description":"Out on delivery","datetime":"05/03/2026 08:00:00"}],
			"podDetails":[{"signed_by":"J Smith","datetime":"05/03/2026 14:05:00"}]}`,
	})

	res := r.Resolve(context.Background(), erpdomain.Order{ID: "SO2"})
	assert.True(t, res.IsDelivered)
	require.NotNil(t, res.Stage)
	assert.Equal(t, erpdomain.StageDelivered, *res.Stage)
}

func TestResolveNewestEventWins(t *testing.T) {
	r := newTestResolver(t, map[string]string{
		"/delivery-statuses/BAR-SO3": `{"waybill_no":"WB3","events":[
			{"description":"Accepted into network","datetime":"01/03/2026 09:00:00"},
			{"description":"Line haul departed","datetime":"03/03/2026 22:00:00"},
			{"description":"Loaded onto vehicle","datetime":"02/03/2026 16:00:00"}
		]}`,
	})

	res := r.Resolve(context.Background(), erpdomain.Order{ID: "SO3"})
	assert.False(t, res.IsDelivered)
	require.NotNil(t, res.Stage)
	assert.Equal(t, erpdomain.StageLineHaul, *res.Stage)
	assert.Equal(t, "03/03/2026 22:00:00", res.StatusDate)
}

func TestResolveUnknownNewestEventYieldsNilStage(t *testing.T) {
	r := newTestResolver(t, map[string]string{
		"/delivery-statuses/BAR-SO4": `{"waybill_no":"WB4","events":[
			{"description":"Weather delay at depot","datetime":"04/03/2026 10:00:00"},
			{"description":"Accepted into network","datetime":"01/03/2026 09:00:00"}
		]}`,
	})

	res := r.Resolve(context.Background(), erpdomain.Order{ID: "SO4"})
	assert.Nil(t, res.Stage)
	assert.Equal(t, "04/03/2026 10:00:00", res.StatusDate)
}

func TestResolveFallsBackToOrderStatus(t *testing.T) {
	r := newTestResolver(t, map[string]string{})

	res := r.Resolve(context.Background(), erpdomain.Order{
		ID:        "SO5",
		Status:    "Dispatched",
		OrderDate: "2026-03-01",
	})
	assert.False(t, res.IsDelivered)
	require.NotNil(t, res.Stage)
	assert.Equal(t, erpdomain.StageLineHaul, *res.Stage)
	assert.Equal(t, "2026-03-01", res.StatusDate)
}

func TestResolveNoTrackingNoStatusMatch(t *testing.T) {
	r := newTestResolver(t, map[string]string{})

	res := r.Resolve(context.Background(), erpdomain.Order{
		ID:        "SO6",
		Status:    "Awaiting Payment",
		OrderDate: "2026-03-01",
	})
	assert.Nil(t, res.Stage)
	assert.False(t, res.IsDelivered)
	assert.Equal(t, "2026-03-01", res.StatusDate)
}

func TestResolveEventsAcrossWaybills(t *testing.T) {
	r := newTestResolver(t, map[string]string{
		"/delivery-statuses/BAR-SO7": `[
			{"waybill_no":"WB7a","events":[{"description":"Accepted into network","datetime":"01/03/2026 09:00:00"}]},
			{"waybill_no":"WB7b","events":[{"description":"Out on delivery","datetime":"06/03/2026 07:30:00"}]}
		]`,
	})

	res := r.Resolve(context.Background(), erpdomain.Order{ID: "SO7"})
	require.NotNil(t, res.Stage)
	assert.Equal(t, erpdomain.StageOutForDelivery, *res.Stage)
	assert.Equal(t, "06/03/2026 07:30:00", res.StatusDate)
}

package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareCountsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Middleware())
	router.GET("/ping/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/ping/:id", "204"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping/7", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	after := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/ping/:id", "204"))
	assert.Equal(t, before+1, after)
}

func TestRecordPaymentAddsAmountOnSuccess(t *testing.T) {
	before := testutil.ToFloat64(transferred.WithLabelValues("payment"))
	RecordPayment("ok", 100)
	RecordPayment("forbidden", 100)
	after := testutil.ToFloat64(transferred.WithLabelValues("payment"))
	assert.Equal(t, before+100, after)
}

func TestHandlerServesRegistry(t *testing.T) {
	RecordDeposit("ok", 1)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "contractor_payments_ledger_deposits_total"))
}

package form

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestClientCreateTransaction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/transactions", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"status":true,"message":"Transaction created","data":{"id":1,"transaction_number":"A0001","total_bill":1620}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, testLogger())
	client.Token = "test-token"

	record, err := client.CreateTransaction(context.Background(), TransactionRequest{CustomerID: 1})
	require.NoError(t, err)
	assert.Equal(t, "A0001", record.TransactionNumber)
	assert.Equal(t, 1620.0, record.TotalBill)
}

func TestClientSurfacesServerErrorMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"status":false,"message":"cylinders OUT do not match cylinders brought in for at least one size"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, testLogger())
	_, err := client.CreateTransaction(context.Background(), TransactionRequest{CustomerID: 1})
	require.Error(t, err)
	assert.EqualError(t, err, "cylinders OUT do not match cylinders brought in for at least one size")
}

func TestClientStatusWithoutEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream blew up"))
	}))
	defer server.Close()

	client := NewClient(server.URL, testLogger())
	_, err := client.ListTransactions(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestClientTimeoutMapsToServerAsleep(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(server.URL, testLogger())
	client.httpClient.Timeout = 50 * time.Millisecond

	_, err := client.CreateTransaction(context.Background(), TransactionRequest{CustomerID: 1})
	require.ErrorIs(t, err, ErrServerAsleep)
}

func TestClientListTransactions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "4", r.URL.Query().Get("customer_id"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":true,"message":"List of transactions","data":{"transactions":[{"id":1},{"id":2}]}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, testLogger())
	records, err := client.ListTransactions(context.Background(), 4)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

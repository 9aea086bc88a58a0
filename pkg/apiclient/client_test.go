package apiclient_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goidentity/pkg/apiclient"
)

// TestRegister_PostsModelAndReturnsRawResponse verifica que o adaptador envia
// exatamente o modelo serializado e devolve a resposta sem interpretar.
func TestRegister_PostsModelAndReturnsRawResponse(t *testing.T) {
	var gotMethod, gotPath, gotContentType string
	var gotBody apiclient.RegisterModel

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"user":{"id":"id-1"}}`))
	}))
	defer srv.Close()

	client := apiclient.New(srv.URL)

	model := apiclient.RegisterModel{
		FirstName: "John",
		LastName:  "Smith",
		Email:     "john@smith.com",
		Password:  "abcdef",
	}

	resp, err := client.Register(context.Background(), model)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/v1/register", gotPath)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, model, gotBody)

	// A resposta chega crua ao chamador: status e corpo intactos.
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"user":{"id":"id-1"}}`, string(body))
}

// TestRegister_ErrorStatusIsNotInterpreted verifica que respostas de erro do
// backend não viram erro do adaptador.
func TestRegister_ErrorStatusIsNotInterpreted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	client := apiclient.New(srv.URL)

	resp, err := client.Register(context.Background(), apiclient.RegisterModel{})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

// TestNew_TrimsTrailingSlash verifica a normalização da URL base.
func TestNew_TrimsTrailingSlash(t *testing.T) {
	client := apiclient.New("http://localhost:8080/")
	assert.Equal(t, "http://localhost:8080", client.BaseURL)
}

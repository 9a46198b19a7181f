package chi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kailas-cloud/propdex/internal/db/memory"
	repo "github.com/kailas-cloud/propdex/internal/repository/property"
	healthuc "github.com/kailas-cloud/propdex/internal/usecase/health"
	propertyuc "github.com/kailas-cloud/propdex/internal/usecase/property"
	searchuc "github.com/kailas-cloud/propdex/internal/usecase/search"
)

const (
	testKey      = "test-signing-key"
	testAudience = "propdex-test"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func signToken(t *testing.T, method jwt.SigningMethod, key string, claims jwt.MapClaims) string {
	t.Helper()
	if _, ok := claims["exp"]; !ok {
		claims["exp"] = time.Now().Add(time.Hour).Unix()
	}
	s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(key))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func userToken(t *testing.T, sub string) string {
	t.Helper()
	return signToken(t, jwt.SigningMethodHS256, testKey, jwt.MapClaims{
		"sub":   sub,
		"email": sub + "@example.com",
		"aud":   testAudience,
	})
}

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	store := memory.NewStore()
	r := repo.New(store)
	engine := searchuc.NewEngine(searchuc.DefaultStrategies(r, nil, nil), nil)
	srv := NewServer(
		propertyuc.New(r, engine),
		healthuc.New(store),
		NewAuthenticator(testKey, testAudience),
		nil,
	)
	return srv.Handler()
}

func do(t *testing.T, h http.Handler, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var out map[string]any
	if rr.Body.Len() > 0 {
		if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode response %q: %v", rr.Body.String(), err)
		}
	}
	return rr, out
}

func houseBody(city string, price float64) map[string]any {
	return map[string]any{
		"title":          "Family house",
		"description":    "Three bedrooms",
		"price":          price,
		"street_address": "742 Evergreen Terrace",
		"city":           city,
		"property_type":  "house",
		"listing_type":   "sale",
	}
}

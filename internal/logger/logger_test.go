package logger

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
)

func attrMap(attrs []slog.Attr) map[string]string {
	m := make(map[string]string, len(attrs))
	for _, a := range attrs {
		m[a.Key] = a.Value.String()
	}
	return m
}

func TestLogHTTPRequest_RedactsCredentials(t *testing.T) {
	body := `{"email":"jane@shop.io","password":"hunter22"}`
	req := httptest.NewRequest(http.MethodPost, "/api/seller/login?token=abc", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer abc.def.ghi")

	attrs := attrMap(LogHTTPRequest(req.Context(), req, "incoming::request"))

	assert.Equal(t, "jane@shop.io", attrs["http.body.email"])
	assert.Equal(t, redacted, attrs["http.body.password"])
	assert.Equal(t, redacted, attrs["http.header.authorization"])
	assert.Equal(t, redacted, attrs["http.query.token"])

	rest, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.Equal(t, body, string(rest))
}

func TestCaptureBody_KeepsStreamBeyondLimit(t *testing.T) {
	body := strings.Repeat("a", MaxBodyLogged+10)
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "text/plain")

	captured, err := CaptureBody(req)
	require.NoError(t, err)
	assert.Len(t, captured, MaxBodyLogged)

	all, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.Len(t, all, len(body))
}

func TestLogHTTPRequest_MultipartNotCaptured(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/product", strings.NewReader("--x\r\n"))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")

	attrs := attrMap(LogHTTPRequest(req.Context(), req, "incoming::request"))
	assert.Contains(t, attrs, "http.body.size_bytes")

	rest, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.Equal(t, "--x\r\n", string(rest))
}

func TestLogHTTPResponse_RedactsToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/user-login", nil)
	hdr := http.Header{"Content-Type": []string{"application/json"}}

	attrs := attrMap(LogHTTPResponse(req.Context(), req, hdr, 200, strings.NewReader(`{"token":"abc"}`), 3, "incoming::response"))
	assert.Equal(t, redacted, attrs["http.body.token"])
	assert.Equal(t, "200", attrs["http.status"])
}

func TestFormAttrs(t *testing.T) {
	attrs, err := formAttrs([]byte("name=Lamp&password=x"))
	require.NoError(t, err)
	m := attrMap(attrs)
	assert.Equal(t, "Lamp", m["http.body.name"])
	assert.Equal(t, redacted, m["http.body.password"])
}

func TestGRPCAttrs(t *testing.T) {
	md := metadata.Pairs("authorization", "Bearer x", "user-agent", "grpc-go", "x-ignored", "1")
	attrs := attrMap(LogGRPCRequest("/grpc.health.v1.Health/Check", md, &grpc_health_v1.HealthCheckRequest{Service: "shop"}, "incoming::request"))

	assert.Equal(t, redacted, attrs["grpc.header.authorization"])
	assert.Equal(t, "grpc-go", attrs["grpc.header.user-agent"])
	assert.NotContains(t, attrs, "grpc.header.x-ignored")
	assert.Equal(t, "shop", attrs["grpc.request.service"])
}

func TestBuildLogEntry(t *testing.T) {
	entry := buildLogEntry("info", "hello", []slog.Attr{slog.String("k", "v")})
	streams := entry["streams"].([]map[string]interface{})
	require.Len(t, streams, 1)
	values := streams[0]["values"].([][]string)
	require.Len(t, values, 1)
	assert.Contains(t, values[0][1], `"k":"v"`)
	assert.Contains(t, values[0][1], `"message":"hello"`)
}

package b2b

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"orderenricher/internal/config"
	apperrors "orderenricher/internal/errors"
	"orderenricher/internal/infrastructure/metrics"
)

func testConfig(url string) config.B2BConfig {
	return config.B2BConfig{
		APIURL:      url,
		AccessToken: "b2b-token",
		ClientID:    "client-1",
		AuthScheme:  config.B2BAuthHeader,
		PageSize:    2,
		MaxPages:    5,
		HTTP:        config.HTTPClientConfig{Timeout: time.Second},
	}
}

func newTestB2B(t *testing.T, cfg func(string) config.B2BConfig, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(cfg(srv.URL), metrics.NewNop(), zap.NewNop())
}

func TestListCompanies_HeaderAuthAndFilter(t *testing.T) {
	var gotToken, gotClient, gotName string
	client := newTestB2B(t, testConfig, func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Auth-Token")
		gotClient = r.Header.Get("X-Auth-Client")
		gotName = r.URL.Query().Get("name")
		_, _ = w.Write([]byte(`{"code":200,"data":[{"id":1,"name":"Acme","extraFields":[{"name":"E8 Company ID","value":"E8-001"}]}],"meta":{"pagination":{"totalCount":1,"offset":0,"limit":2}}}`))
	})

	companies, err := client.ListCompanies(context.Background(), "Acme")

	require.NoError(t, err)
	require.Len(t, companies, 1)
	assert.Equal(t, int64(1), companies[0].ID)
	assert.Equal(t, "Acme", companies[0].Name)
	assert.Equal(t, "E8-001", companies[0].ExtraFields[0].Value)
	assert.Equal(t, "b2b-token", gotToken)
	assert.Equal(t, "client-1", gotClient)
	assert.Equal(t, "Acme", gotName)
}

func TestListCompanies_BearerAuth(t *testing.T) {
	var gotAuth, gotToken string
	client := newTestB2B(t, func(url string) config.B2BConfig {
		cfg := testConfig(url)
		cfg.AuthScheme = config.B2BAuthBearer
		cfg.ClientID = ""
		return cfg
	}, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotToken = r.Header.Get("X-Auth-Token")
		_, _ = w.Write([]byte(`{"code":200,"data":[]}`))
	})

	companies, err := client.ListCompanies(context.Background(), "")

	require.NoError(t, err)
	assert.Empty(t, companies)
	assert.Equal(t, "Bearer b2b-token", gotAuth)
	assert.Empty(t, gotToken)
}

func TestListCompanies_Paginates(t *testing.T) {
	var calls int32
	client := newTestB2B(t, testConfig, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		switch offset {
		case 0:
			_, _ = w.Write([]byte(`{"data":[{"companyId":1,"companyName":"A"},{"companyId":2,"companyName":"B"}],"meta":{"pagination":{"totalCount":3}}}`))
		case 2:
			_, _ = w.Write([]byte(`{"data":[{"companyId":3,"companyName":"C"}],"meta":{"pagination":{"totalCount":3}}}`))
		default:
			t.Errorf("unexpected offset %d", offset)
		}
	})

	companies, err := client.ListCompanies(context.Background(), "")

	require.NoError(t, err)
	require.Len(t, companies, 3)
	assert.Equal(t, "C", companies[2].Name)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestListCompanies_StopsAtMaxPages(t *testing.T) {
	var calls int32
	client := newTestB2B(t, func(url string) config.B2BConfig {
		cfg := testConfig(url)
		cfg.MaxPages = 2
		return cfg
	}, func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		fmt.Fprintf(w, `{"data":[{"id":%d,"name":"X"},{"id":%d,"name":"Y"}]}`, n*10, n*10+1)
	})

	companies, err := client.ListCompanies(context.Background(), "")

	require.NoError(t, err)
	assert.Len(t, companies, 4)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestListCompanies_InvalidExtraFieldShape(t *testing.T) {
	client := newTestB2B(t, testConfig, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"id":1,"name":"Acme","extraFields":[{"name":"E8 Company ID","value":{"nested":true}}]}]}`))
	})

	_, err := client.ListCompanies(context.Background(), "")

	me, ok := apperrors.IsMalformedResponseError(err)
	require.True(t, ok)
	assert.Equal(t, ResourceCompanies, me.Resource)
}

func TestListCompanies_MissingID(t *testing.T) {
	client := newTestB2B(t, testConfig, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"name":"Acme"}]}`))
	})

	_, err := client.ListCompanies(context.Background(), "")

	_, ok := apperrors.IsMalformedResponseError(err)
	assert.True(t, ok)
}

func TestListCompanies_UpstreamError(t *testing.T) {
	client := newTestB2B(t, testConfig, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := client.ListCompanies(context.Background(), "Acme")

	ue, ok := apperrors.IsUpstreamFetchError(err)
	require.True(t, ok)
	assert.Equal(t, ResourceCompanies, ue.Resource)
	assert.Equal(t, http.StatusForbidden, ue.StatusCode)
}

func TestGetCompany(t *testing.T) {
	var gotPath string
	client := newTestB2B(t, testConfig, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"code":200,"data":{"companyId":42,"companyName":"Acme","extraFields":[{"fieldName":"E8 Company ID","fieldValue":1001},{"fieldName":"Notes","fieldValue":null}]}}`))
	})

	company, err := client.GetCompany(context.Background(), 42)

	require.NoError(t, err)
	assert.Equal(t, "/api/v3/io/companies/42", gotPath)
	assert.Equal(t, int64(42), company.ID)
	value, ok := company.ExtraFieldValue("E8 Company ID")
	require.True(t, ok)
	assert.Equal(t, "1001", value)
	_, ok = company.ExtraFieldValue("Notes")
	assert.False(t, ok)
}

func TestScalarString(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: `"E8-001"`, want: "E8-001"},
		{input: `1001`, want: "1001"},
		{input: `12.50`, want: "12.50"},
		{input: `null`, want: ""},
		{input: ``, want: ""},
		{input: `true`, wantErr: true},
		{input: `["a"]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := scalarString([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtraFieldPayload_ValueAliases(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "fieldValue", input: `{"fieldName":"E8 Company ID","fieldValue":"E8-001"}`, want: "E8-001"},
		{name: "value", input: `{"name":"E8 Company ID","value":"E8-001"}`, want: "E8-001"},
		{name: "null fieldValue falls back to value", input: `{"fieldName":"E8 Company ID","fieldValue":null,"value":"E8-001"}`, want: "E8-001"},
		{name: "fieldValue wins", input: `{"fieldName":"E8 Company ID","fieldValue":"E8-002","value":"E8-001"}`, want: "E8-002"},
		{name: "both null", input: `{"fieldName":"E8 Company ID","fieldValue":null,"value":null}`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f extraFieldPayload
			require.NoError(t, f.UnmarshalJSON([]byte(tt.input)))
			assert.Equal(t, "E8 Company ID", f.Name)
			assert.Equal(t, tt.want, f.Value)
		})
	}
}

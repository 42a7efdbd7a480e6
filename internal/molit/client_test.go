package molit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wondash/server/internal/models"
)

const sampleResponse = `<?xml version="1.0" encoding="UTF-8"?>
<response>
  <header>
    <resultCode>00</resultCode>
    <resultMsg>NORMAL SERVICE.</resultMsg>
  </header>
  <body>
    <items>
      <item>
        <아파트>은마</아파트>
        <법정동>대치동</법정동>
        <거래금액>    250,000</거래금액>
        <전용면적>84.43</전용면적>
        <층>9</층>
        <건축년도>1979</건축년도>
        <년>2026</년>
        <월>8</월>
        <일>3</일>
      </item>
      <item>
        <아파트>래미안대치팰리스</아파트>
        <법정동>대치동</법정동>
        <거래금액>abc</거래금액>
        <전용면적>bad</전용면적>
        <층>21</층>
        <건축년도>2015</건축년도>
        <년>2026</년>
        <월>8</월>
        <일>14</일>
      </item>
    </items>
  </body>
</response>`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient("test-key", logrus.New())
	c.SetBaseURL(srv.URL)
	return c
}

func TestFetchMonth_ParsesRecords(t *testing.T) {
	var gotQuery map[string][]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(sampleResponse))
	})

	result := c.FetchMonth(context.Background(), "11680", "202608")
	require.Equal(t, models.StatusData, result.Status)
	require.Len(t, result.Rows, 2)

	first := result.Rows[0]
	assert.Equal(t, "은마", first.AptName)
	assert.Equal(t, "대치동", first.Dong)
	assert.Equal(t, 250000, first.Price)
	assert.Equal(t, 84.43, first.Area)
	assert.Equal(t, "9", first.Floor)
	assert.Equal(t, "1979", first.BuiltYear)
	assert.Equal(t, "2026-08-03", first.ContractDate)
	assert.Equal(t, "11680", first.LawdCd)

	// Malformed numerics degrade to zero instead of dropping the record
	second := result.Rows[1]
	assert.Equal(t, 0, second.Price)
	assert.Equal(t, 0.0, second.Area)
	assert.Equal(t, "2026-08-14", second.ContractDate)

	assert.Equal(t, []string{"11680"}, gotQuery["LAWD_CD"])
	assert.Equal(t, []string{"202608"}, gotQuery["DEAL_YMD"])
	assert.Equal(t, []string{"1000"}, gotQuery["numOfRows"])
	assert.Equal(t, []string{"1"}, gotQuery["pageNo"])
	assert.Equal(t, []string{"test-key"}, gotQuery["serviceKey"])
}

func TestFetchMonth_DecodesServiceKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "abc+def==", r.URL.Query().Get("serviceKey"))
		w.Write([]byte(sampleResponse))
	}))
	defer srv.Close()

	// Keys handed out by the portal arrive percent-encoded
	c := NewClient("abc%2Bdef%3D%3D", logrus.New())
	c.SetBaseURL(srv.URL)

	result := c.FetchMonth(context.Background(), "11680", "202608")
	assert.Equal(t, models.StatusData, result.Status)
}

func TestFetchMonth_EmptyMonth(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<response><header><resultCode>000</resultCode></header><body><items></items></body></response>`))
	})

	result := c.FetchMonth(context.Background(), "11680", "202601")
	assert.Equal(t, models.StatusEmpty, result.Status)
	assert.Empty(t, result.Rows)
	assert.Empty(t, result.Reason)
}

func TestFetchMonth_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "non-200 status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "malformed xml",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("<response><header>"))
			},
		},
		{
			name: "api error code",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`<response><header><resultCode>30</resultCode><resultMsg>SERVICE KEY IS NOT REGISTERED ERROR.</resultMsg></header></response>`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler)
			result := c.FetchMonth(context.Background(), "11680", "202608")
			assert.Equal(t, models.StatusFailed, result.Status)
			assert.NotEmpty(t, result.Reason)
			assert.Empty(t, result.Rows)
		})
	}
}

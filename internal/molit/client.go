package molit

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"wondash/server/internal/models"
)

// DefaultBaseURL is the MOLIT apartment-trade endpoint.
const DefaultBaseURL = "http://openapi.molit.go.kr/OpenAPI_ToolInstallPackage/service/rest/RTMSOBJSvc/getRTMSDataSvcAptTradeDev"

// Client queries the national real-estate transaction registry. It is
// stateless; one FetchMonth call issues exactly one HTTP GET.
type Client struct {
	logger     *logrus.Logger
	client     *http.Client
	baseURL    string
	serviceKey string
}

// NewClient creates a registry client. The portal hands out keys that are
// already percent-encoded, so the key is decoded once here and re-encoded by
// the query builder to avoid double encoding on the wire.
func NewClient(serviceKey string, logger *logrus.Logger) *Client {
	if decoded, err := url.QueryUnescape(serviceKey); err == nil {
		serviceKey = decoded
	}

	return &Client{
		logger:     logger,
		client:     &http.Client{Timeout: 10 * time.Second},
		baseURL:    DefaultBaseURL,
		serviceKey: serviceKey,
	}
}

// SetBaseURL overrides the registry endpoint, for tests.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = u
}

type tradeResponse struct {
	XMLName xml.Name `xml:"response"`
	Header  struct {
		ResultCode string `xml:"resultCode"`
		ResultMsg  string `xml:"resultMsg"`
	} `xml:"header"`
	Body struct {
		Items struct {
			Item []tradeItem `xml:"item"`
		} `xml:"items"`
	} `xml:"body"`
}

type tradeItem struct {
	AptName   string `xml:"아파트"`
	Dong      string `xml:"법정동"`
	Amount    string `xml:"거래금액"`
	Area      string `xml:"전용면적"`
	Floor     string `xml:"층"`
	BuiltYear string `xml:"건축년도"`
	Year      string `xml:"년"`
	Month     string `xml:"월"`
	Day       string `xml:"일"`
}

// FetchMonth fetches every transaction for one region and contract month.
// A transport error, a non-200 status, an unparseable body, or an
// API-reported error code all resolve to StatusFailed; a well-formed response
// with no items resolves to StatusEmpty. Malformed numeric fields inside a
// record degrade to zero instead of dropping the batch.
func (c *Client) FetchMonth(ctx context.Context, lawdCd, dealYmd string) models.FetchResult {
	params := url.Values{
		"serviceKey": []string{c.serviceKey},
		"LAWD_CD":    []string{lawdCd},
		"DEAL_YMD":   []string{dealYmd},
		"numOfRows":  []string{"1000"},
		"pageNo":     []string{"1"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return failed(fmt.Sprintf("failed to create request: %v", err))
	}
	req.URL.RawQuery = params.Encode()

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.WithError(err).WithFields(logrus.Fields{
			"lawd_cd":  lawdCd,
			"deal_ymd": dealYmd,
		}).Error("Registry request failed")
		return failed(fmt.Sprintf("request failed: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.WithFields(logrus.Fields{
			"lawd_cd":  lawdCd,
			"deal_ymd": dealYmd,
			"status":   resp.StatusCode,
		}).Error("Registry returned non-200 status")
		return failed(fmt.Sprintf("unexpected status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return failed(fmt.Sprintf("failed to read response: %v", err))
	}

	var parsed tradeResponse
	if err := xml.Unmarshal(body, &parsed); err != nil {
		c.logger.WithError(err).WithFields(logrus.Fields{
			"lawd_cd":  lawdCd,
			"deal_ymd": dealYmd,
		}).Error("Failed to parse registry response")
		return failed(fmt.Sprintf("malformed response: %v", err))
	}

	if code := parsed.Header.ResultCode; code != "00" && code != "000" {
		c.logger.WithFields(logrus.Fields{
			"lawd_cd":     lawdCd,
			"deal_ymd":    dealYmd,
			"result_code": code,
			"result_msg":  parsed.Header.ResultMsg,
		}).Error("Registry reported an error")
		return failed(fmt.Sprintf("api error %s: %s", code, parsed.Header.ResultMsg))
	}

	items := parsed.Body.Items.Item
	if len(items) == 0 {
		return models.FetchResult{Status: models.StatusEmpty}
	}

	rows := make([]models.TransactionRecord, 0, len(items))
	for _, item := range items {
		rows = append(rows, models.TransactionRecord{
			LawdCd:       lawdCd,
			AptName:      strings.TrimSpace(item.AptName),
			Dong:         strings.TrimSpace(item.Dong),
			Price:        parseAmount(item.Amount),
			Area:         parseArea(item.Area),
			Floor:        strings.TrimSpace(item.Floor),
			BuiltYear:    strings.TrimSpace(item.BuiltYear),
			ContractDate: contractDate(item.Year, item.Month, item.Day),
		})
	}

	c.logger.WithFields(logrus.Fields{
		"lawd_cd":  lawdCd,
		"deal_ymd": dealYmd,
		"rows":     len(rows),
	}).Info("Fetched registry month")

	return models.FetchResult{Status: models.StatusData, Rows: rows}
}

func failed(reason string) models.FetchResult {
	return models.FetchResult{Status: models.StatusFailed, Reason: reason}
}

// parseAmount converts the registry's "79,000" style amount (10k-won units)
// to an integer. Malformed or negative amounts degrade to zero.
func parseAmount(s string) int {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func parseArea(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}

// contractDate assembles an ISO date from the registry's separate
// year/month/day elements. Unparseable parts degrade to zero.
func contractDate(year, month, day string) string {
	y, _ := strconv.Atoi(strings.TrimSpace(year))
	m, _ := strconv.Atoi(strings.TrimSpace(month))
	d, _ := strconv.Atoi(strings.TrimSpace(day))
	return fmt.Sprintf("%04d-%02d-%02d", y, m, d)
}

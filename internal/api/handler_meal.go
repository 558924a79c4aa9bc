package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"meal-export-backend/internal/mealdate"
	"meal-export-backend/internal/model"
	"meal-export-backend/internal/neis"
	"meal-export-backend/internal/reshape"
)

const (
	// OutcomeHeader tells the caller whether the reshaped endpoints restructured the body.
	OutcomeHeader = "X-Reshape-Outcome"

	msgServerError        = "server error occurred"
	msgUnexpectedUpstream = "unexpected upstream response"
	jsonContentType       = "application/json; charset=utf-8"
)

type mealQuery struct {
	Year  string `form:"year"`
	Month string `form:"month"`
}

// mealCall carries one gateway call from the request to its audit entry.
type mealCall struct {
	endpoint string
	query    mealQuery
	dates    mealdate.DateRange
	started  time.Time
	body     []byte
}

// GetMeal handles GET /api/meal. The upstream body is relayed byte for byte.
func (h *Handler) GetMeal(c *gin.Context) {
	call, ok := h.fetch(c, "meal")
	if !ok {
		return
	}
	c.Data(http.StatusOK, jsonContentType, call.body)
	h.record(call, http.StatusOK, "")
}

// GetReshapedMeal handles GET /api/meal/reshaped.
func (h *Handler) GetReshapedMeal(c *gin.Context) {
	call, ok := h.fetch(c, "meal/reshaped")
	if !ok {
		return
	}

	res, ok := h.reshape(c, call)
	if !ok {
		return
	}
	out, err := res.MarshalJSON()
	if err != nil {
		h.fail(c, call, http.StatusInternalServerError, msgServerError, err)
		return
	}

	c.Header(OutcomeHeader, res.Outcome().String())
	c.Data(http.StatusOK, jsonContentType, out)
	h.record(call, http.StatusOK, "")
}

// DownloadMeal handles GET /api/meal/download. The reshaped document is
// pretty printed and offered as a file attachment.
func (h *Handler) DownloadMeal(c *gin.Context) {
	call, ok := h.fetch(c, "meal/download")
	if !ok {
		return
	}

	res, ok := h.reshape(c, call)
	if !ok {
		return
	}
	out, err := res.MarshalIndent()
	if err != nil {
		h.fail(c, call, http.StatusInternalServerError, msgServerError, err)
		return
	}

	c.Header(OutcomeHeader, res.Outcome().String())
	c.Header("Content-Disposition", "attachment; filename="+FileName(call.query.Year, call.query.Month))
	c.Data(http.StatusOK, jsonContentType, out)
	h.record(call, http.StatusOK, "")
}

// FileName is the download name for a month's schedule.
func FileName(year, month string) string {
	return fmt.Sprintf("meal_data_%s_%s.json", strings.TrimSpace(year), mealdate.PaddedMonth(month))
}

// fetch validates the query and performs the single upstream call. When it
// returns false the response has already been written.
func (h *Handler) fetch(c *gin.Context, endpoint string) (*mealCall, bool) {
	call := &mealCall{endpoint: endpoint, started: time.Now()}
	_ = c.ShouldBindQuery(&call.query)

	if call.query.Year == "" || call.query.Month == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": mealdate.MsgRequired})
		return nil, false
	}

	dates, err := mealdate.BuildRange(call.query.Year, call.query.Month)
	if err != nil {
		var verr *mealdate.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message})
			return nil, false
		}
		h.fail(c, call, http.StatusInternalServerError, msgServerError, err)
		return nil, false
	}
	call.dates = dates

	body, err := h.fetcher.FetchMeals(c.Request.Context(), dates)
	if err != nil {
		h.fail(c, call, http.StatusInternalServerError, msgServerError, err)
		return nil, false
	}
	call.body = body
	return call, true
}

func (h *Handler) reshape(c *gin.Context, call *mealCall) (reshape.Result, bool) {
	res, err := reshape.Reshape(call.body)
	if err != nil {
		h.fail(c, call, http.StatusBadGateway, msgUnexpectedUpstream, err)
		return reshape.Result{}, false
	}
	return res, true
}

// fail logs the underlying error and answers with a fixed message so that
// upstream details never reach the caller.
func (h *Handler) fail(c *gin.Context, call *mealCall, status int, msg string, err error) {
	fields := log.Fields{
		"endpoint": call.endpoint,
		"year":     call.query.Year,
		"month":    call.query.Month,
	}
	var uerr *neis.UpstreamError
	if errors.As(err, &uerr) && uerr.StatusCode != 0 {
		fields["upstream_status"] = uerr.StatusCode
	}
	log.WithFields(fields).WithError(err).Error("meal request failed")

	_ = c.Error(err)
	c.JSON(status, gin.H{"error": msg})
	h.record(call, status, err.Error())
}

func (h *Handler) record(call *mealCall, status int, errText string) {
	entry := model.FetchLog{
		Endpoint:   call.endpoint,
		Year:       strings.TrimSpace(call.query.Year),
		Month:      mealdate.PaddedMonth(call.query.Month),
		FromDate:   call.dates.From,
		ToDate:     call.dates.To,
		Status:     status,
		ErrorText:  truncate(errText, 512),
		DurationMs: time.Since(call.started).Milliseconds(),
		CreatedAt:  time.Now().UTC(),
	}
	if call.body != nil {
		summary := neis.Summarize(call.body)
		entry.ResultCode = summary.ResultCode
		entry.RowCount = summary.RowCount
	}
	h.audit.Dispatch(entry)
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

package neis

import (
	"github.com/tidwall/gjson"
)

// Query parameter names understood by the mealServiceDietInfo endpoint.
const (
	ParamOfficeCode = "ATPT_OFCDC_SC_CODE"
	ParamSchoolCode = "SD_SCHUL_CODE"
	ParamType       = "Type"
	ParamKey        = "KEY"
	ParamFromDate   = "MLSV_FROM_YMD"
	ParamToDate     = "MLSV_TO_YMD"
)

// DatasetField is the top-level array field of a successful response.
const DatasetField = "mealServiceDietInfo"

// Summary is what the gateway logs about a relayed body. It never alters the body.
type Summary struct {
	ResultCode    string
	ResultMessage string
	TotalCount    int64
	RowCount      int
}

// Summarize inspects a raw upstream body. A dataset response carries its
// result inside the header element, while "no data" and error responses
// put a RESULT object at the top level.
func Summarize(body []byte) Summary {
	var s Summary
	if !gjson.ValidBytes(body) {
		return s
	}

	doc := gjson.ParseBytes(body)
	result := doc.Get("RESULT")
	doc.Get(DatasetField + ".0.head").ForEach(func(_, item gjson.Result) bool {
		if r := item.Get("RESULT"); r.Exists() {
			result = r
		}
		if n := item.Get("list_total_count"); n.Exists() {
			s.TotalCount = n.Int()
		}
		return true
	})
	s.ResultCode = result.Get("CODE").String()
	s.ResultMessage = result.Get("MESSAGE").String()
	s.RowCount = int(doc.Get(DatasetField + ".1.row.#").Int())
	return s
}

// errorText returns the "error" string field of a JSON body, if any.
func errorText(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	v := gjson.GetBytes(body, "error")
	if v.Type != gjson.String {
		return ""
	}
	return v.String()
}

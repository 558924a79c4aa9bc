package reshape

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReshape_Example(t *testing.T) {
	raw := `{"mealServiceDietInfo":[{"a":1},{"b":2,"row":[{"SCHUL_NM":"X","MMEAL_SC_CODE":"1"}]}]}`

	res, err := Reshape([]byte(raw))
	require.NoError(t, err)
	assert.True(t, res.Reshaped())

	out, err := res.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"급식식단정보":[{"a":1},{"b":2,"row":[{"학교명":"X","식사코드":"1"}]}]}`, string(out))
}

func TestReshape_AllMappedKeys(t *testing.T) {
	raw := `{"mealServiceDietInfo":[{"head":[{"list_total_count":1}]},{"row":[{
		"ATPT_OFCDC_SC_CODE":"B10",
		"SCHUL_NM":"서울고등학교",
		"MMEAL_SC_CODE":"2",
		"MMEAL_SC_NM":"중식",
		"MLSV_YMD":"20240304",
		"MLSV_FGR":1031,
		"DDISH_NM":"쌀밥<br/>김치찌개 (5.9.)",
		"ORPLC_INFO":"쌀 : 국내산",
		"CAL_INFO":"812.3 Kcal",
		"NTR_INFO":"탄수화물(g) : 120.1"
	}]}]}`

	res, err := Reshape([]byte(raw))
	require.NoError(t, err)

	out, err := res.MarshalJSON()
	require.NoError(t, err)

	expected := `{"급식식단정보":[{"head":[{"list_total_count":1}]},{"row":[{"학교명":"서울고등학교","식사코드":"2","식사명":"중식","급식일자":"20240304","급식인원수":1031,"요리명":"쌀밥<br/>김치찌개 (5.9.)","원산지정보":"쌀 : 국내산","칼로리정보":"812.3 Kcal","영양정보":"탄수화물(g) : 120.1"}]}]}`
	assert.Equal(t, expected, string(out))
	assert.NotContains(t, string(out), "ATPT_OFCDC_SC_CODE", "unmapped fields are dropped")
}

func TestReshape_PreservesKeyOrder(t *testing.T) {
	raw := `{"mealServiceDietInfo":[{"z":1,"a":2,"m":3},{"z":"last","row":[],"a":"first"}]}`

	res, err := Reshape([]byte(raw))
	require.NoError(t, err)

	elements := res.Response().Elements
	require.Len(t, elements, 2)
	assert.Equal(t, []string{"z", "a", "m"}, elements[0].Keys())
	assert.Equal(t, []string{"z", "a", "row"}, elements[1].Keys(), "row is appended after the metadata")
}

func TestReshape_ElementCountTracksInput(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected string
	}{
		{
			name:     "Empty array",
			raw:      `{"mealServiceDietInfo":[]}`,
			expected: `{"급식식단정보":[]}`,
		},
		{
			name:     "Header only",
			raw:      `{"mealServiceDietInfo":[{"head":[]}]}`,
			expected: `{"급식식단정보":[{"head":[]}]}`,
		},
		{
			name:     "Null header with container",
			raw:      `{"mealServiceDietInfo":[null,{"row":[{"SCHUL_NM":"X"}]}]}`,
			expected: `{"급식식단정보":[{"row":[{"학교명":"X"}]}]}`,
		},
		{
			name:     "Extra elements ignored",
			raw:      `{"mealServiceDietInfo":[{"h":1},{"c":2},{"ignored":true}]}`,
			expected: `{"급식식단정보":[{"h":1},{"c":2}]}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Reshape([]byte(tc.raw))
			require.NoError(t, err)
			out, err := res.MarshalJSON()
			require.NoError(t, err)
			assert.Equal(t, tc.expected, string(out))
		})
	}
}

func TestReshape_MissingAndNullFields(t *testing.T) {
	raw := `{"mealServiceDietInfo":[{},{"row":[{"SCHUL_NM":null,"MLSV_YMD":"20240301"}]}]}`

	res, err := Reshape([]byte(raw))
	require.NoError(t, err)

	out, err := res.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"급식식단정보":[{},{"row":[{"학교명":null,"급식일자":"20240301"}]}]}`, string(out))
}

func TestReshape_RepeatedKeysKeepLastValue(t *testing.T) {
	raw := `{"mealServiceDietInfo":[{"a":1,"b":{"c":1,"c":2},"a":2},{"n":1,"row":"ignored","n":2,"row":[{"SCHUL_NM":"first","MLSV_YMD":"20240301","SCHUL_NM":"last"}]}]}`

	res, err := Reshape([]byte(raw))
	require.NoError(t, err)

	out, err := res.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"급식식단정보":[{"a":2,"b":{"c":2}},{"n":2,"row":[{"학교명":"last","급식일자":"20240301"}]}]}`, string(out))
}

func TestReshape_RepeatedDatasetKey(t *testing.T) {
	raw := `{"mealServiceDietInfo":"not yet","mealServiceDietInfo":[{},{"row":[]}]}`

	res, err := Reshape([]byte(raw))
	require.NoError(t, err)
	assert.True(t, res.Reshaped())
}

func TestReshape_RowAbsentOrNull(t *testing.T) {
	for _, raw := range []string{
		`{"mealServiceDietInfo":[{},{"count":0}]}`,
		`{"mealServiceDietInfo":[{},{"count":0,"row":null}]}`,
	} {
		res, err := Reshape([]byte(raw))
		require.NoError(t, err)
		out, err := res.MarshalJSON()
		require.NoError(t, err)
		assert.Equal(t, `{"급식식단정보":[{},{"count":0}]}`, string(out))
	}
}

func TestReshape_MalformedRows(t *testing.T) {
	for _, raw := range []string{
		`{"mealServiceDietInfo":[{},{"row":{"SCHUL_NM":"X"}}]}`,
		`{"mealServiceDietInfo":[{},{"row":"oops"}]}`,
		`{"mealServiceDietInfo":[{},{"row":[null]}]}`,
		`{"mealServiceDietInfo":[{},{"row":[1,2]}]}`,
	} {
		_, err := Reshape([]byte(raw))
		assert.ErrorIs(t, err, ErrMalformedRows, raw)
	}
}

func TestReshape_Unchanged(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		rendered string
	}{
		{name: "Empty input", raw: "", rendered: "null"},
		{name: "Null", raw: "null", rendered: "null"},
		{name: "Array", raw: `[1,2]`, rendered: `[1,2]`},
		{name: "No data result", raw: `{"RESULT":{"CODE":"INFO-200","MESSAGE":"해당하는 데이터가 없습니다."}}`, rendered: `{"RESULT":{"CODE":"INFO-200","MESSAGE":"해당하는 데이터가 없습니다."}}`},
		{name: "Dataset not an array", raw: `{"mealServiceDietInfo":{"row":[]}}`, rendered: `{"mealServiceDietInfo":{"row":[]}}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Reshape([]byte(tc.raw))
			require.NoError(t, err)
			assert.False(t, res.Reshaped())
			assert.Equal(t, Unchanged, res.Outcome())
			assert.Equal(t, tc.raw, string(res.Original()))

			out, err := res.MarshalJSON()
			require.NoError(t, err)
			assert.Equal(t, tc.rendered, string(out))
		})
	}
}

func TestReshape_InvalidJSON(t *testing.T) {
	_, err := Reshape([]byte(`{"mealServiceDietInfo":[`))
	assert.ErrorIs(t, err, ErrInvalidJSON)
}

func TestReshape_IsOneWay(t *testing.T) {
	raw := `{"mealServiceDietInfo":[{"a":1},{"row":[{"SCHUL_NM":"X"}]}]}`

	first, err := Reshape([]byte(raw))
	require.NoError(t, err)
	once, err := first.MarshalJSON()
	require.NoError(t, err)

	second, err := Reshape(once)
	require.NoError(t, err)
	assert.False(t, second.Reshaped(), "reshaped output no longer carries the source field")
}

func TestResult_MarshalIndent(t *testing.T) {
	raw := `{"mealServiceDietInfo":[{"a":1},{"row":[{"DDISH_NM":"쌀밥<br/>김치"}]}]}`

	res, err := Reshape([]byte(raw))
	require.NoError(t, err)

	out, err := res.MarshalIndent()
	require.NoError(t, err)

	expected := strings.Join([]string{
		`{`,
		`  "급식식단정보": [`,
		`    {`,
		`      "a": 1`,
		`    },`,
		`    {`,
		`      "row": [`,
		`        {`,
		`          "요리명": "쌀밥<br/>김치"`,
		`        }`,
		`      ]`,
		`    }`,
		`  ]`,
		`}`,
	}, "\n")
	assert.Equal(t, expected, string(out))
}

func TestFieldMapping_MatchesRecordTags(t *testing.T) {
	typ := reflect.TypeOf(MealRecord{})
	require.Equal(t, len(FieldMapping), typ.NumField())
	for i, m := range FieldMapping {
		tag := strings.Split(typ.Field(i).Tag.Get("json"), ",")[0]
		assert.Equal(t, m.Target, tag)
	}
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "reshaped", Reshaped.String())
	assert.Equal(t, "unchanged", Unchanged.String())
}
